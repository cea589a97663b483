package env

import (
	"strconv"
	"strings"
	"time"
)

const SelfSubject = "self"

// ApiEnvironment describes the marketplace backend and the account the
// synchronizer signs in with.
type ApiEnvironment struct {
	BaseURL  string        `validate:"required,url"`
	Locale   string        `validate:"required,locale"`
	Email    string        `validate:"required,email"`
	Password string        `validate:"required,min=6"`
	Timeout  time.Duration `validate:"min=0"`
	Subject  string        `validate:"required,subject"`
}

func (e ApiEnvironment) IsSelf() bool {
	return strings.EqualFold(strings.TrimSpace(e.Subject), SelfSubject)
}

// SubjectID returns the numeric subject, or 0 when the subject is the
// signed-in account.
func (e ApiEnvironment) SubjectID() int {
	if e.IsSelf() {
		return 0
	}

	id, err := strconv.Atoi(strings.TrimSpace(e.Subject))
	if err != nil || id <= 0 {
		return 0
	}

	return id
}
