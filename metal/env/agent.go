package env

import "strings"

// AgentEnvironment configures the long running sync agent.
type AgentEnvironment struct {
	HttpAddr               string   `validate:"required,hostname_port"`
	RatingSchedule         string   `validate:"required,cron"`
	ProfileRefreshSchedule string   `validate:"required,cron"`
	AllowedOrigins         []string `validate:"omitempty,dive,url"`
	Username               string   `validate:"omitempty,min=8"`
	Password               string   `validate:"required_with=Username,omitempty,min=16"`
	IsProduction           bool     `validate:"-"`
}

func (e AgentEnvironment) RequiresAuth() bool {
	return strings.TrimSpace(e.Username) != ""
}

func (e AgentEnvironment) HasInvalidCreds(username, password string) bool {
	return username != strings.TrimSpace(e.Username) ||
		password != strings.TrimSpace(e.Password)
}
