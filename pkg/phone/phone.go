package phone

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/oullin/profilesync/handler/payload"
)

const (
	TypeTJ            = "tj"
	TypeInternational = "international"

	IDTJ            = "phone-tj"
	IDInternational = "phone-international"
)

var (
	tjPattern            = regexp.MustCompile(`^\+992\d{9}$`)
	internationalPattern = regexp.MustCompile(`^\+\d{10,15}$`)
	separators           = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

var ErrUnknownType = errors.New("phone: unknown type")

// Normalize drops the separators people type between digit groups.
func Normalize(number string) string {
	return separators.Replace(strings.TrimSpace(number))
}

func Valid(kind, number string) bool {
	number = Normalize(number)

	switch kind {
	case TypeTJ:
		return tjPattern.MatchString(number)
	case TypeInternational:
		return internationalPattern.MatchString(number)
	default:
		return false
	}
}

func Validate(kind, number string) error {
	if kind != TypeTJ && kind != TypeInternational {
		return fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}

	if !Valid(kind, number) {
		return fmt.Errorf("phone: %q is not a valid %s number", number, kind)
	}

	return nil
}

func IDFor(kind string) string {
	if kind == TypeTJ {
		return IDTJ
	}

	return IDInternational
}

// FromFields re-packages the two scalar fields of the user resource into the
// phone collection. phone1 holds the tj number and phone2 the international one.
func FromFields(phone1, phone2 string) []payload.PhoneData {
	var phones []payload.PhoneData

	if number := Normalize(phone1); number != "" {
		phones = append(phones, payload.PhoneData{ID: IDTJ, Number: number, Type: TypeTJ})
	}

	if number := Normalize(phone2); number != "" {
		phones = append(phones, payload.PhoneData{ID: IDInternational, Number: number, Type: TypeInternational})
	}

	return phones
}

// ToFields renders the collection back into the two scalar fields. Missing
// types are sent as explicit nulls so the server clears them.
func ToFields(phones []payload.PhoneData) map[string]any {
	fields := map[string]any{"phone1": nil, "phone2": nil}

	for _, item := range phones {
		switch item.Type {
		case TypeTJ:
			fields["phone1"] = Normalize(item.Number)
		case TypeInternational:
			fields["phone2"] = Normalize(item.Number)
		}
	}

	return fields
}
