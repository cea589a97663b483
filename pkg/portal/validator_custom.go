package portal

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/oullin/profilesync/pkg/phone"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

var cronParser = cron.NewParser(
	cron.SecondOptional |
		cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow |
		cron.Descriptor,
)

func registerCustomValidations(v *validator.Validate) {
	if v == nil {
		return
	}

	rules := map[string]validator.Func{
		"cron":       validateCronExpression,
		"locale":     validateLocale,
		"phone_tj":   validatePhone(phone.TypeTJ),
		"phone_intl": validatePhone(phone.TypeInternational),
		"subject":    validateSubject,
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic("portal: failed to register " + tag + " validation: " + err.Error())
		}
	}
}

func validateCronExpression(fl validator.FieldLevel) bool {
	expr := strings.TrimSpace(fl.Field().String())
	if expr == "" {
		return false
	}

	_, err := cronParser.Parse(expr)
	return err == nil
}

func validateLocale(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return false
	}

	_, err := language.Parse(value)
	return err == nil
}

func validatePhone(kind string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}

		return phone.Valid(kind, value)
	}
}

// validateSubject accepts "self" or a positive user id.
func validateSubject(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if strings.EqualFold(value, "self") {
		return true
	}

	id, err := strconv.Atoi(value)
	return err == nil && id > 0
}
