package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator wraps validator/v10 and keeps the messages of the last failed
// check, keyed by lower-cased struct namespace.
type Validator struct {
	mu       sync.Mutex
	Errors   map[string]any
	instance *validator.Validate
}

func GetDefaultValidator() *Validator {
	return MakeValidatorFrom(validator.New(validator.WithRequiredStructEnabled()))
}

func MakeValidatorFrom(abstract *validator.Validate) *Validator {
	registerCustomValidations(abstract)

	return &Validator{Errors: map[string]any{}, instance: abstract}
}

func (v *Validator) Passes(target any) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Errors = map[string]any{}

	err := v.instance.Struct(target)
	if err == nil {
		return true, nil
	}

	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		v.Errors["_"] = err.Error()

		return false, fmt.Errorf("validator: %w", err)
	}

	for _, failure := range failures {
		v.Errors[strings.ToLower(failure.StructNamespace())] = describe(failure)
	}

	return false, fmt.Errorf("validator: %w", err)
}

func (v *Validator) Rejects(target any) (bool, error) {
	passes, err := v.Passes(target)

	return !passes, err
}

func (v *Validator) GetErrors() map[string]any {
	v.mu.Lock()
	defer v.mu.Unlock()

	return maps.Clone(v.Errors)
}

func (v *Validator) GetErrorsAsJson() string {
	data, err := json.Marshal(v.GetErrors())
	if err != nil {
		return ""
	}

	return string(data)
}

func describe(failure validator.FieldError) string {
	message := fmt.Sprintf("field '%s' failed on the '%s' rule", failure.Field(), failure.Tag())

	if param := failure.Param(); param != "" {
		message += " [" + param + "]"
	}

	return message
}
