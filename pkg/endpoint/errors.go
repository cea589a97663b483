package endpoint

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindTransient Kind = iota
	KindAuth
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "transient"
	}
}

// ApiError is a failed call against the backend. Status is 0 when the
// request never produced a response.
type ApiError struct {
	Message   string
	Status    int
	Method    string
	Path      string
	RequestID string
	Data      map[string]any
	Err       error
}

func (e *ApiError) Error() string {
	if e == nil {
		return "api error: <nil>"
	}

	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}

	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *ApiError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func (e *ApiError) Kind() Kind {
	if e == nil {
		return KindTransient
	}

	switch e.Status {
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindTransient
	}
}

func FromResponse(method, path string, status int, body []byte) *ApiError {
	parsed := ParseErrorResponse(body)

	message := parsed.Summary()
	if message == "" {
		message = http.StatusText(status)
	}

	return &ApiError{
		Message: message,
		Status:  status,
		Method:  method,
		Path:    path,
		Data:    parsed.Fields(),
		Err:     errors.New(message),
	}
}

func Transport(method, path string, err error) *ApiError {
	return &ApiError{
		Message: "request failed",
		Method:  method,
		Path:    path,
		Err:     err,
	}
}

func KindOf(err error) Kind {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}

	return KindTransient
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

func IsAuth(err error) bool {
	return err != nil && KindOf(err) == KindAuth
}

func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}

func IsConflict(err error) bool {
	return err != nil && KindOf(err) == KindConflict
}
