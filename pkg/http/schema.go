package http

import baseHttp "net/http"

type contextKey string

const RequestIDKey contextKey = "request_id"

type ErrorResponse struct {
	Error  string         `json:"error"`
	Status int            `json:"status"`
	Data   map[string]any `json:"data,omitempty"`
}

// ApiError is a failure of the agent's own HTTP surface.
type ApiError struct {
	Message string         `json:"message"`
	Status  int            `json:"status"`
	Data    map[string]any `json:"data,omitempty"`
	Err     error          `json:"-"`
}

func (e *ApiError) Error() string {
	if e == nil {
		return "Internal Server Error"
	}

	return e.Message
}

func (e *ApiError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

type ApiHandler func(baseHttp.ResponseWriter, *baseHttp.Request) *ApiError

type Middleware func(ApiHandler) ApiHandler
