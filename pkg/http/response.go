package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	baseHttp "net/http"
	"strings"
)

// Response writes JSON bodies for the agent. When etag is set the client is
// asked to revalidate and may receive 304.
type Response struct {
	etag         string
	cacheControl string
	writer       baseHttp.ResponseWriter
	request      *baseHttp.Request
}

// MakeResponseFrom builds a revalidated response whose ETag is derived from
// version, the revision of the served state.
func MakeResponseFrom(version string, writer baseHttp.ResponseWriter, request *baseHttp.Request) *Response {
	return &Response{
		etag:         `"` + strings.TrimSpace(version) + `"`,
		cacheControl: "no-cache",
		writer:       writer,
		request:      request,
	}
}

func MakeNoCacheResponse(writer baseHttp.ResponseWriter, request *baseHttp.Request) *Response {
	return &Response{cacheControl: "no-store", writer: writer, request: request}
}

func (r *Response) RespondOk(payload any) error {
	return r.Respond(baseHttp.StatusOK, payload)
}

func (r *Response) Respond(status int, payload any) error {
	h := r.writer.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", r.cacheControl)

	if r.etag != "" {
		h.Set("ETag", r.etag)
	}

	r.writer.WriteHeader(status)

	return json.NewEncoder(r.writer).Encode(payload)
}

func (r *Response) HasCache() bool {
	return r.etag != "" && strings.TrimSpace(r.request.Header.Get("If-None-Match")) == r.etag
}

func (r *Response) RespondWithNotModified() {
	r.writer.Header().Set("ETag", r.etag)
	r.writer.WriteHeader(baseHttp.StatusNotModified)
}

func apiError(status int, label, msg string, err error) *ApiError {
	message := fmt.Sprintf("%s: %s", label, msg)

	if err == nil {
		err = errors.New(message)
	}

	return &ApiError{Message: message, Status: status, Err: err}
}

func InternalError(msg string) *ApiError {
	return apiError(baseHttp.StatusInternalServerError, "Internal server error", msg, nil)
}

func LogInternalError(msg string, err error) *ApiError {
	slog.Error(msg, "error", err)

	return apiError(baseHttp.StatusInternalServerError, "Internal server error", msg, err)
}

func BadRequestError(msg string) *ApiError {
	return apiError(baseHttp.StatusBadRequest, "Bad request error", msg, nil)
}

func LogBadRequestError(msg string, err error) *ApiError {
	slog.Warn(msg, "error", err)

	return apiError(baseHttp.StatusBadRequest, "Bad request error", msg, err)
}

func LogUnauthorisedError(msg string, err error) *ApiError {
	slog.Warn(msg, "error", err)

	return apiError(baseHttp.StatusUnauthorized, "Unauthorised request", msg, err)
}

func TooManyRequests(msg string) *ApiError {
	return apiError(baseHttp.StatusTooManyRequests, "Too many requests", msg, nil)
}

func ServiceUnavailable(msg string, err error) *ApiError {
	return apiError(baseHttp.StatusServiceUnavailable, "Service unavailable", msg, err)
}

func NotFound(msg string) *ApiError {
	return apiError(baseHttp.StatusNotFound, "Not found error", msg, nil)
}
