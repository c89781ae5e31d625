// Package http provides the REST transport for the chat and ledger
// services.
//
// This file implements a small builder for JSON responses and the mapping
// from service errors to status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"vslim/internal/core"
	"vslim/internal/nlu"
	"vslim/internal/session"
)

// errValidation marks request problems detected by the transport itself.
var errValidation = errors.New("invalid request")

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a builder with a default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value that will be JSON encoded.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response. An encoding failure after the header
// has been sent can only be reported in the logs, so it is returned.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) error {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return err
	}
	w.WriteHeader(b.statusCode)
	_, err = w.Write(append(payload, '\n'))
	return err
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a JSON {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal error")
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrExpenseNotFound):
		return http.StatusNotFound
	case errors.Is(err, errValidation),
		errors.Is(err, core.ErrInvalidIntent),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyUser),
		errors.Is(err, core.ErrUnknownSlot),
		errors.Is(err, session.ErrInvalidConversation):
		return http.StatusBadRequest
	case errors.Is(err, nlu.ErrParseTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, nlu.ErrParseFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorFrom builds the response for err. Server-side failures do not leak
// their message.
func ErrorFrom(err error) *JSONResponseBuilder {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		return ErrorResponse(status, http.StatusText(status))
	}
	return ErrorResponse(status, err.Error())
}
