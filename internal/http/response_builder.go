// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses.
// It gives handlers a fluent API for status, headers and body, and a
// consistent error envelope.

package http

import (
	"encoding/json"
	"net/http"

	"expensetracker/internal/core"
)

const (
	contentTypeJSON = "application/json"
	contentTypePNG  = "image/png"
)

// JSONResponseBuilder provides a fluent API for building API responses.
type JSONResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
	err        error
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the response body.
func (b *JSONResponseBuilder) JSON(v any) *JSONResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}
	b.headers["Content-Type"] = contentTypeJSON
	b.body = body
	return b
}

// Body sets a raw body with its content type.
func (b *JSONResponseBuilder) Body(content []byte, contentType string) *JSONResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.body = content
	return b
}

// Err reports a body encoding failure, if any.
func (b *JSONResponseBuilder) Err() error {
	return b.err
}

// Write sends the built response. A body that failed to encode is replaced
// by a 500 error envelope.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type validationBody struct {
	Errors core.ValidationErrors `json:"errors"`
}

// ErrorResponse creates a standard {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).JSON(errorBody{Error: message})
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 response that never leaks the cause.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal error")
}

// ValidationError creates a 400 response carrying field-level messages.
func ValidationError(errs core.ValidationErrors) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusBadRequest).JSON(validationBody{Errors: errs})
}

// BadRequest creates a 400 response with an empty body.
func BadRequest() *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusBadRequest)
}

// NoContent creates a 204 response.
func NoContent() *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusNoContent)
}
