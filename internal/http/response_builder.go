package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"tally/internal/backup"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/store"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
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

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter. A nil body
// writes only the status.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// errorBody is the payload of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// ConflictError creates a 409 Conflict error response.
func ConflictError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// OK writes v with status 200.
func OK(w http.ResponseWriter, v any) {
	NewJSONResponse().Body(v).Write(w)
}

// Created writes v with status 201.
func Created(w http.ResponseWriter, v any) {
	NewJSONResponse().Status(http.StatusCreated).Body(v).Write(w)
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateCategory),
		errors.Is(err, services.ErrSystemCategory):
		return http.StatusConflict
	case errors.Is(err, store.ErrUnknownCategory),
		errors.Is(err, store.ErrDuplicateID),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrZeroDate),
		errors.Is(err, core.ErrDescriptionSize),
		errors.Is(err, backup.ErrUnsupportedVersion),
		errors.Is(err, backup.ErrEmptyDocument),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes the mapped status. Internal errors are
// reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	logger := log.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldError, err)
		InternalServerError("internal error").Write(w)
		return
	}
	logger.DebugContext(r.Context(), "Request rejected",
		log.FieldOperation, op,
		log.FieldStatusCode, status,
		log.FieldError, err)
	ErrorResponse(status, err.Error()).Write(w)
}
