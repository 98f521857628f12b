package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/moviesearch/application/service"
	"github.com/helixml/moviesearch/infrastructure/api/jsonapi"
	vectorstore "github.com/helixml/moviesearch/infrastructure/search"
)

// APIError is an error with an explicit HTTP status.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the cause.
func (e *APIError) Unwrap() error { return e.cause }

// BadRequest creates a 400 APIError.
func BadRequest(message string, cause error) *APIError {
	return NewAPIError(http.StatusBadRequest, message, cause)
}

// StatusFor maps an error to an HTTP status and a machine-readable code.
func StatusFor(err error) (int, string) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.code, "request.invalid"
	case errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrEmptyText),
		errors.Is(err, service.ErrDimensionMismatch):
		return http.StatusBadRequest, "request.invalid"
	case errors.Is(err, vectorstore.ErrStoreNotInitialized):
		return http.StatusServiceUnavailable, "index.empty"
	}
	switch code := service.CodeOf(err); code {
	case service.CodeStoreConnect:
		return http.StatusServiceUnavailable, string(code)
	case "":
		return http.StatusInternalServerError, "internal"
	default:
		return http.StatusInternalServerError, string(code)
	}
}

// WriteError writes err as a JSON:API error document. Server errors are
// logged and their detail is not echoed to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	status, code := StatusFor(err)

	detail := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		detail = apiErr.message
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("code", code),
			slog.Any("error", err),
		)
		detail = http.StatusText(status)
	}

	_ = jsonapi.Write(w, status, jsonapi.NewErrorResponse(jsonapi.NewError(status, code, detail)))
}
