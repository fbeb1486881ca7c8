// Package errors defines the service error taxonomy and its mapping to HTTP
// status codes. Failures that can degrade gracefully (extraction, synthesis)
// never surface through these sentinels; failures that would corrupt results
// (embedding, vector store) do.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRAGUnavailable     = errors.New("rag service unavailable")
	ErrEmbeddingFailed    = errors.New("embedding failed")
	ErrVectorStoreFailed  = errors.New("vector store operation failed")
	ErrIngestionInFlight  = errors.New("ingestion already running")
	ErrInternal           = errors.New("internal error")
	ErrTimeout            = errors.New("operation timed out")
)

// AppError pairs a sentinel with a human-readable message and an explicit
// HTTP status.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel into an AppError with an explicit status code.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf is New with a formatted message.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status it should produce.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrIngestionInFlight):
		return http.StatusConflict
	case errors.Is(err, ErrRAGUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrEmbeddingFailed), errors.Is(err, ErrVectorStoreFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
