package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeForSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrAssetNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrIngestionInFlight, http.StatusConflict},
		{ErrRAGUnavailable, http.StatusServiceUnavailable},
		{ErrTimeout, http.StatusServiceUnavailable},
		{ErrEmbeddingFailed, http.StatusBadGateway},
		{ErrVectorStoreFailed, http.StatusBadGateway},
		{ErrInternal, http.StatusInternalServerError},
		{errors.New("unknown"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusCode(tc.err); got != tc.want {
			t.Errorf("HTTPStatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHTTPStatusCodeForWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("searching: %w", ErrVectorStoreFailed)
	if got := HTTPStatusCode(wrapped); got != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", got)
	}
}

func TestAppErrorOverridesStatus(t *testing.T) {
	err := New(ErrInvalidInput, http.StatusUnprocessableEntity, "bad payload")
	if got := HTTPStatusCode(err); got != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", got)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("AppError should unwrap to its sentinel")
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf(ErrEmbeddingFailed, http.StatusBadGateway, "embedding %s: %v", "a.pdf", "timeout")
	if err.Message != "embedding a.pdf: timeout" {
		t.Errorf("message = %q", err.Message)
	}
}
