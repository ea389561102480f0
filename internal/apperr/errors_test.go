package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("sku 4: %w", ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("decrease -1: %w", ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{fmt.Errorf("sku 4: %w", ErrInsufficientStock), http.StatusConflict, "insufficient_stock"},
		{fmt.Errorf("items: %w", ErrValidation), http.StatusUnprocessableEntity, "validation_failed"},
		{fmt.Errorf("es: %w", ErrBackendUnavailable), http.StatusServiceUnavailable, "backend_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.status {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", c.err, got, c.status)
		}
		if got := Code(c.err); got != c.code {
			t.Fatalf("Code(%v) = %s, want %s", c.err, got, c.code)
		}
	}
}
