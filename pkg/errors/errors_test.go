package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewNotFound("Patient", nil), http.StatusNotFound},
		{NewBadRequest("bad", nil), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NewConflict("stale", nil), http.StatusConflict},
		{NewUnavailable("BPJS", nil), http.StatusBadGateway},
		{NewInternal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := NewNotFound("Patient", nil)
	wrapped := fmt.Errorf("failed to get patient: %w", base)

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "Patient not found", got.Message)
	assert.True(t, Is(wrapped, ErrNotFound))
	assert.False(t, Is(wrapped, ErrConflict))
}
