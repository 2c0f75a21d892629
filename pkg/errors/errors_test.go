package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{http.StatusOK, ""},
		{http.StatusNoContent, ""},
		{http.StatusUnauthorized, ErrorTypeAuth},
		{http.StatusForbidden, ErrorTypeAuth},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusInternalServerError, ErrorTypeServerError},
		{http.StatusBadGateway, ErrorTypeServerError},
		{http.StatusBadRequest, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForStatus(tt.status))
		})
	}
}

func TestFromStatus(t *testing.T) {
	assert.Nil(t, FromStatus(http.StatusOK))

	err := FromStatus(http.StatusTooManyRequests)
	assert.Equal(t, ErrorTypeRateLimit, err.Type)
	assert.Equal(t, http.StatusTooManyRequests, err.Code)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestIsType(t *testing.T) {
	base := Wrap(ErrorTypeNetwork, 0, fmt.Errorf("connection reset"), "request failed")
	wrapped := fmt.Errorf("fetch followers page 2: %w", base)

	assert.True(t, IsType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsType(wrapped, ErrorTypeAuth))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeNetwork))
	assert.ErrorIs(t, wrapped, &Error{Type: ErrorTypeNetwork})
	assert.ErrorContains(t, wrapped, "connection reset")
}
