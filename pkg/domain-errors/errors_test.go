package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	err := New(CodeUnauthorized, "invalid token")

	t.Run("matches same code and message", func(t *testing.T) {
		assert.ErrorIs(t, err, New(CodeUnauthorized, "invalid token"))
	})

	t.Run("does not match different message", func(t *testing.T) {
		assert.NotErrorIs(t, err, New(CodeUnauthorized, "token has expired"))
	})

	t.Run("matches code only when target has no message", func(t *testing.T) {
		assert.ErrorIs(t, err, New(CodeUnauthorized, ""))
	})

	t.Run("survives fmt wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("login: %w", err)
		assert.True(t, HasCode(wrapped, CodeUnauthorized))
		assert.Equal(t, CodeUnauthorized, CodeOf(wrapped))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to lookup user")

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, CodeInternal))
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "User already exists", Message(New(CodeConflict, "User already exists")))
	assert.Equal(t, "internal server error", Message(Wrap(errors.New("boom"), CodeInternal, "db failed")))
	assert.Equal(t, "internal server error", Message(errors.New("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.code))
		})
	}
}
