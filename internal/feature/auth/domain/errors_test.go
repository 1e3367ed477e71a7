package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_CodeAndStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   Kind
		code   string
		status int
	}{
		{KindInvalidInput, "BAD_USER_INPUT", http.StatusBadRequest},
		{KindUserAlreadyExists, "USER_ALREADY_EXISTS", http.StatusBadRequest},
		{KindInvalidCredentials, "INVALID_CREDENTIALS", http.StatusBadRequest},
		{KindUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
		{KindUserNotFound, "USER_NOT_FOUND", http.StatusNotFound},
		{KindOtpNotFound, "OTP_NOT_FOUND", http.StatusNotFound},
		{KindOtpExpired, "OTP_EXPIRED", http.StatusBadRequest},
		{KindInvalidOtp, "INVALID_OTP", http.StatusBadRequest},
		{KindResendLimitExceeded, "RESEND_OTP_LIMIT", http.StatusTooManyRequests},
		{KindOtpResetLimitExceeded, "OTP_RESET_LIMIT", http.StatusTooManyRequests},
		{KindQueueUnavailable, "QUEUE_UNAVAILABLE", http.StatusInternalServerError},
		{KindInternal, "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.code, tt.kind.Code())
			assert.Equal(t, tt.status, tt.kind.Status())
		})
	}
}

func TestError_IsMatchesByKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("verify: %w", New(KindOtpExpired, "custom message"))

	assert.ErrorIs(t, err, ErrOtpExpired)
	assert.NotErrorIs(t, err, ErrInvalidOtp)
	assert.Equal(t, KindOtpExpired, KindOf(err))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Normalize(nil))
	})

	t.Run("known error passes through", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", ErrResendLimitExceeded)
		got := Normalize(wrapped)
		assert.Equal(t, KindResendLimitExceeded, got.Kind)
		assert.Equal(t, ErrResendLimitExceeded.Message, got.Message)
	})

	t.Run("unknown error becomes internal and keeps cause", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		got := Normalize(cause)
		assert.Equal(t, KindInternal, got.Kind)
		assert.Equal(t, "Internal server error", got.Message)
		assert.ErrorIs(t, got, cause)
	})
}

func TestInvalidInput(t *testing.T) {
	t.Parallel()

	err := InvalidInput([]string{"Invalid email format", "Name is required"})

	assert.Equal(t, KindInvalidInput, err.Kind)
	assert.Equal(t, "Invalid email format, Name is required", err.Message)
	assert.Len(t, err.Details, 2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
