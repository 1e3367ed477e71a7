// Package domain defines domain-level errors for the auth feature.
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the closed set of failure categories an auth operation can report.
// The transport layer matches on it to pick a status code and a machine-readable code.
type Kind int

const (
	// KindInternal is the catch-all for anything not recognised below.
	KindInternal Kind = iota
	KindInvalidInput
	KindUserAlreadyExists
	KindInvalidCredentials
	KindUnauthorized
	KindUserNotFound
	KindOtpNotFound
	KindOtpExpired
	KindInvalidOtp
	KindResendLimitExceeded
	KindOtpResetLimitExceeded
	KindQueueUnavailable
)

// Code returns the stable machine-readable code sent to clients.
func (k Kind) Code() string {
	switch k {
	case KindInvalidInput:
		return "BAD_USER_INPUT"
	case KindUserAlreadyExists:
		return "USER_ALREADY_EXISTS"
	case KindInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindUserNotFound:
		return "USER_NOT_FOUND"
	case KindOtpNotFound:
		return "OTP_NOT_FOUND"
	case KindOtpExpired:
		return "OTP_EXPIRED"
	case KindInvalidOtp:
		return "INVALID_OTP"
	case KindResendLimitExceeded:
		return "RESEND_OTP_LIMIT"
	case KindOtpResetLimitExceeded:
		return "OTP_RESET_LIMIT"
	case KindQueueUnavailable:
		return "QUEUE_UNAVAILABLE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// Status returns the HTTP status class for the kind.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput, KindUserAlreadyExists, KindInvalidCredentials,
		KindOtpExpired, KindInvalidOtp:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUserNotFound, KindOtpNotFound:
		return http.StatusNotFound
	case KindResendLimitExceeded, KindOtpResetLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return k.Code()
}

// Error is the typed failure returned by every public auth operation.
type Error struct {
	Kind    Kind
	Message string
	// Details lists individual violations for KindInvalidInput.
	Details []string
	// Err keeps the original cause for logging. It is never sent to clients.
	Err error
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind that keeps err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg = strings.Join(e.Details, ", ")
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), msg)
}

// Unwrap returns the original cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks. Compare by kind only.
var (
	ErrInvalidInput          = New(KindInvalidInput, "Invalid user input")
	ErrUserAlreadyExists     = New(KindUserAlreadyExists, "Email already exists")
	ErrInvalidCredentials    = New(KindInvalidCredentials, "Invalid email or password")
	ErrUnauthorized          = New(KindUnauthorized, "Unauthorized access")
	ErrUserNotFound          = New(KindUserNotFound, "User not found")
	ErrOtpNotFound           = New(KindOtpNotFound, "OTP not found")
	ErrOtpExpired            = New(KindOtpExpired, "OTP has expired")
	ErrInvalidOtp            = New(KindInvalidOtp, "Invalid OTP")
	ErrResendLimitExceeded   = New(KindResendLimitExceeded, "Please wait before requesting a new OTP")
	ErrOtpResetLimitExceeded = New(KindOtpResetLimitExceeded, "You have reached the maximum OTP reset limit")
	ErrQueueUnavailable      = New(KindQueueUnavailable, "Failed to send OTP")
	ErrInternal              = New(KindInternal, "Internal server error")
)

// InvalidInput builds a KindInvalidInput error listing every violation.
func InvalidInput(details []string) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Message: strings.Join(details, ", "),
		Details: details,
	}
}

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Normalize maps any error onto the taxonomy. Known errors pass through unchanged;
// everything else becomes KindInternal with the original error kept as the cause.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Wrap(KindInternal, ErrInternal.Message, err)
}
