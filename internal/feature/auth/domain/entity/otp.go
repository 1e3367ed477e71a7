package entity

import "time"

// Purpose tags why an OTP was issued. It namespaces the OTP key and decides
// whether a successful verification also issues a session token.
type Purpose string

const (
	PurposeRegister          Purpose = "REGISTER"
	PurposeLogin             Purpose = "LOGIN"
	PurposeEmailVerification Purpose = "EMAIL_VERIFICATION"
)

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeRegister, PurposeLogin, PurposeEmailVerification:
		return true
	}
	return false
}

// OtpRecord is the ephemeral OTP state stored per purpose and identifier.
type OtpRecord struct {
	Otp             string    `json:"otp"`
	OtpExpires      time.Time `json:"otpExpires"`
	ResendTimeLimit time.Time `json:"resendTimeLimit"`
}

// IsExpired returns true if now is past the OTP's expiry.
func (r *OtpRecord) IsExpired(now time.Time) bool {
	return now.After(r.OtpExpires)
}

// CanResend returns true once the resend window has passed.
func (r *OtpRecord) CanResend(now time.Time) bool {
	return !now.Before(r.ResendTimeLimit)
}

// OtpNotification is what gets handed to the delivery queue.
type OtpNotification struct {
	Identifier string
	Otp        string
	Name       string
	Purpose    Purpose
}
