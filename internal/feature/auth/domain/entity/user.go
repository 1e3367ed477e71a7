// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
// It contains authentication credentials and OTP bookkeeping.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`

	// Email is the user's email address used for authentication.
	// It is stored lower-cased and must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// Name is the display name chosen at registration.
	Name string `gorm:"size:255;not null" json:"name"`

	// PasswordHash is the hex-encoded derived key. Never exposed.
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// PasswordSalt is the hex-encoded salt used to derive PasswordHash. Never exposed.
	PasswordSalt string `gorm:"size:255;not null" json:"-"`

	// IsVerified flips to true after a successful OTP verification.
	IsVerified bool `gorm:"not null;default:false" json:"isVerified"`

	// OtpResetCount counts OTP issuances since the last external reset.
	OtpResetCount int `gorm:"not null;default:0" json:"otpResetCount"`

	// IsActive marks whether the account may be used.
	IsActive bool `gorm:"not null;default:true" json:"isActive"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}
