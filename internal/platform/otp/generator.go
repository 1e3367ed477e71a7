// Package otp generates one-time passwords and keeps them in Redis.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"blog_backend/internal/feature/auth/domain/entity"
)

const (
	// Lifetime is how long an issued OTP stays valid.
	Lifetime = 5 * time.Minute
	// ResendInterval is the minimum gap between two issuances for the same key.
	ResendInterval = 60 * time.Second

	// OTPs are always six digits without a leading zero: 100000-999999.
	otpMin   = 100000
	otpRange = 900000
)

// Generator produces OTP values with their expiry and resend metadata.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a Generator using the wall clock.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Generate returns a fresh record: a uniform 6-digit code, expiry in 5 minutes, resend allowed after 60 seconds.
func (g *Generator) Generate() (entity.OtpRecord, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return entity.OtpRecord{}, fmt.Errorf("failed to generate otp: %w", err)
	}
	now := g.now()
	return entity.OtpRecord{
		Otp:             fmt.Sprintf("%d", n.Int64()+otpMin),
		OtpExpires:      now.Add(Lifetime),
		ResendTimeLimit: now.Add(ResendInterval),
	}, nil
}
