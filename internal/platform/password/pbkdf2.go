// Package password derives and verifies salted password hashes with PBKDF2.
package password

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/spf13/viper"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// MinIterations is the lowest iteration count accepted from configuration.
	MinIterations = 100_000
	// MinSaltLength is the lowest salt size in bytes accepted from configuration.
	MinSaltLength = 16
)

// Params holds the key-derivation parameters. They must not change for
// existing hashes, otherwise verification fails.
type Params struct {
	Iterations int
	SaltLength int
	KeyLength  int
	Digest     func() hash.Hash
}

// DefaultParams returns PBKDF2-SHA512 with 100,000 iterations, a 16-byte salt and a 64-byte key.
func DefaultParams() Params {
	return Params{
		Iterations: MinIterations,
		SaltLength: MinSaltLength,
		KeyLength:  64,
		Digest:     sha512.New,
	}
}

// LoadParams reads KDF parameters from configuration and rejects weak values.
func LoadParams(v *viper.Viper) (Params, error) {
	def := DefaultParams()
	v.SetDefault("PASSWORD_KDF_ITERATIONS", def.Iterations)
	v.SetDefault("PASSWORD_KDF_SALT_LENGTH", def.SaltLength)
	v.SetDefault("PASSWORD_KDF_KEY_LENGTH", def.KeyLength)

	p := Params{
		Iterations: v.GetInt("PASSWORD_KDF_ITERATIONS"),
		SaltLength: v.GetInt("PASSWORD_KDF_SALT_LENGTH"),
		KeyLength:  v.GetInt("PASSWORD_KDF_KEY_LENGTH"),
		Digest:     sha512.New,
	}
	if p.Iterations < MinIterations {
		return Params{}, fmt.Errorf("PASSWORD_KDF_ITERATIONS must be at least %d", MinIterations)
	}
	if p.SaltLength < MinSaltLength {
		return Params{}, fmt.Errorf("PASSWORD_KDF_SALT_LENGTH must be at least %d", MinSaltLength)
	}
	if p.KeyLength <= 0 {
		return Params{}, fmt.Errorf("PASSWORD_KDF_KEY_LENGTH must be positive")
	}
	return p, nil
}

// Hasher hashes and verifies passwords.
type Hasher struct {
	params Params
}

// NewHasher creates a Hasher. Zero fields in p fall back to DefaultParams.
func NewHasher(p Params) *Hasher {
	def := DefaultParams()
	if p.Iterations <= 0 {
		p.Iterations = def.Iterations
	}
	if p.SaltLength <= 0 {
		p.SaltLength = def.SaltLength
	}
	if p.KeyLength <= 0 {
		p.KeyLength = def.KeyLength
	}
	if p.Digest == nil {
		p.Digest = def.Digest
	}
	return &Hasher{params: p}
}

// Hash derives a key from password using a fresh random salt.
// Both results are hex-encoded.
func (h *Hasher) Hash(password string) (salt, hash string, err error) {
	raw := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(raw), hex.EncodeToString(h.derive(password, raw)), nil
}

// Verify recomputes the derived key and compares it in constant time.
// Malformed salt or hash strings return false, but only after the key has been
// derived, so every call costs the same regardless of input shape.
func (h *Hasher) Verify(password, salt, expectedHash string) bool {
	saltBytes, saltErr := hex.DecodeString(salt)
	expected, hashErr := hex.DecodeString(expectedHash)
	derived := h.derive(password, saltBytes)

	if saltErr != nil || len(saltBytes) == 0 || hashErr != nil || len(expected) != len(derived) {
		return false
	}
	return subtle.ConstantTimeCompare(derived, expected) == 1
}

func (h *Hasher) derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, h.params.Iterations, h.params.KeyLength, h.params.Digest)
}
