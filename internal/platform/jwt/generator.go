package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
)

// DefaultExpiration is the session token lifetime unless overridden.
const DefaultExpiration = time.Hour

// Claims is the JWT payload for session tokens.
type Claims struct {
	UserID uint   `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens signed with a process-wide secret.
type TokenService struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService. A non-positive expiration falls back to DefaultExpiration.
func NewTokenService(secret string, expiration time.Duration) *TokenService {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &TokenService{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// Sign creates a signed token carrying the given identity plus iat/exp/jti claims,
// valid for the configured expiration.
func (s *TokenService) Sign(c entity.SessionClaims) (string, error) {
	return s.SignWithExpiration(c, s.expiration)
}

// SignWithExpiration is Sign with a per-token lifetime.
func (s *TokenService) SignWithExpiration(c entity.SessionClaims, expiration time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: c.UserID,
		Name:   c.Name,
		Email:  c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(c.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm and expiry and returns the carried identity.
// Every failure is reported as domain.ErrUnauthorized.
func (s *TokenService) Verify(tokenStr string) (*entity.SessionClaims, error) {
	if tokenStr == "" {
		return nil, domain.ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, domain.Wrap(domain.KindUnauthorized, domain.ErrUnauthorized.Message, err)
	}
	// A token without an id claim is not one of ours.
	if claims.UserID == 0 {
		return nil, domain.Wrap(domain.KindUnauthorized, domain.ErrUnauthorized.Message, errors.New("token has no id claim"))
	}

	return &entity.SessionClaims{UserID: claims.UserID, Name: claims.Name, Email: claims.Email}, nil
}

// Decode reads the payload without checking the signature. It returns nil on any parse failure.
// Never use the result for access decisions.
func (s *TokenService) Decode(tokenStr string) *entity.SessionClaims {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil
	}
	return &entity.SessionClaims{UserID: claims.UserID, Name: claims.Name, Email: claims.Email}
}
