package entity

// SessionClaims is the identity carried inside a signed session token.
// Tokens are stateless: the server verifies them but never stores them.
type SessionClaims struct {
	UserID uint
	Name   string
	Email  string
}
