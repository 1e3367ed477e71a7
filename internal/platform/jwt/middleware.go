package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
)

const (
	ContextUserID = "userID"
	ContextClaims = "claims"

	// CookieName is the cookie the API sets when it issues a session token.
	CookieName = "authToken"
)

// Verifier validates a session token and returns the identity it carries.
type Verifier interface {
	Verify(token string) (*entity.SessionClaims, error)
}

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the auth cookie. It returns "" when neither is present.
func TokenFromRequest(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
		return ""
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// AuthRequired returns a Gin middleware function that validates session tokens
// and restricts access to authenticated users only.
func AuthRequired(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get token from header or cookie
		tokenStr := TokenFromRequest(c)
		if tokenStr == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		// 2. Verify signature, algorithm and expiry
		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		// 3. Expose the identity to handlers
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    domain.KindUnauthorized.Code(),
			"message": message,
		},
	})
}
