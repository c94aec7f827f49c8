package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID.
	UserIDKey = "user_id"
)

// TokenVerifier validates an opaque bearer token and resolves the user it
// belongs to.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// Auth returns a middleware that validates bearer tokens.
// If the token is valid, it sets user_id in the context.
// If optional is true, the middleware will not abort on missing/invalid tokens.
func Auth(verifier TokenVerifier, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			if !optional {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "authorization header required",
				})
				return
			}
			c.Next()
			return
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			if !optional {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "invalid or expired token",
				})
				return
			}
			c.Next()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// RequireAuth returns a middleware that requires a valid token.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return Auth(verifier, false)
}

// OptionalAuth returns a middleware that validates tokens when present.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return Auth(verifier, true)
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix)
	}
	return ""
}

// GetUserID returns the authenticated user ID from context.
// Returns uuid.Nil if not found.
func GetUserID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(UserIDKey); exists {
		if userID, ok := val.(uuid.UUID); ok {
			return userID
		}
	}
	return uuid.Nil
}
