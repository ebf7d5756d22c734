package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pollsapi/internal/auth"
)

const userIDKey = "user_id"

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user id in the request context.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be in the format 'Bearer {token}'"})
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(tokenString, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth resolves the caller identity when a valid token is present
// and stays silent otherwise. Used on read endpoints whose visibility
// depends on who is asking.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := auth.ParseToken(tokenString, secret); err == nil {
				c.Set(userIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated caller's id, or nil for anonymous
// requests.
func CurrentUserID(c *gin.Context) *int {
	raw, exists := c.Get(userIDKey)
	if !exists {
		return nil
	}
	id, ok := raw.(int)
	if !ok {
		return nil
	}
	return &id
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
