package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rideshare/internal/identity"
)

const userContextKey = "user"

// TokenParser validates a bearer token and returns the email it was issued for.
type TokenParser interface {
	Parse(token string) (string, error)
}

// AuthMiddleware requires a valid bearer token and stores the signed-in user on the
// request context, where identity.ContextProvider finds it.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		email, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		user := identity.NormalizeEmail(email)
		c.Set(userContextKey, user)
		c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), user))

		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) string {
	return c.GetString(userContextKey)
}
