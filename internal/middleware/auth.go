package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"rental-billing-backend/internal/config"
)

// Auth validates the Bearer token on every request and stores the subject
// in the context as "user". When auth is disabled in config the check is
// skipped and the user is "anonymous".
func Auth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AuthDisabled {
			c.Set("user", "anonymous")
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		subject := "unknown"
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok && sub != "" {
				subject = sub
			}
		}
		c.Set("user", subject)
		c.Next()
	}
}

// CurrentUser returns the authenticated subject set by Auth.
func CurrentUser(c *gin.Context) string {
	if user, ok := c.Get("user"); ok {
		if s, ok := user.(string); ok {
			return s
		}
	}
	return "unknown"
}
