package middleware

import (
	"github.com/gin-gonic/gin"
	csrf "github.com/utrack/gin-csrf"
)

const csrfEnabledKey = "csrf_enabled"

// CSRF rejects unsafe requests without a valid _csrf token. Must run after the
// sessions middleware.
func CSRF(secret string, onFailure gin.HandlerFunc) gin.HandlerFunc {
	protect := csrf.Middleware(csrf.Options{
		Secret: secret,
		ErrorFunc: func(c *gin.Context) {
			onFailure(c)
			c.Abort()
		},
	})
	return func(c *gin.Context) {
		c.Set(csrfEnabledKey, true)
		protect(c)
	}
}

// CSRFToken returns the token for forms, or "" when protection is off.
func CSRFToken(c *gin.Context) string {
	if !c.GetBool(csrfEnabledKey) {
		return ""
	}
	return csrf.GetToken(c)
}
