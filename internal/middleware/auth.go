package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/models"
	"yatube/internal/services"
)

const (
	CheckUserKey   = "user"
	SessionUserKey = "user_id"
	LoginURL       = "/auth/login/"
)

// AuthRequired sends anonymous visitors to the login page, remembering where they
// were going.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRedirect builds the login URL that returns to next afterwards.
func LoginRedirect(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// LoadUser retrieves user from session and sets to context
func LoadUser(users *services.UserService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if id, ok := session.Get(SessionUserKey).(uint); ok {
			user, err := users.Get(c.Request.Context(), id)
			if err == nil {
				c.Set(CheckUserKey, user)
			} else {
				// 用户已不存在, 丢弃会话
				session.Delete(SessionUserKey)
				if err := session.Save(); err != nil {
					log.Warn("Session save failed", zap.Uint("user_id", id), zap.Error(err))
				}
			}
		}
		c.Next()
	}
}

// CurrentUser returns the logged in user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(CheckUserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
