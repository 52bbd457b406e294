package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/middleware"
	"yatube/internal/services"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// nil for anonymous visitors, templates test it with "if"
	obj["CurrentUser"] = middleware.CurrentUser(c)
	obj["CurrentPath"] = c.Request.URL.Path
	obj["CSRFToken"] = middleware.CSRFToken(c)

	c.HTML(code, name, obj)
}

// NotFound renders the 404 page for the current path.
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "core/404.html", gin.H{"Path": c.Request.URL.Path})
}

func ServerError(c *gin.Context) {
	Render(c, http.StatusInternalServerError, "core/500.html", nil)
}

// CSRFFailure renders the page shown when a form token is missing or stale.
func CSRFFailure(c *gin.Context) {
	Render(c, http.StatusForbidden, "core/403csrf.html", nil)
}

// fail maps a service error onto an error page.
func fail(c *gin.Context, log *zap.Logger, err error) {
	if errors.Is(err, services.ErrNotFound) {
		NotFound(c)
		return
	}
	_ = c.Error(err)
	log.Error("Request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	ServerError(c)
}
