package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/middleware"
	"yatube/internal/services"
)

type AuthHandler struct {
	users *services.UserService
	log   *zap.Logger
}

func NewAuthHandler(users *services.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

// safeNext only allows local paths, so a crafted next cannot send the user offsite.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "users/signup.html", gin.H{
		"Title":  "Зарегистрироваться",
		"Form":   SignupForm{},
		"Errors": formErrors(nil),
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var form SignupForm
	verr := bindForm(c, &form)
	if verr == nil {
		_, err := h.users.Signup(c.Request.Context(), services.SignupInput{
			Username:  form.Username,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Password:  form.Password1,
		})
		if err == nil {
			c.Redirect(http.StatusFound, "/")
			return
		}
		if !errors.As(err, &verr) {
			fail(c, h.log, err)
			return
		}
	}

	// 不回显密码
	form.Password1, form.Password2 = "", ""
	Render(c, http.StatusOK, "users/signup.html", gin.H{
		"Title":  "Зарегистрироваться",
		"Form":   form,
		"Errors": formErrors(verr),
	})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "users/login.html", gin.H{
		"Title":  "Войти",
		"Form":   LoginForm{Next: c.Query("next")},
		"Errors": formErrors(nil),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	verr := bindForm(c, &form)
	if verr == nil {
		user, err := h.users.Authenticate(c.Request.Context(), form.Username, form.Password)
		if err == nil {
			session := sessions.Default(c)
			session.Set(middleware.SessionUserKey, user.ID)
			if err := session.Save(); err != nil {
				fail(c, h.log, err)
				return
			}
			h.log.Info("User logged in", zap.Uint("user_id", user.ID))
			c.Redirect(http.StatusFound, safeNext(form.Next))
			return
		}
		if !errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, h.log, err)
			return
		}
		verr = &services.ValidationError{}
		verr.Add("__all__", "Please enter a correct username and password. Note that both fields may be case-sensitive.")
	}

	form.Password = ""
	Render(c, http.StatusOK, "users/login.html", gin.H{
		"Title":  "Войти",
		"Form":   form,
		"Errors": formErrors(verr),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		fail(c, h.log, err)
		return
	}
	c.Set(middleware.CheckUserKey, nil)
	Render(c, http.StatusOK, "users/logged_out.html", gin.H{"Title": "Вы вышли из системы"})
}
