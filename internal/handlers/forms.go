package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"yatube/internal/services"
)

// PostForm 发帖/编辑表单
type PostForm struct {
	Text  string                `form:"text" binding:"required"`
	Group string                `form:"group" binding:"omitempty,numeric"`
	Image *multipart.FileHeader `form:"image"`
}

// CommentForm has no author or post field on purpose; both come from the request.
type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

type SignupForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"required,max=150,username"`
	Password1 string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// RegisterValidators adds the custom tags used by the forms above and makes
// validation errors report form field names.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

// bindForm fills obj from the request and turns binding failures into field
// errors. obj keeps whatever values could be decoded.
func bindForm(c *gin.Context, obj any) *services.ValidationError {
	err := c.ShouldBind(obj)
	if err == nil {
		return nil
	}

	verr := &services.ValidationError{}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), validationMessage(fe))
		}
		return verr
	}
	verr.Add("__all__", "The submitted form could not be read.")
	return verr
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "numeric":
		return "Select a valid choice."
	}
	return "Enter a valid value."
}

// formErrors is the template view of a possibly nil ValidationError.
func formErrors(verr *services.ValidationError) map[string][]string {
	if verr == nil {
		return map[string][]string{}
	}
	return verr.Fields
}
