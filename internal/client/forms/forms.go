// Package forms validates user input before it is sent to the backend.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/BayerTobias/videoflix/internal/client/models"
)

type LoginForm struct {
	Username   string `form:"username" validate:"required"`
	Password   string `form:"password" validate:"required"`
	RememberMe bool   `form:"remember_me"`
}

func (f LoginForm) Credentials() models.Credentials {
	return models.Credentials{Username: f.Username, Password: f.Password}
}

type RegisterForm struct {
	Username       string `form:"username" validate:"required"`
	Email          string `form:"email" validate:"required,email"`
	Password       string `form:"password" validate:"required,min=8"`
	PasswordRepeat string `form:"password_repeat" validate:"required,eqfield=Password"`
}

func (f RegisterForm) Request() models.RegisterRequest {
	return models.RegisterRequest{
		Username:   f.Username,
		Email:      f.Email,
		Password:   f.Password,
		RePassword: f.PasswordRepeat,
	}
}

type ForgotPasswordForm struct {
	Email string `form:"email" validate:"required,email"`
}

type ResetPasswordForm struct {
	Password       string `form:"password" validate:"required,min=8"`
	PasswordRepeat string `form:"password_repeat" validate:"required,eqfield=Password"`
}

type DeleteAccountForm struct {
	Password string `form:"password" validate:"required,min=8"`
}

type ProfileForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
}

func (f ProfileForm) Update() models.ProfileUpdate {
	return models.ProfileUpdate{FirstName: f.FirstName, LastName: f.LastName}
}

// Error lists one message per invalid field, keyed by the form tag name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	return "invalid form: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the field messages ordered by field name.
func (e *Error) Messages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return msgs
}

// Message returns the message for field, or "".
func (e *Error) Message(field string) string {
	return e.Fields[field]
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks form and returns *Error on invalid input.
func Validate(form any) error {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "eqfield":
		return "passwords do not match"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
