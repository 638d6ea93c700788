// Package validation holds the request validation rules shared by the Gin
// binding layer and the services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	dom "taskmanager/internal/domain"

	"github.com/go-playground/validator/v10"
)

const (
	PasswordMinLen = 8
	PasswordMaxLen = 20
)

// Register adds the custom rules to v. It is called on Gin's binding engine
// at startup and on every validator built with New.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register password rule: %w", err)
	}
	v.RegisterTagNameFunc(jsonFieldName)
	return nil
}

// New returns a validator with the custom rules registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// StrongPassword: 8 to 20 characters with at least one ASCII upper-case
// letter, one ASCII lower-case letter and one digit or symbol. A symbol is
// anything outside [A-Za-z0-9_], so '_' does not count and a non-ASCII
// letter does.
func StrongPassword(p string) bool {
	n := utf8.RuneCountInString(p)
	if n < PasswordMinLen || n > PasswordMaxLen {
		return false
	}
	var upper, lower, digitOrSymbol bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r != '_':
			digitOrSymbol = true
		}
	}
	return upper && lower && digitOrSymbol
}

// FromError converts validator failures into a domain ValidationError. Other
// errors are returned unchanged.
func FromError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := &dom.ValidationError{}
	for _, fe := range ves {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	// Namespace is "Struct.field[0]"; drop the struct name.
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		return fe.Field()
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "password":
		return "must be 8-20 characters with at least one upper case letter, one lower case letter and one number or symbol"
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "is invalid"
}

func jsonFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
