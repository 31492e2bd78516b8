package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// messages holds the user facing text per json field and rule.
var messages = map[string]map[string]string{
	"username": {
		"required": "Name is required",
		"min":      "Name must be at least 3 characters",
		"max":      "Name must not be more than 25 characters",
	},
	"email": {
		"required": "Email is required",
		"email":    "Invalid email address",
		"min":      "Email must be at least 3 characters",
		"max":      "Email must not be more than 50 characters",
	},
	"phone": {
		"required": "Phone is required",
		"len":      "Phone must be exactly 10 characters",
	},
	"password": {
		"required": "Password is required",
		"min":      "Password must be at least 7 characters",
		"max":      "Password can't be greater than 20 characters",
	},
}

// Validator wraps the go-playground validator and reports json field names.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidationError lists one message per failed rule, in field order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

// Struct validates s. Rule failures are returned as *ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{Messages: make([]string, 0, len(errs))}
	for _, fe := range errs {
		out.Messages = append(out.Messages, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	if byTag, ok := messages[fe.Field()]; ok {
		if m, ok := byTag[fe.Tag()]; ok {
			return m
		}
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must not be more than %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
