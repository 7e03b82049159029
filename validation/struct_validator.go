package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/repronet/predict-gateway/errors"
)

// MessageTag is the struct tag holding the message reported when any rule
// on the field fails.
const MessageTag = "msg"

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report json names so errors match the wire field.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// MustRegisterRule registers a custom validation tag. Call it from init;
// the validator must not be mutated while requests are validated.
func MustRegisterRule(tag string, fn validator.Func) {
	if err := getValidator().RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// MustRegisterAlias registers tag as shorthand for a rule list, e.g.
// "language" for "len=3,oneof=ara chi".
func MustRegisterAlias(alias, tags string) {
	getValidator().RegisterAlias(alias, tags)
}

// Validate checks s against its `validate` tags and returns the first
// violation only. Fields are checked in declaration order, so the order of
// fields in the struct is the order rules are evaluated in.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.Validation("", "validation failed").WithCause(err)
	}

	first := validationErrors[0]
	return errors.Validation(first.Field(), messageFor(s, first)).
		WithDetail("rule", first.Tag())
}

// messageFor prefers the field's msg tag and falls back to a generic message.
func messageFor(s any, e validator.FieldError) string {
	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(e.StructField()); ok {
			if msg := f.Tag.Get(MessageTag); msg != "" {
				return msg
			}
		}
	}
	return e.Field() + " " + formatValidationError(e)
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "len":
		return "must have length " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
