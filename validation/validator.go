package validation

import (
	"fmt"
	"strings"

	"github.com/repronet/predict-gateway/errors"
)

// Validator accumulates failures from checks struct tags cannot express,
// such as uniqueness across a list. Unlike Validate it keeps every failure.
type Validator struct {
	failures []FieldError
}

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string { return e.Field + ": " + e.Message }

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) {
	v.failures = append(v.failures, FieldError{Field: field, Message: message})
}

// Errors returns the recorded failures in order.
func (v *Validator) Errors() []FieldError {
	return v.failures
}

// Custom records message for field unless ok holds.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// Unique records a failure the second time value appears in seen. Empty
// values are skipped.
func (v *Validator) Unique(field, value string, seen map[string]bool) *Validator {
	if value == "" {
		return v
	}
	if seen[value] {
		v.AddError(field, fmt.Sprintf("duplicate value %q", value))
	}
	seen[value] = true
	return v
}

// Validate folds the failures into one INVALID_INPUT error, or returns nil.
// The field detail is set only when a single field failed.
func (v *Validator) Validate() *errors.AppError {
	if len(v.failures) == 0 {
		return nil
	}
	parts := make([]string, len(v.failures))
	for i, f := range v.failures {
		parts[i] = f.String()
	}
	field := ""
	if len(v.failures) == 1 {
		field = v.failures[0].Field
	}
	return errors.Validation(field, strings.Join(parts, "; ")).
		WithDetail("fields", v.failures)
}

// Err is Validate typed as error, so a nil result compares equal to nil.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
