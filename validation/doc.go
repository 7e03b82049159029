// Package validation runs struct-tag rules through go-playground/validator
// and reports only the first violated rule, with the message taken from the
// field's `msg` tag. Fields are evaluated in declaration order.
//
//	type query struct {
//	    Input string `json:"input" validate:"required,min=1,max=36" msg:"Input must be a string less than 37 characters"`
//	    Beam  string `json:"beam"  validate:"required,beam"           msg:"Beam must be an integer from 1 to 5"`
//	}
//	err := validation.Validate(q)
//
// Custom tags are registered once from init with MustRegisterRule and
// MustRegisterAlias. The programmatic Validator collects every error and is
// used for configuration checks.
package validation
