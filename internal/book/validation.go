package book

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation rules reported by ValidationError.
const (
	RuleRequired     = "required"
	RuleNegative     = "negative"
	RuleExceedsTotal = "exceeds_total"
)

// ValidationError describes why a payload was rejected.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case RuleRequired:
		return e.Field + " required"
	case RuleExceedsTotal:
		return "readPage exceeds pageCount"
	case RuleNegative:
		return e.Field + " must not be negative"
	default:
		return e.Field + " is invalid"
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	validate.RegisterValidation("notblank", validateNotBlank)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validate checks p. Name is checked first, then negative counts, then the
// readPage/pageCount relation.
func (p Payload) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate payload: %w", err)
		}
		if ve := firstViolation(verrs); ve != nil {
			return ve
		}
	}
	if p.PageCount != nil && p.ReadPage != nil && *p.ReadPage > *p.PageCount {
		return &ValidationError{Field: "readPage", Rule: RuleExceedsTotal}
	}
	return nil
}

func firstViolation(verrs validator.ValidationErrors) *ValidationError {
	var first *ValidationError
	for _, fe := range verrs {
		ve := &ValidationError{Field: fe.Field(), Rule: RuleNegative}
		if fe.Tag() == "notblank" {
			ve.Rule = RuleRequired
			return ve
		}
		if first == nil {
			first = ve
		}
	}
	return first
}
