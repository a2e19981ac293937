package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// ValidateStruct checks s against its `validate` tags and flattens the
// failures into one readable error.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	var errMsgs []string
	for _, e := range verrs {
		if e.Param() != "" {
			errMsgs = append(errMsgs, fmt.Sprintf("%s must satisfy %s=%s", e.Namespace(), e.Tag(), e.Param()))
		} else {
			errMsgs = append(errMsgs, fmt.Sprintf("%s must satisfy %s", e.Namespace(), e.Tag()))
		}
	}
	return fmt.Errorf("validation failed: %s", strings.Join(errMsgs, "; "))
}

// ValidateVar checks a single value against a tag expression.
func ValidateVar(v interface{}, tag string) error {
	if err := validate.Var(v, tag); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
