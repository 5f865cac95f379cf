package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// employee_id -> Employee Id
func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError turns binding failures into one aggregate error keyed
// by json field name.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return New(
			CodeInvalidInput,
			"Invalid input",
			http.StatusBadRequest,
		)
	}

	fields := make(map[string][]string, len(errs))
	for _, e := range errs {
		name := e.Field()
		label := formatFieldName(name)
		fields[name] = append(fields[name], fieldMessage(label, e))
	}
	return NewValidation(fields)
}

func fieldMessage(label string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", label, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", label, e.Param())
	case "uuid", "uuid4":
		return label + " must be a valid identifier"
	case "eqfield":
		return fmt.Sprintf("%s must match %s", label, formatFieldName(e.Param()))
	default:
		return label + " is invalid"
	}
}
