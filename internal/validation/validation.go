package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors by JSON field name so messages match the wire format.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateStruct validates a struct using go-playground/validator and
// returns per-field messages keyed by JSON name.
func ValidateStruct(s interface{}) (map[string]string, error) {
	if s == nil {
		return nil, nil
	}

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("validator: expected a struct, got %T", s)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	fields := make(map[string]string, len(ve))
	for _, e := range ve {
		fields[e.Field()] = messageFor(e)
	}
	return fields, fmt.Errorf("validation failed on %d field(s)", len(ve))
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "alphanum":
		return "must contain only letters and numbers"
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
