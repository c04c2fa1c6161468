package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

// ProcessValidationErrors flattens binding errors into field -> failed tag.
// Errors that are not validator errors (bad JSON, wrong types) come back
// under the "body" key.
func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["body"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		if ve.Param() != "" {
			errorResponse[lowerFirst(ve.Field())] = ve.Tag() + "=" + ve.Param()
		} else {
			errorResponse[lowerFirst(ve.Field())] = ve.Tag()
		}
	}
	return errorResponse
}

// BindingError wraps a gin/validator binding failure as a ValidationError.
func BindingError(err error) error {
	fields := ProcessValidationErrors(err)
	return &ValidationError{Message: "Invalid request body", Fields: fields}
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil
}

// RequireText trims value and fails when it is empty.
func RequireText(field string, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", NewValidationError(field, field+" is required")
	}
	return v, nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
