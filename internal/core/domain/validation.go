// Package domain validation uses go-playground/validator/v10 with
// pinning-specific custom validators.
package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with trust-policy custom tags.
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates a validation instance with the custom validators
// configuration structs rely on.
func NewValidator() *Validator {
	validate := validator.New()

	_ = validate.RegisterValidation("pin", validatePinCustom)
	_ = validate.RegisterValidation("pin_host", validatePinHostCustom)
	_ = validate.RegisterValidation("pin_algorithm", validatePinAlgorithmCustom)
	_ = validate.RegisterValidation("hostname_value", validateHostnameCustom)

	return &Validator{validator: validate}
}

// Validate validates a struct against its tags.
func (v *Validator) Validate(s interface{}) error {
	return v.validator.Struct(s)
}

// ValidateVar validates a single variable using the specified tag.
func (v *Validator) ValidateVar(field interface{}, tag string) error {
	return v.validator.Var(field, tag)
}

// Pin fingerprints must parse in the serialized "sha256/<base64>" form.
func validatePinCustom(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Empty values handled by 'required' tag
	}
	_, err := ParseFingerprint(value)
	return err == nil
}

// Pin map keys are hostnames or the global wildcard.
func validatePinHostCustom(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Empty values handled by 'required' tag
	}
	if value == GlobalPinHost {
		return true
	}
	_, err := NewHostname(value)
	return err == nil
}

func validatePinAlgorithmCustom(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Empty algorithm falls back to the default
	}
	return PinAlgorithm(value).Valid()
}

func validateHostnameCustom(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Empty values handled by 'required' tag
	}
	_, err := NewHostname(value)
	return err == nil
}

// ValidationIssue carries one field failure in a readable form.
type ValidationIssue struct {
	Field   string
	Tag     string
	Message string
}

// Error implements the error interface.
func (vi ValidationIssue) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", vi.Field, vi.Message)
}

// ConvertValidationErrors converts go-playground validation errors to issues
// with human-readable messages.
func ConvertValidationErrors(err error) []ValidationIssue {
	var issues []ValidationIssue

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrors {
			issues = append(issues, ValidationIssue{
				Field:   fieldErr.Field(),
				Tag:     fieldErr.Tag(),
				Message: customErrorMessage(fieldErr),
			})
		}
	}

	return issues
}

func customErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "pin":
		return "must be a fingerprint of the form sha256/<base64>"
	case "pin_host":
		return "must be a valid hostname or the global wildcard '*'"
	case "pin_algorithm":
		return "must be one of: spki-sha256, cert-sha256"
	case "hostname_value":
		return "must be a valid hostname"
	case "file":
		return "file must exist and be a regular file"
	default:
		return fmt.Sprintf("validation failed for tag '%s'", fe.Tag())
	}
}

// GlobalValidator is the shared validator instance for convenience.
var GlobalValidator = NewValidator()

// ValidateStruct is a convenience function using the global validator.
func ValidateStruct(s interface{}) error {
	return GlobalValidator.Validate(s)
}
