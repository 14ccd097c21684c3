// Package errors defines custom error types for the trustgate library.
package errors

import "fmt"

// ConfigError represents errors in policy configuration. These are startup
// faults, distinct from trust rejections, which are Decisions.
type ConfigError struct {
	Code    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is matches ConfigErrors by code so sentinel comparisons survive wrapping
// with context via NewConfigError.
func (e *ConfigError) Is(target error) bool {
	other, ok := target.(*ConfigError)
	return ok && other.Code == e.Code
}

// Common configuration errors.
var (
	ErrPermissiveNotAllowed = &ConfigError{
		Code:    "PERMISSIVE_NOT_ALLOWED",
		Message: "permissive policy requires the test-mode flag",
	}

	ErrUnknownPolicyMode = &ConfigError{
		Code:    "UNKNOWN_POLICY_MODE",
		Message: "policy mode is not recognized",
	}

	ErrInvalidPinSet = &ConfigError{
		Code:    "INVALID_PIN_SET",
		Message: "pin configuration is invalid",
	}

	ErrRootBundleUnreadable = &ConfigError{
		Code:    "ROOT_BUNDLE_UNREADABLE",
		Message: "root certificate bundle could not be loaded",
	}
)

// NewConfigError attaches an underlying cause to a base configuration error.
func NewConfigError(base *ConfigError, err error) error {
	return &ConfigError{
		Code:    base.Code,
		Message: base.Message,
		Err:     err,
	}
}

// ValidationError represents input validation errors.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}
