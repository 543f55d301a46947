package vnpay

import (
	"fmt"
	"strings"
)

// ConfigurationError reports missing or malformed merchant settings.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid VNPay merchant configuration: %s", strings.Join(e.Problems, ", "))
}

// Is allows errors.Is(err, &ConfigurationError{}) to match any configuration error.
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok
}

// EncodingError means a parameter could not be represented as UTF-8 on the wire.
type EncodingError struct {
	Field string
}

func (e *EncodingError) Error() string {
	if e.Field == "" {
		return "value is not valid UTF-8"
	}
	return fmt.Sprintf("parameter %s is not valid UTF-8", e.Field)
}

func (e *EncodingError) Is(target error) bool {
	_, ok := target.(*EncodingError)
	return ok
}

// FieldError reports a payment or callback field that fails boundary validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool {
	_, ok := target.(*FieldError)
	return ok
}
