package config

import (
	"errors"
	"fmt"
)

// ValidationError reports an unusable configuration value.
type ValidationError struct {
	// Field is the dotted configuration key, or "file" for problems with
	// the configuration file as a whole.
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
