package github

import (
	"errors"
	"fmt"
	"strings"
)

// APIError is a non-2xx response from the GitHub REST API.
type APIError struct {
	StatusCode int

	// Message is the top-level error description from GitHub.
	Message string

	DocumentationURL string

	// Errors holds field-level validation failures (422 responses).
	Errors []ValidationError
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Resource string `json:"resource"`
	Code     string `json:"code"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

func (err *APIError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "github: HTTP %d: %s", err.StatusCode, err.Message)
	for _, validationError := range err.Errors {
		if validationError.Message != "" {
			fmt.Fprintf(&builder, "; %s.%s: %s", validationError.Resource, validationError.Field, validationError.Message)
		} else {
			fmt.Fprintf(&builder, "; %s.%s: %s", validationError.Resource, validationError.Field, validationError.Code)
		}
	}
	return builder.String()
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 404
}

// IsUnauthorized reports whether err is a 401 response (bad or expired token).
func IsUnauthorized(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 401
}

// IsValidationFailed reports whether err is a 422 response.
func IsValidationFailed(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 422
}

// IsAlreadyExists reports whether err is the 422 GitHub returns when a
// repository name is already taken by the account.
func IsAlreadyExists(err error) bool {
	var apiError *APIError
	if !errors.As(err, &apiError) || apiError.StatusCode != 422 {
		return false
	}
	for _, validationError := range apiError.Errors {
		if validationError.Code == "already_exists" || strings.Contains(validationError.Message, "already exists") {
			return true
		}
	}
	return false
}
