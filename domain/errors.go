package domain

import "errors"

var (
	// ErrNotFound is returned when no property exists for an id.
	ErrNotFound = errors.New("property not found")

	// ErrStoreUnavailable is returned when the backing store was never initialized.
	ErrStoreUnavailable = errors.New("property store is not initialized")
)

// ValidationError represents bad or missing input fields.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
