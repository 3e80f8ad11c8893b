package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateAttribute  = errors.New("duplicate attribute")
	ErrMultipleColorValues = errors.New("multiple color values")
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidValue        = errors.New("invalid value")
	ErrVariationNotFound   = errors.New("variation not found")
	ErrImageNotFound       = errors.New("image not found")
)

// ValidationError reports why a submitted batch was rejected. Index is the
// position of the offending variation in the batch, or -1 when the failure is
// not tied to a single entry.
type ValidationError struct {
	Index   int
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("variations[%d].%s: %s", e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Key is the field name used when reporting the error back to a client.
func (e *ValidationError) Key() string {
	if e.Index >= 0 {
		return fmt.Sprintf("variations[%d].%s", e.Index, e.Field)
	}
	return e.Field
}

func attributeError(err error, format string, args ...any) *ValidationError {
	return &ValidationError{
		Index:   -1,
		Field:   "attributes",
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// at attaches the batch position to a validation error raised for one entry.
func at(index int, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		out := *ve
		out.Index = index
		return &out
	}
	return err
}

func fieldError(index int, field string, err error, message string) *ValidationError {
	return &ValidationError{
		Index:   index,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
