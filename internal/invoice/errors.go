package invoice

import (
	"errors"
	"fmt"
)

// Fatal input errors. Generation aborts immediately on these; retrying
// without fixing the input will not help.
var (
	// ErrMissingPayment is returned when no payment record was supplied.
	ErrMissingPayment = errors.New("missing payment record")

	// ErrMissingRegistration is returned when no registration record was supplied.
	ErrMissingRegistration = errors.New("missing registration record")

	// ErrUnknownRegistrationType is returned by the generator factory for a
	// registration type it has no generator for.
	ErrUnknownRegistrationType = errors.New("unknown registration type")

	// ErrMissingCustomerInvoice is returned when a supplier invoice is
	// requested without the customer invoice it derives from.
	ErrMissingCustomerInvoice = errors.New("missing customer invoice")

	// ErrNoStore is returned when a reference-shaped registration needs a
	// store lookup but no store was configured.
	ErrNoStore = errors.New("registration references require a store")
)

// GenerationError wraps errors with context about which generation step failed.
type GenerationError struct {
	// Op is the operation that failed (e.g., "GenerateCustomerInvoice").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string

	// RegistrationType is the registration type being generated for (if known).
	RegistrationType string
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("invoice: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	if e.RegistrationType != "" {
		return fmt.Sprintf("invoice: %s failed (registration type: %s): %v", e.Op, e.RegistrationType, e.Err)
	}
	return fmt.Sprintf("invoice: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *GenerationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(op string, err error, details string) *GenerationError {
	return &GenerationError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapGenerationError wraps an error as a GenerationError if it isn't already one.
func WrapGenerationError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return err // Already wrapped
	}

	return NewGenerationError(op, err, details)
}

// ValidationIssue describes one problem found while validating generation
// inputs. Callers get the full list, not just the first failure.
type ValidationIssue struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (v *ValidationIssue) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", v.Field, v.Message)
}
