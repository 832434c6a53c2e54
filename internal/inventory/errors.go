package inventory

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the inventory core. Handlers translate these
// into HTTP statuses; anything else is treated as a storage failure.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrBarcodeConflict   = errors.New("barcode already exists")
)

// ValidationError reports a malformed transaction request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is allows errors.Is matching against any ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// IsValidationError checks whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalidf(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
