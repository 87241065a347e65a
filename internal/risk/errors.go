package risk

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every InvalidInputError via errors.Is
var ErrInvalidInput = errors.New("invalid input")

// Field names used in InvalidInputError, matching the JSON keys of Input
const (
	FieldAccountSize      = "account_size"
	FieldRiskPercent      = "risk_percent"
	FieldMaxMarginPercent = "max_margin_percent"
	FieldMaxLeverage      = "max_leverage"
	FieldEntryPrice       = "entry_price"
	FieldSLPrice          = "sl_price"
)

// InvalidInputError reports a single input field that cannot be used for sizing
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

// Error implements the error interface
func (e *InvalidInputError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) true for any InvalidInputError
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInvalidInputError creates a new InvalidInputError
func NewInvalidInputError(field, value, reason string) *InvalidInputError {
	return &InvalidInputError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// FieldOf returns the field name carried by the first InvalidInputError in err's tree
func FieldOf(err error) string {
	var inputErr *InvalidInputError
	if errors.As(err, &inputErr) {
		return inputErr.Field
	}
	return ""
}
