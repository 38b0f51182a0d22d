package convert

import (
	"errors"
	"fmt"

	"typeconv/internal/typelib"
)

var (
	ErrConversion           = errors.New("value does not match schema")
	ErrUnsupportedOperation = errors.New("conversion not supported")
)

// ConversionError reports a value that does not fit the converter's type.
type ConversionError struct {
	Type       typelib.Descriptor
	Value      any
	Reason     string
	Suggestion string // closest valid value, for enumerations
	Err        error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("convert %v (%T) as %s: %s", e.Value, e.Value, e.Type, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }
func (e *ConversionError) Unwrap() error        { return e.Err }

// UnsupportedOperationError reports a conversion direction the type cannot support,
// typically rebuilding a record without a construction strategy.
type UnsupportedOperationError struct {
	Type   typelib.Descriptor
	Op     string
	Reason string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Type, e.Reason)
}

func (e *UnsupportedOperationError) Is(target error) bool { return target == ErrUnsupportedOperation }
