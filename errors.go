package csvcore

import (
	"errors"
	"fmt"
)

// Sentinel errors used by the scalar parsing paths. These mirror
// encoding/csv's vocabulary since Reader is meant to be a drop-in
// replacement for it.
var (
	ErrBareQuote     = errors.New("bare \" in non-quoted-field")
	ErrQuote         = errors.New("extraneous or missing \" in quoted-field")
	ErrFieldCount    = errors.New("wrong number of fields")
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
)

// DefaultMaxInputSize is the default maximum input size (2GB).
const DefaultMaxInputSize = 2 * 1024 * 1024 * 1024

// ParseError represents a low-level parsing error with location information,
// matching encoding/csv's ParseError shape.
type ParseError struct {
	StartLine int
	Line      int
	Column    int
	Err       error
}

func (e *ParseError) Error() string {
	if e.StartLine != e.Line {
		return fmt.Sprintf("parse error on line %d, starting at line %d, column %d: %v",
			e.Line, e.StartLine, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Location carries diagnostic context for a DecodingError: where in the
// input and the destination record the failure occurred.
type Location struct {
	Row         int
	Column      string
	ColumnIndex int
	Path        string
}

func (l Location) String() string {
	switch {
	case l.Column != "":
		return fmt.Sprintf("row %d, column %q", l.Row, l.Column)
	case l.ColumnIndex >= 0:
		return fmt.Sprintf("row %d, column %d", l.Row, l.ColumnIndex)
	default:
		return fmt.Sprintf("row %d", l.Row)
	}
}

// KeyNotFoundError reports a header/column name absent from the input that
// a destination field required.
type KeyNotFoundError struct {
	Name      string
	Location  Location
	Available []string
}

func (e *KeyNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("csvcore: key %q not found at %s", e.Name, e.Location)
	}
	return fmt.Sprintf("csvcore: key %q not found at %s (available: %v)", e.Name, e.Location, e.Available)
}

// TypeMismatchError reports a value that could not be converted to the
// destination field's type.
type TypeMismatchError struct {
	Expected string
	Actual   string
	Location Location
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("csvcore: type mismatch at %s: expected %s, got %s", e.Location, e.Expected, e.Actual)
}

// ParsingError reports a malformed value that could not be parsed under the
// configured strategy (a date, or JSON for a nested field), and a structural
// violation of the CSV itself such as an unterminated quoted field.
type ParsingError struct {
	Message  string
	Location Location
	Err      error
}

func (e *ParsingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("csvcore: parsing error at %s: %s: %v", e.Location, e.Message, e.Err)
	}
	return fmt.Sprintf("csvcore: parsing error at %s: %s", e.Location, e.Message)
}

func (e *ParsingError) Unwrap() error { return e.Err }

// UnsupportedError reports a configuration or destination shape the binder
// cannot handle (e.g. an unsupported field kind).
type UnsupportedError struct {
	Message string
}

func (e *UnsupportedError) Error() string { return "csvcore: unsupported: " + e.Message }

// IOError wraps an underlying I/O failure encountered while reading the
// source or writing the sink.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("csvcore: io: %v", e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// InvalidValueError reports a value that cannot be represented. No path in
// this package returns it: an unterminated quote is reported as a
// *ParsingError, and a value the encoder cannot format as a
// *TypeMismatchError.
type InvalidValueError struct {
	Message  string
	Location Location
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("csvcore: invalid value at %s: %s", e.Location, e.Message)
}

// RowErrors aggregates every field-level error encountered while binding a
// single row, so a caller can see every problem in that row at once instead
// of stopping at the first one.
type RowErrors struct {
	Row    int
	Errors []error
}

func (e *RowErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("csvcore: row %d: %d errors (first: %v)", e.Row, len(e.Errors), e.Errors[0])
}

func (e *RowErrors) Unwrap() []error { return e.Errors }

func (e *RowErrors) add(err error) {
	e.Errors = append(e.Errors, err)
}

func (e *RowErrors) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
