package bind

import "fmt"

// Errors returned by Bind. These mirror the root package's DecodingError
// taxonomy, except that KeyNotFoundError's Suggestion and ColumnIndex have
// no counterpart there and are dropped by the conversion, so the exported
// error carries no nearest-key suggestion; decode.go converts each into its exported
// csvcore counterpart at the call site rather than this package importing
// csvcore directly (which would create an import cycle, since csvcore
// imports bind).

type KeyNotFoundError struct {
	Name        string
	Row         int
	Column      string
	ColumnIndex int
	Available   []string
	Suggestion  string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("bind: key %q not found on row %d", e.Name, e.Row)
}

type TypeMismatchError struct {
	Expected string
	Actual   string
	Row      int
	Column   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("bind: row %d column %q: expected %s, got %s", e.Row, e.Column, e.Expected, e.Actual)
}

type ParsingError struct {
	Message string
	Row     int
	Column  string
	Err     error
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("bind: row %d column %q: %s: %v", e.Row, e.Column, e.Message, e.Err)
}
func (e *ParsingError) Unwrap() error { return e.Err }

type UnsupportedError struct {
	Message string
}

func (e *UnsupportedError) Error() string { return "bind: unsupported: " + e.Message }
