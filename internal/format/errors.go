package format

import (
	"errors"
	"fmt"
)

var (
	// ErrIO indicates the archive or one of its siblings could not be read or written.
	ErrIO = errors.New("format: i/o failure")
	// ErrOutOfRange indicates a field does not fit inside the loaded archive.
	ErrOutOfRange = errors.New("format: offset out of range")
	// ErrVerification indicates a re-read field did not hold its expected value.
	ErrVerification = errors.New("format: verification failed")
	// ErrUnknownRecord indicates a record name missing from the layout table.
	ErrUnknownRecord = errors.New("format: unknown record")
	// ErrUnknownField indicates a field name missing from its record.
	ErrUnknownField = errors.New("format: unknown field")
	// ErrTypeMismatch indicates a value whose type differs from the field's declared type.
	ErrTypeMismatch = errors.New("format: type mismatch")
	// ErrLocked indicates another process holds the archive lock.
	ErrLocked = errors.New("format: archive locked")
)

// IOError reports a filesystem failure on a specific path.
type IOError struct {
	Op   string // "load", "flush", "backup", "restore", ...
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// OutOfRangeError reports a field whose bytes extend past the end of the buffer.
// Record and Field are empty for raw offset accesses.
type OutOfRangeError struct {
	Record string
	Field  string
	Offset int
	Width  int
	Len    int
}

// Error implements the error interface.
func (e *OutOfRangeError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("%s.%s at offset 0x%X (+%d) exceeds archive length 0x%X",
			e.Record, e.Field, e.Offset, e.Width, e.Len)
	}
	return fmt.Sprintf("offset 0x%X (+%d) exceeds archive length 0x%X", e.Offset, e.Width, e.Len)
}

// Is reports whether target is ErrOutOfRange.
func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// VerificationFailure identifies the first (or each) field that failed a post-patch check.
type VerificationFailure struct {
	Record   string
	Field    string
	Offset   int
	Expected Value
	Actual   Value
}

// Error implements the error interface.
func (e *VerificationFailure) Error() string {
	return fmt.Sprintf("%s.%s at offset 0x%X: expected %s, found %s",
		e.Record, e.Field, e.Offset, e.Expected, e.Actual)
}

// Is reports whether target is ErrVerification.
func (e *VerificationFailure) Is(target error) bool { return target == ErrVerification }
