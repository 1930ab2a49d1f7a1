package sets

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound is returned when a key has no live Set meta record.
	ErrNotFound = errors.New("sets: key not found")

	// ErrOverflow is returned when an operation would push a counter (for
	// example SCARD's backing count) out of its representable range.
	ErrOverflow = errors.New("sets: counter overflow")

	// ErrCorruptedInput is returned when a stored record fails to decode,
	// or when a multi-key command receives an empty key list.
	ErrCorruptedInput = errors.New("sets: corrupted input")
)

// WrongTypeError reports that key holds a value of a different Redis type
// than the command requires, in the canonical
// "WRONGTYPE, key: X, expect type: Set, get type: T" form.
type WrongTypeError struct {
	Key      string
	Expected TypeTag
	Actual   TypeTag
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("WRONGTYPE, key: %s, expect type: %s, get type: %s", e.Key, TypeTag(e.Expected).String(), TypeTag(e.Actual).String())
}

// NewWrongTypeError builds a WrongTypeError for key given the type it held.
func NewWrongTypeError(key []byte, expected, actual TypeTag) error {
	return &WrongTypeError{Key: string(key), Expected: expected, Actual: actual}
}

// IsWrongType reports whether err (or any error it wraps) is a
// WrongTypeError.
func IsWrongType(err error) bool {
	var wte *WrongTypeError
	return errors.As(err, &wte)
}
