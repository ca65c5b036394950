// Package errs defines the error taxonomy shared by the speechbatch
// pipeline packages.
//
// Every error returned by the pipeline wraps exactly one of the sentinel
// errors below, so callers can branch with errors.Is:
//
//	if errors.Is(err, errs.ErrShape) {
//	    // skip the offending example
//	}
//
// None of these conditions is transient; retrying the same call with the
// same input fails the same way.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrConfig reports an invalid configuration value: a batch size out of
	// range, an unknown padding mode, a missing collaborator.
	ErrConfig = errors.New("config error")

	// ErrShape reports a feature-dimension mismatch between sequences.
	ErrShape = errors.New("shape error")

	// ErrEncoding reports a character outside the alphabet, an index that
	// does not decode, or a malformed sparse label batch.
	ErrEncoding = errors.New("encoding error")

	// ErrInput reports unusable input data, such as an empty waveform.
	ErrInput = errors.New("input error")

	// ErrIO reports a missing, unreadable or corrupt file or blob.
	ErrIO = errors.New("io error")
)

// Config returns an error wrapping ErrConfig.
func Config(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// Encoding returns an error wrapping ErrEncoding.
func Encoding(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEncoding, fmt.Sprintf(format, args...))
}

// Input returns an error wrapping ErrInput.
func Input(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}

// IO returns an error wrapping ErrIO and cause. The cause stays reachable
// through errors.Is/As, so os.ErrNotExist can still be detected.
func IO(cause error, format string, args ...any) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrIO, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("%w: %s: %w", ErrIO, fmt.Sprintf(format, args...), cause)
}

// ShapeError reports a sequence whose trailing shape differs from the one
// established by the first non-empty sequence of the batch.
type ShapeError struct {
	// Index is the position of the offending sequence in the batch.
	Index int
	// Got is the trailing shape of the offending sequence.
	Got []int
	// Want is the expected trailing shape.
	Want []int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape error: sample shape %v of sequence at position %d differs from expected shape %v",
		e.Got, e.Index, e.Want)
}

// Is makes errors.Is(err, ErrShape) true for every ShapeError.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}
