package tokenizer

import (
	"errors"
	"fmt"
)

var (
	ErrPrecondition = errors.New("precondition violation")
	ErrInvalidData  = errors.New("invalid data")
	ErrUnknownToken = errors.New("unknown token")
	ErrIO           = errors.New("io failure")
)

// PreconditionError reports a request the tokenizer cannot satisfy with its
// current input, such as a vocabulary smaller than the byte alphabet.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPrecondition, e.Reason)
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// InvalidDataError reports a model file that cannot be parsed. Line is 1-based
// and zero when the problem is not tied to a single line.
type InvalidDataError struct {
	Path   string
	Line   int
	Reason string
}

func (e *InvalidDataError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s:%d: %s", ErrInvalidData, e.Path, e.Line, e.Reason)
	}

	return fmt.Sprintf("%s: %s: %s", ErrInvalidData, e.Path, e.Reason)
}

func (e *InvalidDataError) Is(target error) bool {
	return target == ErrInvalidData
}

type UnknownTokenError struct {
	ID int
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("%s: id %d is not in the vocabulary", ErrUnknownToken, e.ID)
}

func (e *UnknownTokenError) Is(target error) bool {
	return target == ErrUnknownToken
}

// IOError wraps a filesystem failure while reading or writing model files.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrIO, e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}
