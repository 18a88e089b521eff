package paramseq

import (
	"errors"
	"fmt"
)

var (
	ErrNoSweeps = errors.New("paramseq: no parameters to vary")
	ErrNilFunc  = errors.New("paramseq: base function is nil")
)

type EmptyValuesError struct {
	Param string
}

func (e *EmptyValuesError) Error() string {
	return fmt.Sprintf("paramseq: no values for parameter %q", e.Param)
}

type InvalidParameterError struct {
	Func  string
	Param string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("paramseq: %q is not a parameter of %s", e.Param, e.Func)
}

type DuplicateParameterError struct {
	Param string
}

func (e *DuplicateParameterError) Error() string {
	return fmt.Sprintf("paramseq: parameter %q varied more than once", e.Param)
}

// LengthMismatchError is returned in zip mode when the sweeps differ in length.
type LengthMismatchError struct {
	Param string
	Want  int
	Got   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("paramseq: zip mode needs %d values for %q, got %d", e.Want, e.Param, e.Got)
}

type LabelCollisionError struct {
	Label string
}

func (e *LabelCollisionError) Error() string {
	return fmt.Sprintf("paramseq: two value combinations share the label %q", e.Label)
}

type MissingArgumentError struct {
	Param string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("paramseq: argument %q is not bound", e.Param)
}

type ArgumentTypeError struct {
	Param string
	Want  string
	Got   any
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("paramseq: argument %q must be %s, got %T", e.Param, e.Want, e.Got)
}
