package table

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput     = errors.New("table: initial data is empty")
	ErrEmptyMethods   = errors.New("table: stage has no candidate methods")
	ErrEmptyStageName = errors.New("table: stage name is empty")
	ErrNilTable       = errors.New("table: nil table")
	ErrNilMethod      = errors.New("table: nil candidate method")
	ErrUnknownColumn  = errors.New("table: unknown column")
)

type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("table: duplicate name %q", e.Name)
}

type DuplicateStageError struct {
	Stage string
}

func (e *DuplicateStageError) Error() string {
	return fmt.Sprintf("table: stage %q already exists", e.Stage)
}

// CandidateInvocationError reports the first candidate call that failed while
// applying a stage. Row is the index of the input row fed to the candidate.
type CandidateInvocationError struct {
	Stage     string
	Candidate string
	Row       int
	Err       error
}

func (e *CandidateInvocationError) Error() string {
	return fmt.Sprintf("table: stage %q candidate %q failed on row %d: %v", e.Stage, e.Candidate, e.Row, e.Err)
}

func (e *CandidateInvocationError) Unwrap() error {
	return e.Err
}

type ColumnSetMismatchError struct {
	Row  int
	Want []string
	Got  []string
}

func (e *ColumnSetMismatchError) Error() string {
	return fmt.Sprintf("table: result of row %d flattens to columns %v, expected %v", e.Row, e.Got, e.Want)
}

// IsInputError reports whether err was caused by invalid caller input rather
// than a failing candidate.
func IsInputError(err error) bool {
	var (
		dn *DuplicateNameError
		ds *DuplicateStageError
	)
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrEmptyMethods) ||
		errors.Is(err, ErrEmptyStageName) ||
		errors.Is(err, ErrNilMethod) ||
		errors.As(err, &dn) ||
		errors.As(err, &ds)
}
