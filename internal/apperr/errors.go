package apperr

import "fmt"

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// NotFoundError is returned when a run, method or source does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}
