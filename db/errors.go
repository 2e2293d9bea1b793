package db

import "fmt"

//ErrNotFound is the error returned from a db function when the
// operation record it was asked about does not exist.
type ErrNotFound struct {
	message string
}

func NewErrNotFound(format string, args ...interface{}) error {
	return ErrNotFound{
		message: fmt.Sprintf(format, args...),
	}
}

func (e ErrNotFound) Error() string {
	return e.message
}

//ErrFinalized is the error returned when a caller tries to transition
// or annotate an operation record that has already reached a terminal
// state.  Terminal records are never reopened.
type ErrFinalized struct {
	message string
}

func NewErrFinalized(format string, args ...interface{}) error {
	return ErrFinalized{
		message: fmt.Sprintf(format, args...),
	}
}

func (e ErrFinalized) Error() string {
	return e.message
}
