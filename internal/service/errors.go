package service

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// InputError carries a client-facing validation message and matches ErrInvalidInput.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Message
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(msg string) error {
	return &InputError{Message: msg}
}

const (
	MsgTitleRequired = "Title is required."
	MsgTitleEmpty    = "Title cannot be empty."
	MsgIDsRequired   = "ids must be a non-empty array."
	MsgBulkUpdate    = "ids must be an array and updates must be provided."
)
