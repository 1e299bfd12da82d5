package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no item has the given scan code.
	ErrNotFound = errors.New("item not found")
	// ErrCountBelowZero means an operation would leave a negative count.
	ErrCountBelowZero = errors.New("item count cannot go below zero")
	// ErrDuplicateCode means an item with the scan code already exists.
	ErrDuplicateCode = errors.New("barcode already exists")
	// ErrUserNotFound means no active user has the given ID.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError reports a required field that was left empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
