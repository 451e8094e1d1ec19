package sdk

import (
	"errors"
	"fmt"
)

var (
	ErrUserCanceled     = errors.New("user canceled")
	ErrListenerAttached = errors.New("listener already attached")
	ErrHandleClosed     = errors.New("handle closed")
)

// FieldError is one node of a validation error tree.
type FieldError struct {
	Field   string
	Message string
	Errors  []*FieldError
}

// ErrorFor returns the direct child for field, or nil.
func (e *FieldError) ErrorFor(field string) *FieldError {
	if e == nil {
		return nil
	}
	for _, child := range e.Errors {
		if child != nil && child.Field == field {
			return child
		}
	}
	return nil
}

// ErrorWithResponse is a structured failure returned by the gateway API.
type ErrorWithResponse struct {
	StatusCode int
	Response   string
	Errors     []*FieldError
}

func (e *ErrorWithResponse) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.StatusCode, e.Response)
}

// ErrorFor searches the top level of the error tree for field.
func (e *ErrorWithResponse) ErrorFor(field string) *FieldError {
	root := &FieldError{Errors: e.Errors}
	return root.ErrorFor(field)
}
