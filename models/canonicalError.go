package models

import (
	"errors"

	"google.golang.org/grpc/codes"

	"paidpiper.com/nonce-gateway/common"
)

type ErrorKind string

const (
	ErrorUserCancelled   ErrorKind = "user_cancelled"
	ErrorFieldValidation ErrorKind = "field_validation"
	ErrorOpaqueMessage   ErrorKind = "opaque_message"
	ErrorInvalidInput    ErrorKind = "invalid_input"
	ErrorSetup           ErrorKind = "setup_error"
)

// UserCancellation is the fixed message of a cancelled hosted flow.
const UserCancellation = "USER_CANCELLATION"

// Field keys of a FieldValidation error.
const (
	FieldCardNumber     = "card_number"
	FieldCvv            = "cvv"
	FieldExpirationDate = "expiration_date"
	FieldPostalCode     = "postal_code"
)

// CanonicalError is the only error shape delivered to error continuations.
type CanonicalError struct {
	Kind    ErrorKind         `json:"kind"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func UserCancelled() *CanonicalError {
	return &CanonicalError{Kind: ErrorUserCancelled, Message: UserCancellation}
}

// FieldValidation keeps the map as given; callers only put present messages in it.
func FieldValidation(fields map[string]string) *CanonicalError {
	if fields == nil {
		fields = map[string]string{}
	}
	return &CanonicalError{Kind: ErrorFieldValidation, Fields: fields}
}

func OpaqueMessage(message string) *CanonicalError {
	return &CanonicalError{Kind: ErrorOpaqueMessage, Message: message}
}

func InvalidInput(message string) *CanonicalError {
	return &CanonicalError{Kind: ErrorInvalidInput, Message: message}
}

func SetupFailed(message string) *CanonicalError {
	return &CanonicalError{Kind: ErrorSetup, Message: message}
}

// Error renders field validation failures as a JSON object keyed by field.
func (e *CanonicalError) Error() string {
	switch e.Kind {
	case ErrorUserCancelled:
		return UserCancellation
	case ErrorFieldValidation:
		s, err := common.MarshalToString(e.Fields)
		if err != nil {
			return "field validation failed"
		}
		return s
	default:
		return e.Message
	}
}

func (e *CanonicalError) Code() codes.Code {
	switch e.Kind {
	case ErrorUserCancelled:
		return codes.Canceled
	case ErrorFieldValidation, ErrorInvalidInput:
		return codes.InvalidArgument
	case ErrorSetup:
		return codes.FailedPrecondition
	default:
		return codes.Unknown
	}
}

func (e *CanonicalError) Is(target error) bool {
	t, ok := target.(*CanonicalError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func AsCanonical(err error) (*CanonicalError, bool) {
	var ce *CanonicalError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
