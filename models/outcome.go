package models

import "time"

type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	// OutcomeDisplaced marks an operation whose pending slot was taken over
	// by a later one; its caller is never notified.
	OutcomeDisplaced OutcomeStatus = "displaced"
)

// Outcome summarizes how an operation ended. It never carries nonce tokens
// or card data.
type Outcome struct {
	RequestID  string        `json:"requestId"`
	Operation  string        `json:"operation"`
	Status     OutcomeStatus `json:"status"`
	NonceKind  NonceKind     `json:"nonceKind,omitempty"`
	ErrorKind  ErrorKind     `json:"errorKind,omitempty"`
	SessionID  string        `json:"sessionId,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}
