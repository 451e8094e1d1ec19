package session

import (
	"paidpiper.com/nonce-gateway/sdk"
)

type EventKind int

const (
	EventCancelled EventKind = iota
	EventNonceCreated
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventCancelled:
		return "cancelled"
	case EventNonceCreated:
		return "nonce_created"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a terminal listener callback. Nonce is set for EventNonceCreated,
// Err for EventFailed.
type Event struct {
	Kind      EventKind
	RequestID string
	Nonce     sdk.PaymentMethodNonce
	Err       error
}

type EventSink interface {
	HandleEvent(ev Event)
}

// UIProvider reports the UI context hosted flows can be shown on, or nil.
type UIProvider interface {
	Current() sdk.UIContext
}

type UIProviderFunc func() sdk.UIContext

func (f UIProviderFunc) Current() sdk.UIContext { return f() }
