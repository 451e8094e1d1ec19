package sdk

type ListenerKind int

const (
	ListenerCancel ListenerKind = iota
	ListenerNonceCreated
	ListenerError
)

func (k ListenerKind) String() string {
	switch k {
	case ListenerCancel:
		return "cancel"
	case ListenerNonceCreated:
		return "nonce_created"
	case ListenerError:
		return "error"
	default:
		return "unknown"
	}
}

type Listener interface {
	Kind() ListenerKind
}

// CancelListener fires when the user aborts a hosted flow.
type CancelListener func(requestID string)

type NonceCreatedListener func(requestID string, nonce PaymentMethodNonce)

type ErrorListener func(requestID string, err error)

func (CancelListener) Kind() ListenerKind       { return ListenerCancel }
func (NonceCreatedListener) Kind() ListenerKind { return ListenerNonceCreated }
func (ErrorListener) Kind() ListenerKind        { return ListenerError }
