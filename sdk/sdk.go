// Package sdk describes the payment SDK the gateway drives. Every submission
// is fire-and-forget: results arrive through the listeners attached to the
// handle, tagged with the request id the submission carried.
package sdk

import (
	"context"

	"paidpiper.com/nonce-gateway/models"
)

// UIContext is the host surface hosted flows (PayPal, Google Pay, 3-D Secure)
// are presented on.
type UIContext interface {
	Name() string
}

type SessionConfig struct {
	Credential      string
	UI              UIContext
	ReturnURLScheme string
}

type Client interface {
	CreateSession(ctx context.Context, cfg SessionConfig) (Handle, error)
}

type Handle interface {
	// AddListener fails with ErrListenerAttached when a listener of the same
	// kind is already attached.
	AddListener(listener Listener) error
	RemoveListener(kind ListenerKind)
	Listeners() []ListenerKind

	TokenizeCard(requestID string, req *models.CardRequest) error
	RequestPayPalOneTime(requestID string, req *models.PayPalRequest) error
	RequestPayPalBillingAgreement(requestID string, req *models.PayPalRequest) error
	IsReadyToPay(requestID string, response func(ready bool)) error
	RequestGooglePay(requestID string, req *models.GooglePayRequest) error
	PerformThreeDSecureVerification(requestID string, req *models.ThreeDSecureRequest) error
	CollectDeviceData(requestID string, paypal bool, response func(deviceData string)) error

	Close() error
}
