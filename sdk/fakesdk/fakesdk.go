// Package fakesdk is an in-memory payment SDK. Tests fire listener events by
// hand; the sandbox gateway enables AutoRespond to get deterministic results.
package fakesdk

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-errors/errors"

	"paidpiper.com/nonce-gateway/log"
	"paidpiper.com/nonce-gateway/models"
	"paidpiper.com/nonce-gateway/sdk"
)

const (
	// DeclinedCardNumber makes auto-responding tokenization fail validation.
	DeclinedCardNumber = "4000111111111115"
	// UnshiftedNonce makes auto-responding 3-D Secure report no liability shift.
	UnshiftedNonce = "fake-three-d-secure-unshifted"
)

var ErrNoUIContext = errors.New("ui context is required")

type Client struct {
	mutex       *sync.Mutex
	invalid     map[string]bool
	handles     []*Handle
	AutoRespond bool
}

func NewClient(invalidCredentials ...string) *Client {
	invalid := make(map[string]bool, len(invalidCredentials))
	for _, c := range invalidCredentials {
		invalid[c] = true
	}
	return &Client{
		mutex:   &sync.Mutex{},
		invalid: invalid,
	}
}

func (c *Client) CreateSession(ctx context.Context, cfg sdk.SessionConfig) (sdk.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Credential == "" || c.invalid[cfg.Credential] {
		return nil, errors.Errorf("authorization %q is invalid", cfg.Credential)
	}
	if cfg.UI == nil {
		return nil, ErrNoUIContext
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	h := &Handle{
		mutex:      &sync.Mutex{},
		config:     cfg,
		listeners:  make(map[sdk.ListenerKind]sdk.Listener),
		responders: make(map[string]interface{}),
		auto:       c.AutoRespond,
	}
	c.handles = append(c.handles, h)
	return h, nil
}

// Handles returns every handle created so far, oldest first.
func (c *Client) Handles() []*Handle {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]*Handle(nil), c.handles...)
}

// Last returns the most recently created handle or nil.
func (c *Client) Last() *Handle {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.handles) == 0 {
		return nil
	}
	return c.handles[len(c.handles)-1]
}

type Submission struct {
	RequestID string
	Method    string
	Request   interface{}
}

type Handle struct {
	mutex       *sync.Mutex
	config      sdk.SessionConfig
	listeners   map[sdk.ListenerKind]sdk.Listener
	submissions []Submission
	responders  map[string]interface{}
	closed      bool
	auto        bool
}

func (h *Handle) Config() sdk.SessionConfig {
	return h.config
}

func (h *Handle) AddListener(listener sdk.Listener) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.closed {
		return sdk.ErrHandleClosed
	}
	if _, ok := h.listeners[listener.Kind()]; ok {
		return sdk.ErrListenerAttached
	}
	h.listeners[listener.Kind()] = listener
	return nil
}

func (h *Handle) RemoveListener(kind sdk.ListenerKind) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.listeners, kind)
}

func (h *Handle) Listeners() []sdk.ListenerKind {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	var kinds []sdk.ListenerKind
	for _, k := range []sdk.ListenerKind{sdk.ListenerCancel, sdk.ListenerNonceCreated, sdk.ListenerError} {
		if _, ok := h.listeners[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (h *Handle) Close() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.closed = true
	return nil
}

func (h *Handle) Closed() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.closed
}

func (h *Handle) record(requestID, method string, req interface{}, responder interface{}) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.closed {
		return sdk.ErrHandleClosed
	}
	h.submissions = append(h.submissions, Submission{RequestID: requestID, Method: method, Request: req})
	if responder != nil {
		h.responders[requestID] = responder
	}
	return nil
}

func (h *Handle) Submissions() []Submission {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return append([]Submission(nil), h.submissions...)
}

// LastSubmission returns the newest submission, or false when none was made.
func (h *Handle) LastSubmission() (Submission, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if len(h.submissions) == 0 {
		return Submission{}, false
	}
	return h.submissions[len(h.submissions)-1], true
}

func (h *Handle) TokenizeCard(requestID string, req *models.CardRequest) error {
	if err := h.record(requestID, "TokenizeCard", req, nil); err != nil {
		return err
	}
	if h.auto {
		go h.respondCard(requestID, req)
	}
	return nil
}

func (h *Handle) RequestPayPalOneTime(requestID string, req *models.PayPalRequest) error {
	return h.payPal(requestID, "RequestPayPalOneTime", req)
}

func (h *Handle) RequestPayPalBillingAgreement(requestID string, req *models.PayPalRequest) error {
	return h.payPal(requestID, "RequestPayPalBillingAgreement", req)
}

func (h *Handle) payPal(requestID, method string, req *models.PayPalRequest) error {
	if err := h.record(requestID, method, req, nil); err != nil {
		return err
	}
	if h.auto {
		go h.FireNonce(requestID, &sdk.PayPalAccountNonce{
			Token:     "fake-paypal-account-nonce-" + requestID,
			Email:     "sandbox@example.com",
			FirstName: "Sandbox",
			LastName:  "Buyer",
		})
	}
	return nil
}

func (h *Handle) IsReadyToPay(requestID string, response func(ready bool)) error {
	if err := h.record(requestID, "IsReadyToPay", nil, response); err != nil {
		return err
	}
	if h.auto {
		go h.RespondReadiness(requestID, true)
	}
	return nil
}

func (h *Handle) RequestGooglePay(requestID string, req *models.GooglePayRequest) error {
	if err := h.record(requestID, "RequestGooglePay", req, nil); err != nil {
		return err
	}
	if h.auto {
		go h.FireNonce(requestID, &sdk.GooglePayCardNonce{
			Token:    "fake-android-pay-nonce-" + requestID,
			CardType: "Visa",
			LastFour: "1111",
			Email:    "sandbox@example.com",
		})
	}
	return nil
}

func (h *Handle) PerformThreeDSecureVerification(requestID string, req *models.ThreeDSecureRequest) error {
	if err := h.record(requestID, "PerformThreeDSecureVerification", req, nil); err != nil {
		return err
	}
	if h.auto {
		shifted := req.Nonce != UnshiftedNonce
		go h.FireNonce(requestID, &sdk.CardNonce{
			Token:    "fake-three-d-secure-nonce-" + requestID,
			CardType: "Visa",
			LastFour: "1111",
			ThreeDSecureInfo: &sdk.ThreeDSecureInfo{
				LiabilityShifted:       shifted,
				LiabilityShiftPossible: true,
				Status:                 "authenticate_successful",
			},
		})
	}
	return nil
}

func (h *Handle) CollectDeviceData(requestID string, paypal bool, response func(deviceData string)) error {
	method := "CollectDeviceData"
	if paypal {
		method = "CollectPayPalDeviceData"
	}
	if err := h.record(requestID, method, paypal, response); err != nil {
		return err
	}
	if h.auto {
		go h.RespondDeviceData(requestID, fmt.Sprintf(`{"correlation_id":"%s"}`, requestID))
	}
	return nil
}

func (h *Handle) listener(kind sdk.ListenerKind) sdk.Listener {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.listeners[kind]
}

// FireCancel invokes the cancel listener. It reports false when none is attached.
func (h *Handle) FireCancel(requestID string) bool {
	l, ok := h.listener(sdk.ListenerCancel).(sdk.CancelListener)
	if !ok {
		log.Debugf("fakesdk: no cancel listener for %s", requestID)
		return false
	}
	l(requestID)
	return true
}

func (h *Handle) FireNonce(requestID string, nonce sdk.PaymentMethodNonce) bool {
	l, ok := h.listener(sdk.ListenerNonceCreated).(sdk.NonceCreatedListener)
	if !ok {
		log.Debugf("fakesdk: no nonce listener for %s", requestID)
		return false
	}
	l(requestID, nonce)
	return true
}

func (h *Handle) FireError(requestID string, err error) bool {
	l, ok := h.listener(sdk.ListenerError).(sdk.ErrorListener)
	if !ok {
		log.Debugf("fakesdk: no error listener for %s", requestID)
		return false
	}
	l(requestID, err)
	return true
}

func (h *Handle) takeResponder(requestID string) interface{} {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	r := h.responders[requestID]
	delete(h.responders, requestID)
	return r
}

func (h *Handle) RespondReadiness(requestID string, ready bool) bool {
	fn, ok := h.takeResponder(requestID).(func(bool))
	if !ok {
		return false
	}
	fn(ready)
	return true
}

func (h *Handle) RespondDeviceData(requestID, deviceData string) bool {
	fn, ok := h.takeResponder(requestID).(func(string))
	if !ok {
		return false
	}
	fn(deviceData)
	return true
}

func (h *Handle) respondCard(requestID string, req *models.CardRequest) {
	number := ""
	if req.Number != nil {
		number = strings.ReplaceAll(*req.Number, " ", "")
	}
	if number == DeclinedCardNumber {
		h.FireError(requestID, &sdk.ErrorWithResponse{
			StatusCode: 422,
			Response:   "Credit card number is invalid",
			Errors: []*sdk.FieldError{{
				Field: "creditCard",
				Errors: []*sdk.FieldError{
					{Field: "number", Message: "Credit card number is invalid"},
				},
			}},
		})
		return
	}

	lastFour := number
	if len(lastFour) > 4 {
		lastFour = lastFour[len(lastFour)-4:]
	}
	h.FireNonce(requestID, &sdk.CardNonce{
		Token:    "fake-valid-nonce-" + requestID,
		CardType: cardType(number),
		LastFour: lastFour,
	})
}

func cardType(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "Visa"
	case strings.HasPrefix(number, "5"):
		return "MasterCard"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "American Express"
	default:
		return "Unknown"
	}
}
