package router

type Operation string

const (
	OpSetup                  Operation = "setup"
	OpTokenizeCard           Operation = "tokenize_card"
	OpPayPalOneTime          Operation = "paypal_one_time"
	OpPayPalBillingAgreement Operation = "paypal_billing_agreement"
	OpGooglePayReady         Operation = "google_pay_ready"
	OpGooglePay              Operation = "google_pay"
	OpThreeDSecure           Operation = "three_d_secure"
	OpDeviceData             Operation = "device_data"
)

// Ticket is the request id minted for an operation.
type Ticket string

func (t Ticket) String() string { return string(t) }
