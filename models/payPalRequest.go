package models

import (
	"github.com/plutov/paypal/v4"
)

const (
	PayPalAmount                      = "amount"
	PayPalCurrencyCode                = "currencyCode"
	PayPalBillingAgreementDescription = "billingAgreementDescription"
	PayPalDisplayName                 = "displayName"
)

// PayPalRequest covers both the one-time and the billing agreement flow.
// Capture is left to the merchant backend, so the intent is always authorize.
// Intent carries the PayPal Orders API value ("AUTHORIZE"), which is what the
// merchant backend forwards when it creates the order.
type PayPalRequest struct {
	Amount                      string `json:"amount,omitempty"`
	CurrencyCode                string `json:"currencyCode,omitempty"`
	Intent                      string `json:"intent"`
	BillingAgreement            bool   `json:"billingAgreement"`
	BillingAgreementDescription string `json:"billingAgreementDescription,omitempty"`
	DisplayName                 string `json:"displayName,omitempty"`
}

func NewPayPalOneTimeRequest(fields Fields) *PayPalRequest {
	amount, _ := fields.String(PayPalAmount)
	return newPayPalRequest(fields, amount, false)
}

// NewPayPalBillingAgreementRequest ignores any supplied amount: a billing
// agreement has no upfront charge.
func NewPayPalBillingAgreementRequest(fields Fields) *PayPalRequest {
	req := newPayPalRequest(fields, "", true)
	req.BillingAgreementDescription, _ = fields.String(PayPalBillingAgreementDescription)
	return req
}

func newPayPalRequest(fields Fields, amount string, billingAgreement bool) *PayPalRequest {
	currency, _ := fields.String(PayPalCurrencyCode)
	displayName, _ := fields.String(PayPalDisplayName)
	return &PayPalRequest{
		Amount:           amount,
		CurrencyCode:     currency,
		Intent:           paypal.OrderIntentAuthorize,
		BillingAgreement: billingAgreement,
		DisplayName:      displayName,
	}
}
