package models

const (
	GooglePayMerchantID             = "merchantId"
	GooglePayTotalPrice             = "totalPrice"
	GooglePayCurrencyCode           = "currencyCode"
	GooglePayBillingAddressRequired = "billingAddressRequired"

	TotalPriceStatusFinal = "FINAL"
)

type GooglePayRequest struct {
	MerchantID             *string `json:"merchantId,omitempty"`
	TotalPrice             string  `json:"totalPrice"`
	CurrencyCode           string  `json:"currencyCode"`
	TotalPriceStatus       string  `json:"totalPriceStatus"`
	BillingAddressRequired bool    `json:"billingAddressRequired"`
}

// NewGooglePayRequest uses defaultMerchantID when the caller does not supply
// one. An empty default leaves the merchant id unset.
func NewGooglePayRequest(fields Fields, defaultMerchantID string) *GooglePayRequest {
	currency, _ := fields.String(GooglePayCurrencyCode)
	req := &GooglePayRequest{
		MerchantID:             fields.optional(GooglePayMerchantID),
		TotalPrice:             formatAmount(fields, GooglePayTotalPrice),
		CurrencyCode:           currency,
		TotalPriceStatus:       TotalPriceStatusFinal,
		BillingAddressRequired: fields.Bool(GooglePayBillingAddressRequired),
	}
	if req.MerchantID == nil && defaultMerchantID != "" {
		id := defaultMerchantID
		req.MerchantID = &id
	}
	return req
}
