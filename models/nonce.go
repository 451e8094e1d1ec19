package models

type NonceKind string

const (
	NonceOpaque        NonceKind = "opaque"
	NonceCard          NonceKind = "card"
	NoncePayPalAccount NonceKind = "paypal_account"
	NonceGooglePayCard NonceKind = "google_pay_card"
)

// NonceResult is the canonical success payload of every tokenizing operation.
// Kind is the discriminant; the optional fields are only filled for the
// variants that carry them.
type NonceResult struct {
	Kind            NonceKind      `json:"type"`
	Token           string         `json:"nonce"`
	FirstName       string         `json:"firstName,omitempty"`
	LastName        string         `json:"lastName,omitempty"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	CardType        string         `json:"cardType,omitempty"`
	LastFour        string         `json:"lastFour,omitempty"`
	BillingAddress  *PostalAddress `json:"billingAddress,omitempty"`
	ShippingAddress *PostalAddress `json:"shippingAddress,omitempty"`
}
