package sdk

import (
	"paidpiper.com/nonce-gateway/models"
)

type PaymentMethodNonce interface {
	Nonce() string
}

type ThreeDSecureInfo struct {
	LiabilityShifted       bool
	LiabilityShiftPossible bool
	Status                 string
}

type CardNonce struct {
	Token            string
	CardType         string
	LastFour         string
	ThreeDSecureInfo *ThreeDSecureInfo
}

func (n *CardNonce) Nonce() string { return n.Token }

type PayPalAccountNonce struct {
	Token           string
	Email           string
	FirstName       string
	LastName        string
	Phone           string
	BillingAddress  *models.PostalAddress
	ShippingAddress *models.PostalAddress
}

func (n *PayPalAccountNonce) Nonce() string { return n.Token }

type GooglePayCardNonce struct {
	Token           string
	CardType        string
	LastFour        string
	Email           string
	BillingAddress  *models.PostalAddress
	ShippingAddress *models.PostalAddress
}

func (n *GooglePayCardNonce) Nonce() string { return n.Token }

type VenmoAccountNonce struct {
	Token    string
	Username string
}

func (n *VenmoAccountNonce) Nonce() string { return n.Token }
