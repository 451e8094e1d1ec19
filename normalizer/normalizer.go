// Package normalizer maps SDK nonces onto models.NonceResult.
package normalizer

import (
	"paidpiper.com/nonce-gateway/models"
	"paidpiper.com/nonce-gateway/sdk"
)

const MalformedGooglePay = "Google Pay nonce is missing its token or card type"

// Normalize reports an OpaqueMessage error for nonces that cannot be
// represented, currently only Google Pay nonces without token or card type.
func Normalize(nonce sdk.PaymentMethodNonce) (models.NonceResult, *models.CanonicalError) {
	switch n := nonce.(type) {
	case *sdk.PayPalAccountNonce:
		return models.NonceResult{
			Kind:            models.NoncePayPalAccount,
			Token:           n.Token,
			FirstName:       n.FirstName,
			LastName:        n.LastName,
			Email:           n.Email,
			Phone:           n.Phone,
			BillingAddress:  copyAddress(n.BillingAddress),
			ShippingAddress: copyAddress(n.ShippingAddress),
		}, nil

	case *sdk.GooglePayCardNonce:
		if n.Token == "" || n.CardType == "" {
			return models.NonceResult{}, models.OpaqueMessage(MalformedGooglePay)
		}
		return models.NonceResult{
			Kind:            models.NonceGooglePayCard,
			Token:           n.Token,
			CardType:        n.CardType,
			LastFour:        n.LastFour,
			Email:           n.Email,
			BillingAddress:  copyAddress(n.BillingAddress),
			ShippingAddress: copyAddress(n.ShippingAddress),
		}, nil

	case *sdk.CardNonce:
		return models.NonceResult{
			Kind:     models.NonceCard,
			Token:    n.Token,
			CardType: n.CardType,
			LastFour: n.LastFour,
		}, nil

	case nil:
		return models.NonceResult{}, models.OpaqueMessage("empty nonce")

	default:
		return models.NonceResult{Kind: models.NonceOpaque, Token: nonce.Nonce()}, nil
	}
}

func copyAddress(a *models.PostalAddress) *models.PostalAddress {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
