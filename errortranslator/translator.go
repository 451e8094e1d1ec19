// Package errortranslator collapses SDK failures into models.CanonicalError.
package errortranslator

import (
	"errors"

	"paidpiper.com/nonce-gateway/models"
	"paidpiper.com/nonce-gateway/sdk"
)

const creditCard = "creditCard"

// Sub-fields of the credit card error node and the keys they are reported under.
var cardFields = []struct {
	sdkField string
	key      string
}{
	{"number", models.FieldCardNumber},
	{"cvv", models.FieldCvv},
	{"expirationDate", models.FieldExpirationDate},
	{"postalCode", models.FieldPostalCode},
}

func Cancelled() *models.CanonicalError {
	return models.UserCancelled()
}

func Translate(err error) *models.CanonicalError {
	if err == nil {
		return models.OpaqueMessage("unknown error")
	}
	if errors.Is(err, sdk.ErrUserCanceled) {
		return Cancelled()
	}
	if ce, ok := models.AsCanonical(err); ok {
		return ce
	}

	var resp *sdk.ErrorWithResponse
	if errors.As(err, &resp) {
		if card := resp.ErrorFor(creditCard); card != nil {
			fields := make(map[string]string)
			for _, f := range cardFields {
				if sub := card.ErrorFor(f.sdkField); sub != nil && sub.Message != "" {
					fields[f.key] = sub.Message
				}
			}
			return models.FieldValidation(fields)
		}
		return models.OpaqueMessage(resp.Response)
	}

	return models.OpaqueMessage(err.Error())
}
