package models

const (
	ThreeDSecureNonce       = "nonce"
	ThreeDSecureAmount      = "amount"
	ThreeDSecureEmail       = "email"
	ThreeDSecureMobilePhone = "mobilePhoneNumber"

	ThreeDSecureGivenName       = "givenName"
	ThreeDSecureSurname         = "surname"
	ThreeDSecurePhoneNumber     = "phoneNumber"
	ThreeDSecureStreetAddress   = "streetAddress"
	ThreeDSecureExtendedAddress = "extendedAddress"
	ThreeDSecureLocality        = "locality"
	ThreeDSecureRegion          = "region"
	ThreeDSecurePostalCode      = "postalCode"
	ThreeDSecureCountryCode     = "countryCode"
)

type ThreeDSecureAddress struct {
	GivenName       *string `json:"givenName,omitempty"`
	Surname         *string `json:"surname,omitempty"`
	PhoneNumber     *string `json:"phoneNumber,omitempty"`
	StreetAddress   *string `json:"streetAddress,omitempty"`
	ExtendedAddress *string `json:"extendedAddress,omitempty"`
	Locality        *string `json:"locality,omitempty"`
	Region          *string `json:"region,omitempty"`
	PostalCode      *string `json:"postalCode,omitempty"`
	CountryCode     *string `json:"countryCode,omitempty"`
}

func (a *ThreeDSecureAddress) empty() bool {
	for _, v := range []*string{a.GivenName, a.Surname, a.PhoneNumber, a.StreetAddress,
		a.ExtendedAddress, a.Locality, a.Region, a.PostalCode, a.CountryCode} {
		if v != nil {
			return false
		}
	}
	return true
}

// ThreeDSecureRequest verifies a previously tokenized card nonce.
type ThreeDSecureRequest struct {
	Nonce          string               `json:"nonce"`
	Amount         string               `json:"amount"`
	Email          *string              `json:"email,omitempty"`
	MobilePhone    *string              `json:"mobilePhoneNumber,omitempty"`
	BillingAddress *ThreeDSecureAddress `json:"billingAddress,omitempty"`
}

func NewThreeDSecureRequest(fields Fields) *ThreeDSecureRequest {
	nonce, _ := fields.String(ThreeDSecureNonce)
	req := &ThreeDSecureRequest{
		Nonce:       nonce,
		Amount:      formatAmount(fields, ThreeDSecureAmount),
		Email:       fields.optional(ThreeDSecureEmail),
		MobilePhone: fields.optional(ThreeDSecureMobilePhone),
	}

	address := &ThreeDSecureAddress{
		GivenName:       fields.optional(ThreeDSecureGivenName),
		Surname:         fields.optional(ThreeDSecureSurname),
		PhoneNumber:     fields.optional(ThreeDSecurePhoneNumber),
		StreetAddress:   fields.optional(ThreeDSecureStreetAddress),
		ExtendedAddress: fields.optional(ThreeDSecureExtendedAddress),
		Locality:        fields.optional(ThreeDSecureLocality),
		Region:          fields.optional(ThreeDSecureRegion),
		PostalCode:      fields.optional(ThreeDSecurePostalCode),
		CountryCode:     fields.optional(ThreeDSecureCountryCode),
	}
	if !address.empty() {
		req.BillingAddress = address
	}

	return req
}
