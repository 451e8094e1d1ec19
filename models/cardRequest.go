package models

// Input keys of a card tokenization request.
const (
	CardNumber          = "number"
	CardCvv             = "cvv"
	CardExpirationDate  = "expirationDate"
	CardExpirationMonth = "expirationMonth"
	CardExpirationYear  = "expirationYear"
	CardCardholderName  = "cardholderName"
	CardFirstName       = "firstName"
	CardLastName        = "lastName"
	CardCompany         = "company"
	CardCountryCode     = "countryCode"
	CardLocality        = "locality"
	CardPostalCode      = "postalCode"
	CardRegion          = "region"
	CardStreetAddress   = "streetAddress"
	CardExtendedAddress = "extendedAddress"
)

// CardRequest is submitted for card tokenization. Nil fields are not sent.
type CardRequest struct {
	Number          *string `json:"number,omitempty"`
	Cvv             *string `json:"cvv,omitempty"`
	ExpirationDate  *string `json:"expirationDate,omitempty"`
	ExpirationMonth *string `json:"expirationMonth,omitempty"`
	ExpirationYear  *string `json:"expirationYear,omitempty"`
	CardholderName  *string `json:"cardholderName,omitempty"`
	FirstName       *string `json:"firstName,omitempty"`
	LastName        *string `json:"lastName,omitempty"`
	Company         *string `json:"company,omitempty"`
	CountryCode     *string `json:"countryCode,omitempty"`
	Locality        *string `json:"locality,omitempty"`
	PostalCode      *string `json:"postalCode,omitempty"`
	Region          *string `json:"region,omitempty"`
	StreetAddress   *string `json:"streetAddress,omitempty"`
	ExtendedAddress *string `json:"extendedAddress,omitempty"`

	// Validate is always false; the tokenization call validates remotely.
	Validate bool `json:"validate"`
}

func NewCardRequest(fields Fields) *CardRequest {
	req := &CardRequest{
		Number:          fields.optional(CardNumber),
		Cvv:             fields.optional(CardCvv),
		CardholderName:  fields.optional(CardCardholderName),
		FirstName:       fields.optional(CardFirstName),
		LastName:        fields.optional(CardLastName),
		Company:         fields.optional(CardCompany),
		CountryCode:     fields.optional(CardCountryCode),
		Locality:        fields.optional(CardLocality),
		PostalCode:      fields.optional(CardPostalCode),
		Region:          fields.optional(CardRegion),
		StreetAddress:   fields.optional(CardStreetAddress),
		ExtendedAddress: fields.optional(CardExtendedAddress),
	}

	if date := fields.optional(CardExpirationDate); date != nil {
		req.ExpirationDate = date
	} else {
		req.ExpirationMonth = fields.optional(CardExpirationMonth)
		req.ExpirationYear = fields.optional(CardExpirationYear)
	}

	return req
}

// Present lists the input keys that were set on the request.
func (r *CardRequest) Present() []string {
	var keys []string
	add := func(key string, v *string) {
		if v != nil {
			keys = append(keys, key)
		}
	}
	add(CardNumber, r.Number)
	add(CardCvv, r.Cvv)
	add(CardExpirationDate, r.ExpirationDate)
	add(CardExpirationMonth, r.ExpirationMonth)
	add(CardExpirationYear, r.ExpirationYear)
	add(CardCardholderName, r.CardholderName)
	add(CardFirstName, r.FirstName)
	add(CardLastName, r.LastName)
	add(CardCompany, r.Company)
	add(CardCountryCode, r.CountryCode)
	add(CardLocality, r.Locality)
	add(CardPostalCode, r.PostalCode)
	add(CardRegion, r.Region)
	add(CardStreetAddress, r.StreetAddress)
	add(CardExtendedAddress, r.ExtendedAddress)
	return keys
}
