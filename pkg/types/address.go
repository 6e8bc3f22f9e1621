package types

// Address is a street address resolved from a Brazilian postal code (CEP).
// Only PostalCode is ever user-authored; the rest comes from the lookup service.
type Address struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	IBGE         string `json:"ibge,omitempty"`
	GIA          string `json:"gia,omitempty"`
	DDD          string `json:"ddd,omitempty"`
	SIAFI        string `json:"siafi,omitempty"`
}
