package types

import "strings"

// ShippingAddress is the address snapshot embedded into orders and the
// user's address book. Stored as jsonb.
type ShippingAddress struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// IsComplete reports whether every field carries a non-empty value.
func (a ShippingAddress) IsComplete() bool {
	for _, field := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}
