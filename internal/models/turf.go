package models

import "github.com/shopspring/decimal"

type Turf struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Location      string          `json:"location"`
	Rating        float64         `json:"rating"`
	PricePerHour  decimal.Decimal `json:"pricePerHour"`
	ContactNumber string          `json:"contactNumber,omitempty"`
	Description   string          `json:"description,omitempty"`
	Images        []string        `json:"images"`
	Availability  *bool           `json:"availability,omitempty"`
}

// IsActive treats a missing availability flag as active.
func (t *Turf) IsActive() bool {
	return t.Availability == nil || *t.Availability
}

func (t *Turf) HasImages() bool {
	return len(t.Images) > 0
}
