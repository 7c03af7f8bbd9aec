package models

import "time"

// MetalRate is a pricing rate for one metal, effective from a given date.
// Rate computation rules live with the pricing staff; the service only
// stores and serves the entries.
type MetalRate struct {
	ID            string    `json:"id"`
	Metal         MetalType `json:"metal"`
	RatePerUnit   float64   `json:"rate_per_unit"`
	Unit          string    `json:"unit"` // e.g. "kg", "gram"
	EffectiveFrom time.Time `json:"effective_from"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
