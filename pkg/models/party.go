package models

import "time"

// PartyType distinguishes the two kinds of business party.
type PartyType string

const (
	PartyCustomer    PartyType = "customer"
	PartyDistributor PartyType = "distributor"
)

// Valid reports whether p is a known party type.
func (p PartyType) Valid() bool {
	return p == PartyCustomer || p == PartyDistributor
}

// Party is a business party: a customer or a distributor the workshop
// sells through.
type Party struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      PartyType `json:"type"`
	Contact   string    `json:"contact,omitempty"`
	Email     string    `json:"email,omitempty"`
	City      string    `json:"city,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
