package models

import "time"

// Catalogue records one PDF export: which filters produced it, how many
// products it contained, and where the rendered file lives.
type Catalogue struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	FilterQuery  string    `json:"filter_query"` // URL query-string form of the filter state
	ProductCount int       `json:"product_count"`
	FilePath     string    `json:"file_path,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
