// Package filter implements the product filtering core: the filter state
// value, the predicate engine that matches products against it, a canonical
// cache key, a query-string codec for shareable URLs, and a TTL-bounded
// result cache.
package filter

import "github.com/dhatukala/dhatukala/pkg/models"

// State holds the current filter selections. The zero value is the default
// state: every field absent, matching everything. Nil pointer fields are
// wildcards. FinishTypes preserves insertion order for display; membership,
// not order, decides matching.
type State struct {
	Metal       *models.MetalType    `json:"metal,omitempty"`
	Category    *models.CategoryType `json:"category,omitempty"`
	PriceMin    *float64             `json:"price_min,omitempty"`
	PriceMax    *float64             `json:"price_max,omitempty"`
	WeightMin   *float64             `json:"weight_min,omitempty"`
	WeightMax   *float64             `json:"weight_max,omitempty"`
	HeightMin   *float64             `json:"height_min,omitempty"`
	HeightMax   *float64             `json:"height_max,omitempty"`
	FinishTypes []models.FinishType  `json:"finish_types,omitempty"`
}

// clone returns a deep copy so that returned snapshots stay stable when the
// controller replaces fields later.
func (s State) clone() State {
	cp := s
	cp.Metal = clonePtr(s.Metal)
	cp.Category = clonePtr(s.Category)
	cp.PriceMin = clonePtr(s.PriceMin)
	cp.PriceMax = clonePtr(s.PriceMax)
	cp.WeightMin = clonePtr(s.WeightMin)
	cp.WeightMax = clonePtr(s.WeightMax)
	cp.HeightMin = clonePtr(s.HeightMin)
	cp.HeightMax = clonePtr(s.HeightMax)
	if s.FinishTypes != nil {
		cp.FinishTypes = make([]models.FinishType, len(s.FinishTypes))
		copy(cp.FinishTypes, s.FinishTypes)
	}
	return cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
