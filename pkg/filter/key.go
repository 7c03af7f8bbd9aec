package filter

import (
	"encoding/json"
	"sort"

	"github.com/dhatukala/dhatukala/pkg/models"
)

// keyPayload fixes the field order of the cache key. Absent fields serialize
// as explicit nulls so that "absent" and "zero" never collide, and the finish
// set is sorted so toggle order never affects the key.
type keyPayload struct {
	Metal       *models.MetalType    `json:"metal"`
	Category    *models.CategoryType `json:"category"`
	PriceMin    *float64             `json:"price_min"`
	PriceMax    *float64             `json:"price_max"`
	WeightMin   *float64             `json:"weight_min"`
	WeightMax   *float64             `json:"weight_max"`
	HeightMin   *float64             `json:"height_min"`
	HeightMax   *float64             `json:"height_max"`
	FinishTypes []string             `json:"finish_types"`
}

// Key derives the canonical cache key for a state. Two states that filter
// identically produce identical keys; any difference in a filtering-relevant
// field produces a different key.
func Key(s State) string {
	finishes := make([]string, len(s.FinishTypes))
	for i, f := range s.FinishTypes {
		finishes[i] = string(f)
	}
	sort.Strings(finishes)

	// Marshaling a struct of pointers cannot fail.
	b, _ := json.Marshal(keyPayload{
		Metal:       s.Metal,
		Category:    s.Category,
		PriceMin:    s.PriceMin,
		PriceMax:    s.PriceMax,
		WeightMin:   s.WeightMin,
		WeightMax:   s.WeightMax,
		HeightMin:   s.HeightMin,
		HeightMax:   s.HeightMax,
		FinishTypes: finishes,
	})
	return string(b)
}

// Equal reports whether two states are filtering-equivalent, defined as
// cache-key equality.
func Equal(a, b State) bool {
	return Key(a) == Key(b)
}
