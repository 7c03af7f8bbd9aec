package filter

import "github.com/dhatukala/dhatukala/pkg/models"

// swapRange returns the bounds in evaluation order. A user-entered min above
// max is treated as a transposition, not a contradiction: the pair is
// evaluated swapped so the typo never hides every result.
func swapRange(min, max *float64) (*float64, *float64) {
	if min != nil && max != nil && *min > *max {
		return max, min
	}
	return min, max
}

// inRange reports whether v lies within the inclusive range, treating a nil
// bound as unbounded on that side.
func inRange(v float64, min, max *float64) bool {
	min, max = swapRange(min, max)
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

func matchesMetal(p models.Product, metal *models.MetalType) bool {
	return metal == nil || p.Metal == *metal
}

func matchesCategory(p models.Product, category *models.CategoryType) bool {
	return category == nil || p.Category == *category
}

func matchesFinishTypes(p models.Product, finishes []models.FinishType) bool {
	if len(finishes) == 0 {
		return true
	}
	for _, f := range finishes {
		if p.FinishType == f {
			return true
		}
	}
	return false
}

// Matches reports whether the product satisfies every specified condition in
// the state (logical AND). Absent fields match everything. A category that is
// incompatible with the metal is not an error; the conjunction simply yields
// fewer matches.
func Matches(p models.Product, s State) bool {
	return matchesMetal(p, s.Metal) &&
		matchesCategory(p, s.Category) &&
		inRange(p.Price, s.PriceMin, s.PriceMax) &&
		inRange(p.WeightKg, s.WeightMin, s.WeightMax) &&
		inRange(p.HeightInch, s.HeightMin, s.HeightMax) &&
		matchesFinishTypes(p, s.FinishTypes)
}

// Apply returns the products matching s, preserving the input order. It is a
// stable filter with no side effects; the exporter relies on the order for
// its row numbering.
func Apply(products []models.Product, s State) []models.Product {
	result := make([]models.Product, 0, len(products))
	for i := range products {
		if Matches(products[i], s) {
			result = append(result, products[i])
		}
	}
	return result
}
