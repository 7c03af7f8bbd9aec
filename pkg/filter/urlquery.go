package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/dhatukala/dhatukala/pkg/models"
)

// Query parameter names are a wire contract: previously shared links must
// keep resolving, so these never change.
const (
	paramMetal     = "metal"
	paramCategory  = "category"
	paramPriceMin  = "price_min"
	paramPriceMax  = "price_max"
	paramWeightMin = "weight_min"
	paramWeightMax = "weight_max"
	paramHeightMin = "height_min"
	paramHeightMax = "height_max"
	paramFinish    = "finish"
)

// EncodeQuery serializes a state to URL query parameters. Absent fields are
// omitted entirely; the finish set becomes one comma-joined parameter in
// insertion order.
func EncodeQuery(s State) url.Values {
	v := url.Values{}
	if s.Metal != nil {
		v.Set(paramMetal, string(*s.Metal))
	}
	if s.Category != nil {
		v.Set(paramCategory, string(*s.Category))
	}
	setFloat(v, paramPriceMin, s.PriceMin)
	setFloat(v, paramPriceMax, s.PriceMax)
	setFloat(v, paramWeightMin, s.WeightMin)
	setFloat(v, paramWeightMax, s.WeightMax)
	setFloat(v, paramHeightMin, s.HeightMin)
	setFloat(v, paramHeightMax, s.HeightMax)
	if len(s.FinishTypes) > 0 {
		parts := make([]string, len(s.FinishTypes))
		for i, f := range s.FinishTypes {
			parts[i] = string(f)
		}
		v.Set(paramFinish, strings.Join(parts, ","))
	}
	return v
}

// DecodeQuery parses query parameters into a state. The parse is total:
// each field is validated against its closed enumeration or a finite-number
// parse, and anything that fails is silently left absent. Malformed or
// adversarial queries degrade to fewer filters, never to an error.
func DecodeQuery(v url.Values) State {
	var s State

	if m := models.MetalType(v.Get(paramMetal)); m != "" && m.Valid() {
		s.Metal = &m
	}
	if c := models.CategoryType(v.Get(paramCategory)); c != "" && c.Valid() {
		s.Category = &c
	}
	s.PriceMin = parseFloat(v.Get(paramPriceMin))
	s.PriceMax = parseFloat(v.Get(paramPriceMax))
	s.WeightMin = parseFloat(v.Get(paramWeightMin))
	s.WeightMax = parseFloat(v.Get(paramWeightMax))
	s.HeightMin = parseFloat(v.Get(paramHeightMin))
	s.HeightMax = parseFloat(v.Get(paramHeightMax))

	if raw := v.Get(paramFinish); raw != "" {
		var finishes []models.FinishType
		for _, part := range strings.Split(raw, ",") {
			if f := models.FinishType(part); f.Valid() {
				finishes = append(finishes, f)
			}
		}
		s.FinishTypes = finishes
	}

	return s
}

func setFloat(v url.Values, name string, f *float64) {
	if f != nil {
		v.Set(name, strconv.FormatFloat(*f, 'f', -1, 64))
	}
}

// parseFloat accepts only finite numbers; "NaN" and "Inf" parse under
// strconv but are not meaningful bounds.
func parseFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
