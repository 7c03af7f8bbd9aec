package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/dhatukala/dhatukala/pkg/models"
)

// NewProduct returns a Product with sensible defaults, suitable for test
// fixtures. Override individual fields via options as needed.
func NewProduct(opts ...func(*models.Product)) models.Product {
	p := models.Product{
		ID:         uuid.New().String(),
		Name:       "Brass Ganesha Idol",
		Metal:      models.MetalBrass,
		Category:   models.CategoryGanesh,
		Price:      3200,
		WeightKg:   2.5,
		HeightInch: 9,
		FinishType: models.FinishAntique,
		Stock:      4,
		Images:     []string{"/images/ganesha-01.webp"},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithName sets the product name.
func WithName(name string) func(*models.Product) {
	return func(p *models.Product) { p.Name = name }
}

// WithMetal sets the product metal.
func WithMetal(m models.MetalType) func(*models.Product) {
	return func(p *models.Product) { p.Metal = m }
}

// WithCategory sets the product category.
func WithCategory(c models.CategoryType) func(*models.Product) {
	return func(p *models.Product) { p.Category = c }
}

// WithPrice sets the product price.
func WithPrice(price float64) func(*models.Product) {
	return func(p *models.Product) { p.Price = price }
}

// WithWeight sets the product weight in kilograms.
func WithWeight(kg float64) func(*models.Product) {
	return func(p *models.Product) { p.WeightKg = kg }
}

// WithHeight sets the product height in inches.
func WithHeight(inch float64) func(*models.Product) {
	return func(p *models.Product) { p.HeightInch = inch }
}

// WithFinish sets the product finish type.
func WithFinish(f models.FinishType) func(*models.Product) {
	return func(p *models.Product) { p.FinishType = f }
}

// WithStock sets the product stock count.
func WithStock(n int) func(*models.Product) {
	return func(p *models.Product) { p.Stock = n }
}

// NewParty returns a Party fixture.
func NewParty(opts ...func(*models.Party)) models.Party {
	p := models.Party{
		ID:        uuid.New().String(),
		Name:      "Sharma Handicrafts",
		Type:      models.PartyCustomer,
		Contact:   "+91 98XXXXXX01",
		City:      "Jaipur",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithPartyType sets the party type.
func WithPartyType(t models.PartyType) func(*models.Party) {
	return func(p *models.Party) { p.Type = t }
}

// NewRate returns a MetalRate fixture.
func NewRate(opts ...func(*models.MetalRate)) models.MetalRate {
	r := models.MetalRate{
		ID:            uuid.New().String(),
		Metal:         models.MetalBrass,
		RatePerUnit:   640,
		Unit:          "kg",
		EffectiveFrom: time.Now().UTC(),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithRateMetal sets the rate's metal.
func WithRateMetal(m models.MetalType) func(*models.MetalRate) {
	return func(r *models.MetalRate) { r.Metal = m }
}
