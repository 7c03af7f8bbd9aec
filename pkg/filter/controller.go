package filter

import (
	"sync"
	"time"

	"github.com/dhatukala/dhatukala/pkg/models"
)

// DefaultLoadDelay is how long the controller reports Loading after a metal
// change, while dependent category options are recomputed downstream.
const DefaultLoadDelay = 100 * time.Millisecond

// Bounds is an inclusive numeric range hint for a range filter input.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Metadata describes the filter options valid for the current state.
type Metadata struct {
	AvailableCategories []models.CategoryType `json:"available_categories"`
	PriceRange          Bounds                `json:"price_range"`
	WeightRange         Bounds                `json:"weight_range"`
	HeightRange         Bounds                `json:"height_range"`
}

// Controller owns the authoritative filter state for one session. Every
// mutation replaces the state wholesale and returns a snapshot, so callers
// can cache or serialize a returned value without it shifting underneath
// them. Changing the metal cascades: category, ranges, and finishes all
// reset, because the previous selections may not exist for the new metal.
type Controller struct {
	mu        sync.Mutex
	state     State
	loading   bool
	loadDelay time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithLoadDelay overrides how long the loading flag stays raised after a
// metal change.
func WithLoadDelay(d time.Duration) Option {
	return func(c *Controller) { c.loadDelay = d }
}

// NewController creates a Controller starting from the given state,
// typically the zero State or one decoded from an incoming URL.
func NewController(initial State, opts ...Option) *Controller {
	c := &Controller{
		state:     initial.clone(),
		loadDelay: DefaultLoadDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current filter state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Loading reports whether category options are still settling after a metal
// change.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// SetMetal replaces the entire state with one holding only the new metal.
// Category, ranges, and finish selections are all cleared; they were chosen
// against the previous metal's option set. Passing nil clears the metal too.
func (c *Controller) SetMetal(metal *models.MetalType) State {
	c.mu.Lock()
	c.state = State{Metal: clonePtr(metal)}
	c.loading = true
	c.mu.Unlock()

	time.AfterFunc(c.loadDelay, func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	})

	return c.State()
}

// SetCategory replaces only the category. The compatibility of the category
// with the current metal is deliberately not checked here; an inconsistent
// pair yields an empty match set, never an error.
func (c *Controller) SetCategory(category *models.CategoryType) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Category = clonePtr(category)
	return c.state.clone()
}

// SetPriceRange replaces the price bounds. Inverted bounds are stored as
// given; the predicate engine swaps them at evaluation time.
func (c *Controller) SetPriceRange(min, max *float64) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PriceMin = clonePtr(min)
	c.state.PriceMax = clonePtr(max)
	return c.state.clone()
}

// SetWeightRange replaces the weight bounds.
func (c *Controller) SetWeightRange(min, max *float64) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.WeightMin = clonePtr(min)
	c.state.WeightMax = clonePtr(max)
	return c.state.clone()
}

// SetHeightRange replaces the height bounds.
func (c *Controller) SetHeightRange(min, max *float64) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.HeightMin = clonePtr(min)
	c.state.HeightMax = clonePtr(max)
	return c.state.clone()
}

// SetFinishTypes replaces the finish set wholesale. Callers compute the
// toggle themselves and pass the resulting set.
func (c *Controller) SetFinishTypes(finishes []models.FinishType) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if finishes == nil {
		c.state.FinishTypes = nil
	} else {
		c.state.FinishTypes = make([]models.FinishType, len(finishes))
		copy(c.state.FinishTypes, finishes)
	}
	return c.state.clone()
}

// Reset clears everything except the metal selection. This is the explicit
// "clear my refinements, keep my metal" operation; use SetMetal(nil) to
// clear the metal as well.
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Metal: clonePtr(c.state.Metal)}
	return c.state.clone()
}

// Metadata reports the categories valid for the current metal plus the
// static range hints the filter inputs display.
func (c *Controller) Metadata() Metadata {
	c.mu.Lock()
	metal := clonePtr(c.state.Metal)
	c.mu.Unlock()
	return MetadataFor(metal)
}

// MetadataFor reports the categories valid for the given metal plus the
// static range hints. A nil metal yields no categories.
func MetadataFor(metal *models.MetalType) Metadata {
	var cats []models.CategoryType
	if metal != nil {
		cats = models.CategoriesFor(*metal)
	} else {
		cats = []models.CategoryType{}
	}
	return Metadata{
		AvailableCategories: cats,
		PriceRange:          Bounds{Min: 0, Max: 50000},
		WeightRange:         Bounds{Min: 0, Max: 20},
		HeightRange:         Bounds{Min: 0, Max: 48},
	}
}
