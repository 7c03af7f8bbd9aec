package catalog

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/pkg/filter"
	"github.com/dhatukala/dhatukala/pkg/models"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dhatukala_catalog_filter_cache_hits_total",
		Help: "Filter evaluations served from the result cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dhatukala_catalog_filter_cache_misses_total",
		Help: "Filter evaluations that loaded products and ran the predicate engine.",
	})
)

// Engine evaluates filter states against the product catalogue, caching
// results by canonical filter key. Any product mutation must call
// Invalidate so stale matches never outlive the data they were computed
// from.
type Engine struct {
	products services.ProductRepository
	cache    *filter.ResultCache
	logger   *zap.Logger
}

// NewEngine creates a filtering engine over the given repository.
func NewEngine(products services.ProductRepository, logger *zap.Logger, opts ...filter.CacheOption) *Engine {
	return &Engine{
		products: products,
		cache:    filter.NewResultCache(opts...),
		logger:   logger,
	}
}

// Filter returns the products matching the given state, from cache when a
// fresh entry exists for an equivalent state.
func (e *Engine) Filter(ctx context.Context, s filter.State) ([]models.Product, error) {
	if cached, ok := e.cache.Get(s); ok {
		cacheHits.Inc()
		return cached, nil
	}
	cacheMisses.Inc()

	all, err := e.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products for filtering: %w", err)
	}

	matched := filter.Apply(all, s)
	e.cache.Set(s, matched)

	e.logger.Debug("filter evaluated",
		zap.String("key", filter.Key(s)),
		zap.Int("candidates", len(all)),
		zap.Int("matched", len(matched)),
	)
	return matched, nil
}

// Invalidate drops all cached results. Called after any product mutation.
func (e *Engine) Invalidate() {
	e.cache.Clear()
}
