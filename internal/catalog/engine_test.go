package catalog

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/pkg/filter"
	"github.com/dhatukala/dhatukala/pkg/models"
)

// countingRepo serves a fixed product set and counts All calls, so tests
// can observe whether the engine hit its cache.
type countingRepo struct {
	services.ProductRepository
	products []models.Product
	allCalls int
	err      error
}

func (r *countingRepo) All(ctx context.Context) ([]models.Product, error) {
	r.allCalls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func brassGanesh() models.Product {
	return models.Product{
		ID:         "p1",
		Name:       "Brass Ganesha",
		Metal:      models.MetalBrass,
		Category:   models.CategoryGanesh,
		Price:      3000,
		WeightKg:   2,
		HeightInch: 9,
		FinishType: models.FinishAntique,
	}
}

func copperYantra() models.Product {
	return models.Product{
		ID:         "p2",
		Name:       "Copper Yantra",
		Metal:      models.MetalCopper,
		Category:   models.CategoryYantra,
		Price:      1200,
		WeightKg:   0.5,
		HeightInch: 4,
		FinishType: models.FinishGlossy,
	}
}

func TestEngineFilter_Matches(t *testing.T) {
	repo := &countingRepo{products: []models.Product{brassGanesh(), copperYantra()}}
	engine := NewEngine(repo, zap.NewNop())

	metal := models.MetalBrass
	state := filter.State{Metal: &metal}

	matched, err := engine.Filter(context.Background(), state)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(matched) != 1 || matched[0].ID != "p1" {
		t.Errorf("matched = %v, want only p1", matched)
	}
}

func TestEngineFilter_CachesByState(t *testing.T) {
	repo := &countingRepo{products: []models.Product{brassGanesh(), copperYantra()}}
	engine := NewEngine(repo, zap.NewNop())
	ctx := context.Background()

	metal := models.MetalBrass
	state := filter.State{Metal: &metal}

	if _, err := engine.Filter(ctx, state); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if _, err := engine.Filter(ctx, state); err != nil {
		t.Fatalf("Filter again: %v", err)
	}
	if repo.allCalls != 1 {
		t.Errorf("All called %d times, want 1 (second call cached)", repo.allCalls)
	}

	// An equivalent state with a different finish ordering shares the entry.
	s1 := filter.State{FinishTypes: []models.FinishType{models.FinishMatte, models.FinishAntique}}
	s2 := filter.State{FinishTypes: []models.FinishType{models.FinishAntique, models.FinishMatte}}
	if _, err := engine.Filter(ctx, s1); err != nil {
		t.Fatalf("Filter s1: %v", err)
	}
	calls := repo.allCalls
	if _, err := engine.Filter(ctx, s2); err != nil {
		t.Fatalf("Filter s2: %v", err)
	}
	if repo.allCalls != calls {
		t.Error("reordered finish set missed the cache")
	}
}

func TestEngineFilter_DistinctStatesMiss(t *testing.T) {
	repo := &countingRepo{products: []models.Product{brassGanesh()}}
	engine := NewEngine(repo, zap.NewNop())
	ctx := context.Background()

	brass := models.MetalBrass
	copper := models.MetalCopper

	if _, err := engine.Filter(ctx, filter.State{Metal: &brass}); err != nil {
		t.Fatalf("Filter brass: %v", err)
	}
	if _, err := engine.Filter(ctx, filter.State{Metal: &copper}); err != nil {
		t.Fatalf("Filter copper: %v", err)
	}
	if repo.allCalls != 2 {
		t.Errorf("All called %d times, want 2 (distinct states)", repo.allCalls)
	}
}

func TestEngineInvalidate(t *testing.T) {
	repo := &countingRepo{products: []models.Product{brassGanesh()}}
	engine := NewEngine(repo, zap.NewNop())
	ctx := context.Background()

	state := filter.State{}
	if _, err := engine.Filter(ctx, state); err != nil {
		t.Fatalf("Filter: %v", err)
	}

	engine.Invalidate()

	if _, err := engine.Filter(ctx, state); err != nil {
		t.Fatalf("Filter after invalidate: %v", err)
	}
	if repo.allCalls != 2 {
		t.Errorf("All called %d times, want 2 (cache was invalidated)", repo.allCalls)
	}
}

func TestEngineFilter_RepositoryError(t *testing.T) {
	repo := &countingRepo{err: errors.New("disk gone")}
	engine := NewEngine(repo, zap.NewNop())

	if _, err := engine.Filter(context.Background(), filter.State{}); err == nil {
		t.Error("Filter with failing repository returned nil error")
	}
}
