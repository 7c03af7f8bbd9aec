package filter

import (
	"testing"
	"time"

	"github.com/dhatukala/dhatukala/pkg/models"
)

func TestControllerStartsAtInitial(t *testing.T) {
	c := NewController(State{Metal: mp(models.MetalBrass)})
	got := c.State()
	if got.Metal == nil || *got.Metal != models.MetalBrass {
		t.Errorf("State().Metal = %v, want Brass", got.Metal)
	}
	if got.Category != nil || len(got.FinishTypes) != 0 {
		t.Error("initial state carried unexpected selections")
	}
}

func TestControllerSetMetalCascades(t *testing.T) {
	c := NewController(State{}, WithLoadDelay(time.Millisecond))

	c.SetMetal(mp(models.MetalBrass))
	c.SetCategory(cp(models.CategoryGanesh))
	c.SetPriceRange(fp(1000), fp(5000))
	c.SetFinishTypes([]models.FinishType{models.FinishAntique})

	got := c.SetMetal(mp(models.MetalPanchdhatu))

	if got.Metal == nil || *got.Metal != models.MetalPanchdhatu {
		t.Fatalf("metal = %v, want Panchdhatu", got.Metal)
	}
	if got.Category != nil {
		t.Error("category survived a metal change")
	}
	if got.PriceMin != nil || got.PriceMax != nil {
		t.Error("price range survived a metal change")
	}
	if len(got.FinishTypes) != 0 {
		t.Error("finish set survived a metal change")
	}
}

func TestControllerSetMetalNilClearsMetal(t *testing.T) {
	c := NewController(State{}, WithLoadDelay(time.Millisecond))
	c.SetMetal(mp(models.MetalBrass))
	got := c.SetMetal(nil)
	if got.Metal != nil {
		t.Errorf("metal = %v, want nil", got.Metal)
	}
}

func TestControllerResetPreservesMetal(t *testing.T) {
	c := NewController(State{}, WithLoadDelay(time.Millisecond))
	c.SetMetal(mp(models.MetalCopper))
	c.SetCategory(cp(models.CategoryYantra))
	c.SetWeightRange(fp(1), fp(3))
	c.SetHeightRange(fp(6), fp(18))
	c.SetFinishTypes([]models.FinishType{models.FinishGlossy})

	got := c.Reset()

	want := State{Metal: mp(models.MetalCopper)}
	if !Equal(got, want) {
		t.Errorf("Reset() = %s, want %s", Key(got), Key(want))
	}
}

func TestControllerSettersReplaceOnlyTheirFields(t *testing.T) {
	c := NewController(State{}, WithLoadDelay(time.Millisecond))
	c.SetMetal(mp(models.MetalBrass))
	c.SetCategory(cp(models.CategoryDiyas))

	got := c.SetPriceRange(fp(500), fp(1500))
	if got.Category == nil || *got.Category != models.CategoryDiyas {
		t.Error("SetPriceRange disturbed the category")
	}
	if got.Metal == nil || *got.Metal != models.MetalBrass {
		t.Error("SetPriceRange disturbed the metal")
	}
}

func TestControllerInvertedRangeStoredAsGiven(t *testing.T) {
	c := NewController(State{})
	got := c.SetPriceRange(fp(4000), fp(2000))
	if got.PriceMin == nil || *got.PriceMin != 4000 || got.PriceMax == nil || *got.PriceMax != 2000 {
		t.Error("controller reordered bounds; the swap belongs to evaluation time")
	}
}

func TestControllerSnapshotsAreStable(t *testing.T) {
	c := NewController(State{})
	before := c.SetFinishTypes([]models.FinishType{models.FinishAntique})

	c.SetFinishTypes([]models.FinishType{models.FinishGlossy, models.FinishMatte})

	if len(before.FinishTypes) != 1 || before.FinishTypes[0] != models.FinishAntique {
		t.Error("earlier snapshot mutated by a later transition")
	}
}

func TestControllerLoadingFlag(t *testing.T) {
	c := NewController(State{}, WithLoadDelay(5*time.Millisecond))

	c.SetMetal(mp(models.MetalBrass))
	if !c.Loading() {
		t.Fatal("Loading() = false immediately after SetMetal")
	}

	deadline := time.Now().Add(time.Second)
	for c.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("loading flag never cleared")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestControllerMetadata(t *testing.T) {
	c := NewController(State{}, WithLoadDelay(time.Millisecond))

	md := c.Metadata()
	if len(md.AvailableCategories) != 0 {
		t.Errorf("no metal selected but %d categories available", len(md.AvailableCategories))
	}

	c.SetMetal(mp(models.MetalCopper))
	md = c.Metadata()
	want := []models.CategoryType{models.CategoryYantra, models.CategoryTempleItems}
	if len(md.AvailableCategories) != len(want) {
		t.Fatalf("AvailableCategories = %v, want %v", md.AvailableCategories, want)
	}
	for i := range want {
		if md.AvailableCategories[i] != want[i] {
			t.Errorf("AvailableCategories[%d] = %q, want %q", i, md.AvailableCategories[i], want[i])
		}
	}
	if md.PriceRange.Max != 50000 || md.WeightRange.Max != 20 || md.HeightRange.Max != 48 {
		t.Errorf("range hints = %+v/%+v/%+v", md.PriceRange, md.WeightRange, md.HeightRange)
	}
}
