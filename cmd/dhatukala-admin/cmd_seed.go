package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dhatukala/dhatukala/internal/catalog"
	"github.com/dhatukala/dhatukala/internal/rates"
	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/internal/store"
	"github.com/dhatukala/dhatukala/pkg/models"
)

// seedProducts is a representative slice of the workshop's range. Every
// entry respects the metal-category compatibility table.
var seedProducts = []models.Product{
	{Name: "Ganesh Idol 12in", Metal: models.MetalBrass, Category: models.CategoryGanesh,
		Price: 4800, WeightKg: 3.2, HeightInch: 12, FinishType: models.FinishAntique, Stock: 6},
	{Name: "Laxmi Idol 8in", Metal: models.MetalBrass, Category: models.CategoryLaxmi,
		Price: 2600, WeightKg: 1.4, HeightInch: 8, FinishType: models.FinishGlossy, Stock: 10},
	{Name: "Diya Set of 5", Metal: models.MetalBrass, Category: models.CategoryDiyas,
		Price: 950, WeightKg: 0.6, HeightInch: 2, FinishType: models.FinishMatte, Stock: 40},
	{Name: "Wall Bracket Peacock", Metal: models.MetalBrass, Category: models.CategoryBrackets,
		Price: 1450, WeightKg: 1.1, HeightInch: 9, FinishType: models.FinishAntique, Stock: 14},
	{Name: "Shri Yantra 6in", Metal: models.MetalCopper, Category: models.CategoryYantra,
		Price: 2100, WeightKg: 0.8, HeightInch: 6, FinishType: models.FinishGlossy, Stock: 12},
	{Name: "Kalash Large", Metal: models.MetalCopper, Category: models.CategoryTempleItems,
		Price: 3200, WeightKg: 2.0, HeightInch: 10, FinishType: models.FinishMatte, Stock: 8},
	{Name: "Hanuman Idol 10in", Metal: models.MetalPanchdhatu, Category: models.CategoryHanuman,
		Price: 9800, WeightKg: 2.6, HeightInch: 10, FinishType: models.FinishGoldPlated, Stock: 3},
	{Name: "Buddha Meditating 14in", Metal: models.MetalPanchdhatu, Category: models.CategoryBuddha,
		Price: 12500, WeightKg: 4.8, HeightInch: 14, FinishType: models.FinishAntique, Stock: 2},
}

var seedRates = []models.MetalRate{
	{Metal: models.MetalBrass, RatePerUnit: 640, Unit: "kg"},
	{Metal: models.MetalCopper, RatePerUnit: 890, Unit: "kg"},
	{Metal: models.MetalPanchdhatu, RatePerUnit: 2400, Unit: "kg"},
}

func runSeed(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	dbPath := fs.String("db", "dhatukala.db", "path to the database file")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if err := seed(context.Background(), *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d products and %d rates into %s\n",
		len(seedProducts), len(seedRates), *dbPath)
}

func seed(ctx context.Context, dbPath string) error {
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx, "catalog", catalog.Migrations); err != nil {
		return fmt.Errorf("catalog migrations: %w", err)
	}
	if err := st.Migrate(ctx, "rates", rates.Migrations); err != nil {
		return fmt.Errorf("rates migrations: %w", err)
	}

	products := services.NewSQLiteProductRepository(st.DB())
	for _, p := range seedProducts {
		if err := products.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	rateRepo := services.NewSQLiteRateRepository(st.DB())
	now := time.Now().UTC()
	for _, r := range seedRates {
		r.EffectiveFrom = now
		if err := rateRepo.Create(ctx, &r); err != nil {
			return fmt.Errorf("seed rate for %s: %w", r.Metal, err)
		}
	}
	return nil
}
