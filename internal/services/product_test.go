package services_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/internal/store"
	"github.com/dhatukala/dhatukala/internal/testutil"
	"github.com/dhatukala/dhatukala/pkg/models"
)

// catalogMigrations creates the catalog_products table needed by the
// product repository tests.
var catalogMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create catalog tables for testing",
		Up: func(tx *sql.Tx) error {
			stmts := []string{
				`CREATE TABLE catalog_products (
					id          TEXT PRIMARY KEY,
					name        TEXT NOT NULL,
					metal       TEXT NOT NULL,
					category    TEXT NOT NULL,
					price       REAL NOT NULL DEFAULT 0,
					weight_kg   REAL NOT NULL DEFAULT 0,
					height_inch REAL NOT NULL DEFAULT 0,
					finish_type TEXT NOT NULL DEFAULT '',
					stock       INTEGER NOT NULL DEFAULT 0,
					images      TEXT NOT NULL DEFAULT '[]',
					description TEXT NOT NULL DEFAULT '',
					created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_catalog_products_metal ON catalog_products(metal)`,
				`CREATE INDEX idx_catalog_products_category ON catalog_products(category)`,
				`CREATE INDEX idx_catalog_products_price ON catalog_products(price)`,
			}
			for _, stmt := range stmts {
				if _, err := tx.Exec(stmt); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

func newProductRepo(t *testing.T) services.ProductRepository {
	t.Helper()
	st := testutil.NewStore(t)
	if err := st.Migrate(context.Background(), "catalog", catalogMigrations); err != nil {
		t.Fatalf("catalog migrations: %v", err)
	}
	return services.NewSQLiteProductRepository(st.DB())
}

func TestSQLiteProductRepository_CreateAndGet(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	p := testutil.NewProduct(
		testutil.WithName("Copper Shree Yantra"),
		testutil.WithMetal(models.MetalCopper),
		testutil.WithCategory(models.CategoryYantra),
		testutil.WithPrice(1450),
	)

	if err := repo.Create(ctx, &p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.Name != "Copper Shree Yantra" {
		t.Errorf("Name = %q, want %q", got.Name, "Copper Shree Yantra")
	}
	if got.Metal != models.MetalCopper {
		t.Errorf("Metal = %q, want %q", got.Metal, models.MetalCopper)
	}
	if got.Category != models.CategoryYantra {
		t.Errorf("Category = %q, want %q", got.Category, models.CategoryYantra)
	}
	if got.Price != 1450 {
		t.Errorf("Price = %v, want 1450", got.Price)
	}
	if len(got.Images) != 1 {
		t.Errorf("Images = %v, want one entry", got.Images)
	}
}

func TestSQLiteProductRepository_CreateGeneratesID(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	p := testutil.NewProduct()
	p.ID = "" // Force ID generation.

	if err := repo.Create(ctx, &p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == "" {
		t.Error("Create did not generate an ID")
	}
}

func TestSQLiteProductRepository_GetNotFound(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "nonexistent-id")
	if err != services.ErrNotFound {
		t.Errorf("Get nonexistent = %v, want ErrNotFound", err)
	}
}

func TestSQLiteProductRepository_Update(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	p := testutil.NewProduct(testutil.WithName("old-name"), testutil.WithStock(2))
	if err := repo.Create(ctx, &p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	p.Name = "new-name"
	p.Stock = 0
	p.Price = 9999

	if err := repo.Update(ctx, &p); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.Name != "new-name" {
		t.Errorf("Name = %q, want %q", got.Name, "new-name")
	}
	if got.Stock != 0 {
		t.Errorf("Stock = %d, want 0", got.Stock)
	}
	if got.Price != 9999 {
		t.Errorf("Price = %v, want 9999", got.Price)
	}
}

func TestSQLiteProductRepository_UpdateNotFound(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	p := testutil.NewProduct()
	p.ID = "nonexistent-id"

	err := repo.Update(ctx, &p)
	if err != services.ErrNotFound {
		t.Errorf("Update nonexistent = %v, want ErrNotFound", err)
	}
}

func TestSQLiteProductRepository_Delete(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	p := testutil.NewProduct()
	if err := repo.Create(ctx, &p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err := repo.Get(ctx, p.ID)
	if err != services.ErrNotFound {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestSQLiteProductRepository_DeleteNotFound(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	err := repo.Delete(ctx, "nonexistent-id")
	if err != services.ErrNotFound {
		t.Errorf("Delete nonexistent = %v, want ErrNotFound", err)
	}
}

func TestSQLiteProductRepository_ListPagination(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		p := testutil.NewProduct(testutil.WithName(
			"idol-" + string(rune('A'+i)),
		))
		if err := repo.Create(ctx, &p); err != nil {
			t.Fatalf("Create product %d: %v", i, err)
		}
	}

	// Page 1: limit 2, offset 0.
	result, err := repo.List(ctx, services.ProductFilter{}, services.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	if result.Total != 5 {
		t.Errorf("Total = %d, want 5", result.Total)
	}
	if len(result.Items) != 2 {
		t.Errorf("Page 1 items = %d, want 2", len(result.Items))
	}

	// Page 3: limit 2, offset 4.
	result, err = repo.List(ctx, services.ProductFilter{}, services.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List page 3: %v", err)
	}
	if len(result.Items) != 1 {
		t.Errorf("Page 3 items = %d, want 1", len(result.Items))
	}
}

func TestSQLiteProductRepository_ListFilterMetal(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	for _, m := range []models.MetalType{
		models.MetalBrass,
		models.MetalBrass,
		models.MetalCopper,
	} {
		p := testutil.NewProduct(testutil.WithMetal(m))
		if err := repo.Create(ctx, &p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	result, err := repo.List(ctx, services.ProductFilter{Metal: "Brass"}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total brass = %d, want 2", result.Total)
	}
}

func TestSQLiteProductRepository_ListFilterPriceRange(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	for _, price := range []float64{500, 1500, 3000, 8000} {
		p := testutil.NewProduct(testutil.WithPrice(price))
		if err := repo.Create(ctx, &p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	min, max := 1000.0, 5000.0
	result, err := repo.List(ctx,
		services.ProductFilter{PriceMin: &min, PriceMax: &max},
		services.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total in [1000, 5000] = %d, want 2", result.Total)
	}
}

func TestSQLiteProductRepository_ListSearch(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	p1 := testutil.NewProduct(testutil.WithName("Dancing Ganesha"))
	p2 := testutil.NewProduct(testutil.WithName("Sitting Ganesha"))
	p3 := testutil.NewProduct(testutil.WithName("Laxmi Idol"))
	for _, p := range []*models.Product{&p1, &p2, &p3} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	result, err := repo.List(ctx, services.ProductFilter{Search: "Ganesha"}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total matching 'Ganesha' = %d, want 2", result.Total)
	}
}

func TestSQLiteProductRepository_ListInStock(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	p1 := testutil.NewProduct(testutil.WithStock(3))
	p2 := testutil.NewProduct(testutil.WithStock(0))
	for _, p := range []*models.Product{&p1, &p2} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	result, err := repo.List(ctx, services.ProductFilter{InStock: true}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Total in stock = %d, want 1", result.Total)
	}
}

func TestSQLiteProductRepository_ListSortAsc(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	p1 := testutil.NewProduct(testutil.WithName("alpha"), testutil.WithPrice(900))
	p2 := testutil.NewProduct(testutil.WithName("beta"), testutil.WithPrice(300))
	p3 := testutil.NewProduct(testutil.WithName("gamma"), testutil.WithPrice(600))
	for _, p := range []*models.Product{&p1, &p2, &p3} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	result, err := repo.List(ctx, services.ProductFilter{}, services.ListOptions{
		SortBy: "price", SortOrder: "asc",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("Items = %d, want 3", len(result.Items))
	}
	if result.Items[0].Name != "beta" {
		t.Errorf("First = %q, want %q", result.Items[0].Name, "beta")
	}
	if result.Items[2].Name != "alpha" {
		t.Errorf("Last = %q, want %q", result.Items[2].Name, "alpha")
	}
}

func TestSQLiteProductRepository_ListEmpty(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	result, err := repo.List(ctx, services.ProductFilter{}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Total)
	}
	if result.Items == nil {
		t.Error("Items is nil, want empty slice")
	}
}

func TestSQLiteProductRepository_All(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	p1 := testutil.NewProduct(testutil.WithName("oldest"))
	p1.CreatedAt = now.Add(-2 * time.Hour)
	p2 := testutil.NewProduct(testutil.WithName("newest"))
	p2.CreatedAt = now
	for _, p := range []*models.Product{&p1, &p2} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("All = %d products, want 2", len(all))
	}
	if all[0].Name != "newest" {
		t.Errorf("First = %q, want %q", all[0].Name, "newest")
	}
}
