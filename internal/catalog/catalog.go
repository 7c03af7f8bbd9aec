// Package catalog implements the product catalogue module: product CRUD,
// the filtering engine with its result cache, and filter metadata.
package catalog

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dhatukala/dhatukala/internal/module"
	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/internal/store"
	"github.com/dhatukala/dhatukala/pkg/filter"
	"github.com/dhatukala/dhatukala/pkg/models"
)

// Guard wraps a handler with authentication. A nil guard leaves the
// handler unprotected.
type Guard func(http.HandlerFunc) http.HandlerFunc

// Migrations defines the catalog module's schema.
var Migrations = []store.Migration{
	{
		Version:     1,
		Description: "create catalog_products table",
		Up: func(tx *sql.Tx) error {
			stmts := []string{
				`CREATE TABLE IF NOT EXISTS catalog_products (
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
				`CREATE INDEX IF NOT EXISTS idx_catalog_products_metal ON catalog_products(metal)`,
				`CREATE INDEX IF NOT EXISTS idx_catalog_products_category ON catalog_products(category)`,
				`CREATE INDEX IF NOT EXISTS idx_catalog_products_price ON catalog_products(price)`,
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

// Module implements the catalog feature module.
type Module struct {
	logger   *zap.Logger
	config   *viper.Viper
	store    *store.SQLiteStore
	products services.ProductRepository
	engine   *Engine
	guard    Guard
}

// New creates a catalog module backed by the given store. The guard
// protects mutating routes; pass nil to leave them open.
func New(st *store.SQLiteStore, guard Guard) *Module {
	return &Module{store: st, guard: guard}
}

func (m *Module) Name() string    { return "catalog" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.config = config
	m.logger = logger

	if err := m.store.Migrate(context.Background(), m.Name(), Migrations); err != nil {
		return err
	}
	m.products = services.NewSQLiteProductRepository(m.store.DB())

	ttl := filter.DefaultTTL
	if m.config != nil && m.config.IsSet("cache_ttl") {
		ttl = m.config.GetDuration("cache_ttl")
	}
	m.engine = NewEngine(m.products, m.logger, filter.WithTTL(ttl))

	m.logger.Info("catalog module initialized", zap.Duration("cache_ttl", ttl))
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("catalog module started")
	return nil
}

func (m *Module) Stop() error {
	m.logger.Info("catalog module stopped")
	return nil
}

// Engine exposes the filtering engine for other modules (exports renders
// whatever the engine matches).
func (m *Module) Engine() *Engine { return m.engine }

// Products exposes the product repository for other modules.
func (m *Module) Products() services.ProductRepository { return m.products }

// Filter evaluates a filter state through the engine. It lets the module
// stand in for the engine before Init has run, since dependents are
// constructed ahead of initialization.
func (m *Module) Filter(ctx context.Context, s filter.State) ([]models.Product, error) {
	return m.engine.Filter(ctx, s)
}

func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "GET", Path: "/products", Handler: m.handleListProducts},
		{Method: "GET", Path: "/products/{id}", Handler: m.handleGetProduct},
		{Method: "POST", Path: "/products", Handler: m.protect(m.handleCreateProduct)},
		{Method: "PUT", Path: "/products/{id}", Handler: m.protect(m.handleUpdateProduct)},
		{Method: "DELETE", Path: "/products/{id}", Handler: m.protect(m.handleDeleteProduct)},
		{Method: "GET", Path: "/metadata", Handler: m.handleMetadata},
		{Method: "GET", Path: "/categories", Handler: m.handleCategories},
	}
}

func (m *Module) protect(h http.HandlerFunc) http.HandlerFunc {
	if m.guard == nil {
		return h
	}
	return m.guard(h)
}
