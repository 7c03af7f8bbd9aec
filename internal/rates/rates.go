// Package rates implements the metal rate board: per-metal pricing entries
// with effective dates, served newest first.
package rates

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dhatukala/dhatukala/internal/module"
	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/internal/store"
)

// Guard wraps a handler with authentication. A nil guard leaves the
// handler unprotected.
type Guard func(http.HandlerFunc) http.HandlerFunc

// Migrations defines the rates module's schema.
var Migrations = []store.Migration{
	{
		Version:     1,
		Description: "create rates_entries table",
		Up: func(tx *sql.Tx) error {
			stmts := []string{
				`CREATE TABLE IF NOT EXISTS rates_entries (
					id             TEXT PRIMARY KEY,
					metal          TEXT NOT NULL,
					rate_per_unit  REAL NOT NULL,
					unit           TEXT NOT NULL DEFAULT 'kg',
					effective_from DATETIME NOT NULL,
					created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_rates_entries_metal ON rates_entries(metal, effective_from)`,
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

// Module implements the rates feature module.
type Module struct {
	logger *zap.Logger
	config *viper.Viper
	store  *store.SQLiteStore
	rates  services.RateRepository
	guard  Guard
}

// New creates a rates module backed by the given store.
func New(st *store.SQLiteStore, guard Guard) *Module {
	return &Module{store: st, guard: guard}
}

func (m *Module) Name() string    { return "rates" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.config = config
	m.logger = logger

	if err := m.store.Migrate(context.Background(), m.Name(), Migrations); err != nil {
		return err
	}
	m.rates = services.NewSQLiteRateRepository(m.store.DB())

	m.logger.Info("rates module initialized")
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("rates module started")
	return nil
}

func (m *Module) Stop() error {
	m.logger.Info("rates module stopped")
	return nil
}

func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "GET", Path: "", Handler: m.handleListRates},
		{Method: "GET", Path: "/latest", Handler: m.handleLatestRates},
		{Method: "GET", Path: "/{id}", Handler: m.handleGetRate},
		{Method: "POST", Path: "", Handler: m.protect(m.handleCreateRate)},
		{Method: "PUT", Path: "/{id}", Handler: m.protect(m.handleUpdateRate)},
		{Method: "DELETE", Path: "/{id}", Handler: m.protect(m.handleDeleteRate)},
	}
}

func (m *Module) protect(h http.HandlerFunc) http.HandlerFunc {
	if m.guard == nil {
		return h
	}
	return m.guard(h)
}
