// Package parties implements the customer and distributor register.
package parties

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

// Migrations defines the parties module's schema.
var Migrations = []store.Migration{
	{
		Version:     1,
		Description: "create parties_records table",
		Up: func(tx *sql.Tx) error {
			stmts := []string{
				`CREATE TABLE IF NOT EXISTS parties_records (
					id         TEXT PRIMARY KEY,
					name       TEXT NOT NULL,
					party_type TEXT NOT NULL,
					contact    TEXT NOT NULL DEFAULT '',
					email      TEXT NOT NULL DEFAULT '',
					city       TEXT NOT NULL DEFAULT '',
					notes      TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_parties_records_type ON parties_records(party_type)`,
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

// Module implements the parties feature module.
type Module struct {
	logger  *zap.Logger
	config  *viper.Viper
	store   *store.SQLiteStore
	parties services.PartyRepository
	guard   Guard
}

// New creates a parties module backed by the given store.
func New(st *store.SQLiteStore, guard Guard) *Module {
	return &Module{store: st, guard: guard}
}

func (m *Module) Name() string    { return "parties" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.config = config
	m.logger = logger

	if err := m.store.Migrate(context.Background(), m.Name(), Migrations); err != nil {
		return err
	}
	m.parties = services.NewSQLitePartyRepository(m.store.DB())

	m.logger.Info("parties module initialized")
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("parties module started")
	return nil
}

func (m *Module) Stop() error {
	m.logger.Info("parties module stopped")
	return nil
}

func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "GET", Path: "", Handler: m.protect(m.handleListParties)},
		{Method: "GET", Path: "/{id}", Handler: m.protect(m.handleGetParty)},
		{Method: "POST", Path: "", Handler: m.protect(m.handleCreateParty)},
		{Method: "PUT", Path: "/{id}", Handler: m.protect(m.handleUpdateParty)},
		{Method: "DELETE", Path: "/{id}", Handler: m.protect(m.handleDeleteParty)},
	}
}

func (m *Module) protect(h http.HandlerFunc) http.HandlerFunc {
	if m.guard == nil {
		return h
	}
	return m.guard(h)
}
