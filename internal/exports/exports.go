// Package exports renders filtered product selections into shareable PDF
// catalogues, optionally password-protected, and records each export.
package exports

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"path/filepath"

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

// Filterer evaluates a filter state against the catalogue. The catalog
// module's engine satisfies this.
type Filterer interface {
	Filter(ctx context.Context, s filter.State) ([]models.Product, error)
}

// DefaultOutputDir is where rendered catalogues land when the module has
// no output_dir configured.
const DefaultOutputDir = "catalogues"

// Migrations defines the exports module's schema.
var Migrations = []store.Migration{
	{
		Version:     1,
		Description: "create exports_catalogues table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS exports_catalogues (
				id            TEXT PRIMARY KEY,
				name          TEXT NOT NULL,
				filter_query  TEXT NOT NULL DEFAULT '',
				product_count INTEGER NOT NULL DEFAULT 0,
				file_path     TEXT NOT NULL DEFAULT '',
				created_by    TEXT NOT NULL DEFAULT '',
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`)
			return err
		},
	},
}

// Module implements the exports feature module.
type Module struct {
	logger     *zap.Logger
	config     *viper.Viper
	store      *store.SQLiteStore
	catalogues services.CatalogueRepository
	filterer   Filterer
	outputDir  string
	guard      Guard
}

// New creates an exports module. The filterer decides which products each
// catalogue contains.
func New(st *store.SQLiteStore, filterer Filterer, guard Guard) *Module {
	return &Module{store: st, filterer: filterer, guard: guard}
}

func (m *Module) Name() string    { return "exports" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.config = config
	m.logger = logger

	if err := m.store.Migrate(context.Background(), m.Name(), Migrations); err != nil {
		return err
	}
	m.catalogues = services.NewSQLiteCatalogueRepository(m.store.DB())

	m.outputDir = m.config.GetString("output_dir")
	if m.outputDir == "" {
		m.outputDir = DefaultOutputDir
	}
	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return err
	}

	m.logger.Info("exports module initialized", zap.String("output_dir", m.outputDir))
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("exports module started")
	return nil
}

func (m *Module) Stop() error {
	m.logger.Info("exports module stopped")
	return nil
}

func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "GET", Path: "", Handler: m.protect(m.handleListCatalogues)},
		{Method: "POST", Path: "", Handler: m.protect(m.handleCreateCatalogue)},
		{Method: "GET", Path: "/{id}", Handler: m.protect(m.handleGetCatalogue)},
		{Method: "GET", Path: "/{id}/download", Handler: m.protect(m.handleDownloadCatalogue)},
		{Method: "DELETE", Path: "/{id}", Handler: m.protect(m.handleDeleteCatalogue)},
	}
}

func (m *Module) protect(h http.HandlerFunc) http.HandlerFunc {
	if m.guard == nil {
		return h
	}
	return m.guard(h)
}

// filePath returns where the rendered PDF for a catalogue ID lives.
func (m *Module) filePath(id string) string {
	return filepath.Join(m.outputDir, id+".pdf")
}
