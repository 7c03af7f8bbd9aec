package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dhatukala/dhatukala/pkg/models"
)

// CatalogueRepository records generated catalogue exports. Entries are
// immutable once written; only the whole record can be deleted.
type CatalogueRepository interface {
	// Get returns a single catalogue record by ID.
	Get(ctx context.Context, id string) (*models.Catalogue, error)

	// List returns catalogue records, newest first.
	List(ctx context.Context, opts ListOptions) (*ListResult[models.Catalogue], error)

	// Create inserts a new catalogue record. If c.ID is empty, a UUID is generated.
	Create(ctx context.Context, c *models.Catalogue) error

	// Delete removes a catalogue record by ID.
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guard.
var _ CatalogueRepository = (*SQLiteCatalogueRepository)(nil)

// SQLiteCatalogueRepository implements CatalogueRepository using SQLite.
// It queries the exports_catalogues table directly.
type SQLiteCatalogueRepository struct {
	db *sql.DB
}

// NewSQLiteCatalogueRepository creates a CatalogueRepository.
// The exports_catalogues table must already exist (created by the exports
// module's migrations).
func NewSQLiteCatalogueRepository(db *sql.DB) *SQLiteCatalogueRepository {
	return &SQLiteCatalogueRepository{db: db}
}

// catalogueColumns is the shared column list for catalogue queries.
const catalogueColumns = `id, name, filter_query, product_count, file_path,
	created_by, created_at`

func (r *SQLiteCatalogueRepository) Get(ctx context.Context, id string) (*models.Catalogue, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+catalogueColumns+` FROM exports_catalogues WHERE id = ?`, id)

	var c models.Catalogue
	err := row.Scan(&c.ID, &c.Name, &c.FilterQuery, &c.ProductCount,
		&c.FilePath, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get catalogue %q: %w", id, err)
	}
	return &c, nil
}

func (r *SQLiteCatalogueRepository) List(ctx context.Context, opts ListOptions) (*ListResult[models.Catalogue], error) {
	opts = normalizeListOptions(opts)

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exports_catalogues`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count catalogues: %w", err)
	}

	orderDir := "DESC"
	if opts.SortOrder == "asc" {
		orderDir = "ASC"
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+catalogueColumns+` FROM exports_catalogues
		 ORDER BY created_at `+orderDir+` LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list catalogues: %w", err)
	}
	defer rows.Close()

	var catalogues []models.Catalogue
	for rows.Next() {
		var c models.Catalogue
		if err := rows.Scan(&c.ID, &c.Name, &c.FilterQuery, &c.ProductCount,
			&c.FilePath, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		catalogues = append(catalogues, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalogues: %w", err)
	}
	if catalogues == nil {
		catalogues = []models.Catalogue{}
	}

	return &ListResult[models.Catalogue]{Items: catalogues, Total: total}, nil
}

func (r *SQLiteCatalogueRepository) Create(ctx context.Context, c *models.Catalogue) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exports_catalogues (
			id, name, filter_query, product_count, file_path,
			created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.FilterQuery, c.ProductCount, c.FilePath,
		c.CreatedBy, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create catalogue: %w", err)
	}
	return nil
}

func (r *SQLiteCatalogueRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM exports_catalogues WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete catalogue: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
