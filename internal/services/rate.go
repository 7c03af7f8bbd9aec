package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dhatukala/dhatukala/pkg/models"
)

// RateRepository provides access to metal rate entries. Rates are
// append-mostly: new entries supersede old ones by effective date.
type RateRepository interface {
	// Get returns a single rate entry by ID.
	Get(ctx context.Context, id string) (*models.MetalRate, error)

	// Latest returns the most recent rate for a metal, by effective date.
	Latest(ctx context.Context, metal models.MetalType) (*models.MetalRate, error)

	// LatestAll returns the most recent rate per metal, one entry each.
	LatestAll(ctx context.Context) ([]models.MetalRate, error)

	// List returns rate entries, newest effective date first. An empty
	// metal returns entries for all metals.
	List(ctx context.Context, metal string, opts ListOptions) (*ListResult[models.MetalRate], error)

	// Create inserts a new rate entry. If rate.ID is empty, a UUID is generated.
	Create(ctx context.Context, rate *models.MetalRate) error

	// Update modifies an existing rate entry.
	Update(ctx context.Context, rate *models.MetalRate) error

	// Delete removes a rate entry by ID.
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guard.
var _ RateRepository = (*SQLiteRateRepository)(nil)

// SQLiteRateRepository implements RateRepository using SQLite.
// It queries the rates_entries table directly.
type SQLiteRateRepository struct {
	db *sql.DB
}

// NewSQLiteRateRepository creates a RateRepository.
// The rates_entries table must already exist (created by the rates
// module's migrations).
func NewSQLiteRateRepository(db *sql.DB) *SQLiteRateRepository {
	return &SQLiteRateRepository{db: db}
}

// rateColumns is the shared column list for rate queries.
const rateColumns = `id, metal, rate_per_unit, unit, effective_from,
	created_at, updated_at`

func (r *SQLiteRateRepository) Get(ctx context.Context, id string) (*models.MetalRate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+rateColumns+` FROM rates_entries WHERE id = ?`, id)
	mr, err := scanRate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get rate %q: %w", id, err)
	}
	return mr, nil
}

func (r *SQLiteRateRepository) Latest(ctx context.Context, metal models.MetalType) (*models.MetalRate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+rateColumns+` FROM rates_entries
		 WHERE metal = ? ORDER BY effective_from DESC LIMIT 1`, string(metal))
	mr, err := scanRate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest rate for %q: %w", metal, err)
	}
	return mr, nil
}

func (r *SQLiteRateRepository) LatestAll(ctx context.Context) ([]models.MetalRate, error) {
	// Group-wise max via a correlated subquery; the table stays small
	// (a handful of entries per metal per month).
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+rateColumns+` FROM rates_entries r
		WHERE effective_from = (
			SELECT MAX(effective_from) FROM rates_entries WHERE metal = r.metal
		)
		ORDER BY metal`)
	if err != nil {
		return nil, fmt.Errorf("latest rates: %w", err)
	}
	defer rows.Close()

	var rates []models.MetalRate
	for rows.Next() {
		mr, err := scanRateRow(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, *mr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rates: %w", err)
	}
	if rates == nil {
		rates = []models.MetalRate{}
	}
	return rates, nil
}

func (r *SQLiteRateRepository) List(ctx context.Context, metal string, opts ListOptions) (*ListResult[models.MetalRate], error) {
	opts = normalizeListOptions(opts)

	where := "1=1"
	var args []any
	if metal != "" {
		where += " AND metal = ?"
		args = append(args, metal)
	}

	var total int
	//nolint:gosec // where uses parameterized placeholders only
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rates_entries WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count rates: %w", err)
	}

	queryArgs := make([]any, 0, len(args)+2)
	queryArgs = append(queryArgs, args...)
	queryArgs = append(queryArgs, opts.Limit, opts.Offset)

	orderDir := "DESC"
	if opts.SortOrder == "asc" {
		orderDir = "ASC"
	}

	//nolint:gosec // where is built from parameterized placeholders only
	query := fmt.Sprintf(
		"SELECT %s FROM rates_entries WHERE %s ORDER BY effective_from %s LIMIT ? OFFSET ?",
		rateColumns, where, orderDir,
	)

	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer rows.Close()

	var rates []models.MetalRate
	for rows.Next() {
		mr, err := scanRateRow(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, *mr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rates: %w", err)
	}
	if rates == nil {
		rates = []models.MetalRate{}
	}

	return &ListResult[models.MetalRate]{Items: rates, Total: total}, nil
}

func (r *SQLiteRateRepository) Create(ctx context.Context, rate *models.MetalRate) error {
	if rate.ID == "" {
		rate.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if rate.CreatedAt.IsZero() {
		rate.CreatedAt = now
	}
	if rate.UpdatedAt.IsZero() {
		rate.UpdatedAt = now
	}
	if rate.EffectiveFrom.IsZero() {
		rate.EffectiveFrom = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rates_entries (
			id, metal, rate_per_unit, unit, effective_from,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rate.ID, string(rate.Metal), rate.RatePerUnit, rate.Unit,
		rate.EffectiveFrom, rate.CreatedAt, rate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create rate: %w", err)
	}
	return nil
}

func (r *SQLiteRateRepository) Update(ctx context.Context, rate *models.MetalRate) error {
	rate.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE rates_entries SET
			metal = ?, rate_per_unit = ?, unit = ?, effective_from = ?,
			updated_at = ?
		WHERE id = ?`,
		string(rate.Metal), rate.RatePerUnit, rate.Unit, rate.EffectiveFrom,
		rate.UpdatedAt,
		rate.ID,
	)
	if err != nil {
		return fmt.Errorf("update rate: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM rates_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rate: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanRate scans a single *sql.Row into a MetalRate.
func scanRate(row *sql.Row) (*models.MetalRate, error) {
	var mr models.MetalRate
	var metal string
	err := row.Scan(
		&mr.ID, &metal, &mr.RatePerUnit, &mr.Unit, &mr.EffectiveFrom,
		&mr.CreatedAt, &mr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	mr.Metal = models.MetalType(metal)
	return &mr, nil
}

// scanRateRow scans a *sql.Rows row into a MetalRate.
func scanRateRow(rows *sql.Rows) (*models.MetalRate, error) {
	var mr models.MetalRate
	var metal string
	err := rows.Scan(
		&mr.ID, &metal, &mr.RatePerUnit, &mr.Unit, &mr.EffectiveFrom,
		&mr.CreatedAt, &mr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	mr.Metal = models.MetalType(metal)
	return &mr, nil
}
