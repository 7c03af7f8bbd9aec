package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dhatukala/dhatukala/pkg/models"
)

// PartyFilter controls which parties are returned by List.
type PartyFilter struct {
	Type   string // Filter by PartyType value.
	Search string // Search name, contact, or city.
}

// PartyRepository provides CRUD access to customers and distributors.
type PartyRepository interface {
	// Get returns a single party by ID.
	Get(ctx context.Context, id string) (*models.Party, error)

	// List returns a filtered, paginated list of parties.
	List(ctx context.Context, filter PartyFilter, opts ListOptions) (*ListResult[models.Party], error)

	// Create inserts a new party. If party.ID is empty, a UUID is generated.
	Create(ctx context.Context, party *models.Party) error

	// Update modifies an existing party's mutable fields.
	Update(ctx context.Context, party *models.Party) error

	// Delete removes a party by ID.
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guard.
var _ PartyRepository = (*SQLitePartyRepository)(nil)

// SQLitePartyRepository implements PartyRepository using SQLite.
// It queries the parties_records table directly.
type SQLitePartyRepository struct {
	db *sql.DB
}

// NewSQLitePartyRepository creates a PartyRepository.
// The parties_records table must already exist (created by the parties
// module's migrations).
func NewSQLitePartyRepository(db *sql.DB) *SQLitePartyRepository {
	return &SQLitePartyRepository{db: db}
}

// partyColumns is the shared column list for party queries.
const partyColumns = `id, name, party_type, contact, email, city, notes,
	created_at, updated_at`

func (r *SQLitePartyRepository) Get(ctx context.Context, id string) (*models.Party, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+` FROM parties_records WHERE id = ?`, id)
	p, err := scanParty(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get party %q: %w", id, err)
	}
	return p, nil
}

func (r *SQLitePartyRepository) List(ctx context.Context, filter PartyFilter, opts ListOptions) (*ListResult[models.Party], error) {
	opts = normalizeListOptions(opts)

	sortCol := "created_at"
	allowedSorts := map[string]string{
		"name":       "name",
		"city":       "city",
		"created_at": "created_at",
	}
	if opts.SortBy != "" {
		if col, ok := allowedSorts[opts.SortBy]; ok {
			sortCol = col
		}
	}

	where := "1=1"
	var args []any

	if filter.Type != "" {
		where += " AND party_type = ?"
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR contact LIKE ? OR city LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	//nolint:gosec // where uses parameterized placeholders only
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM parties_records WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count parties: %w", err)
	}

	queryArgs := make([]any, 0, len(args)+2)
	queryArgs = append(queryArgs, args...)
	queryArgs = append(queryArgs, opts.Limit, opts.Offset)

	orderDir := "DESC"
	if opts.SortOrder == "asc" {
		orderDir = "ASC"
	}

	//nolint:gosec // where and sortCol are validated above, not user input
	query := fmt.Sprintf(
		"SELECT %s FROM parties_records WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?",
		partyColumns, where, sortCol, orderDir,
	)

	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	defer rows.Close()

	var parties []models.Party
	for rows.Next() {
		p, err := scanPartyRow(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parties: %w", err)
	}
	if parties == nil {
		parties = []models.Party{}
	}

	return &ListResult[models.Party]{Items: parties, Total: total}, nil
}

func (r *SQLitePartyRepository) Create(ctx context.Context, party *models.Party) error {
	if party.ID == "" {
		party.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if party.CreatedAt.IsZero() {
		party.CreatedAt = now
	}
	if party.UpdatedAt.IsZero() {
		party.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO parties_records (
			id, name, party_type, contact, email, city, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		party.ID, party.Name, string(party.Type), party.Contact,
		party.Email, party.City, party.Notes,
		party.CreatedAt, party.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create party: %w", err)
	}
	return nil
}

func (r *SQLitePartyRepository) Update(ctx context.Context, party *models.Party) error {
	party.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE parties_records SET
			name = ?, party_type = ?, contact = ?, email = ?,
			city = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		party.Name, string(party.Type), party.Contact, party.Email,
		party.City, party.Notes, party.UpdatedAt,
		party.ID,
	)
	if err != nil {
		return fmt.Errorf("update party: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLitePartyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM parties_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete party: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanParty scans a single *sql.Row into a Party.
func scanParty(row *sql.Row) (*models.Party, error) {
	var p models.Party
	var partyType string
	err := row.Scan(
		&p.ID, &p.Name, &partyType, &p.Contact, &p.Email, &p.City, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Type = models.PartyType(partyType)
	return &p, nil
}

// scanPartyRow scans a *sql.Rows row into a Party.
func scanPartyRow(rows *sql.Rows) (*models.Party, error) {
	var p models.Party
	var partyType string
	err := rows.Scan(
		&p.ID, &p.Name, &partyType, &p.Contact, &p.Email, &p.City, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Type = models.PartyType(partyType)
	return &p, nil
}
