package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dhatukala/dhatukala/pkg/models"
)

// ProductFilter controls which products are returned by List. Zero values
// mean "no restriction" for that field.
type ProductFilter struct {
	Metal    string   // Filter by MetalType value.
	Category string   // Filter by CategoryType value.
	PriceMin *float64 // Inclusive lower price bound.
	PriceMax *float64 // Inclusive upper price bound.
	Search   string   // Search name or description.
	InStock  bool     // Only products with stock > 0.
}

// ProductRepository provides CRUD access to catalogue products.
type ProductRepository interface {
	// Get returns a single product by ID.
	Get(ctx context.Context, id string) (*models.Product, error)

	// List returns a filtered, paginated list of products.
	List(ctx context.Context, filter ProductFilter, opts ListOptions) (*ListResult[models.Product], error)

	// All returns every product, ordered by creation time descending.
	// The filtering engine works over the full set.
	All(ctx context.Context) ([]models.Product, error)

	// Create inserts a new product. If product.ID is empty, a UUID is generated.
	Create(ctx context.Context, product *models.Product) error

	// Update modifies an existing product's mutable fields.
	Update(ctx context.Context, product *models.Product) error

	// Delete removes a product by ID.
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guard.
var _ ProductRepository = (*SQLiteProductRepository)(nil)

// SQLiteProductRepository implements ProductRepository using SQLite.
// It queries the catalog_products table directly.
type SQLiteProductRepository struct {
	db *sql.DB
}

// NewSQLiteProductRepository creates a ProductRepository.
// The catalog_products table must already exist (created by the catalog
// module's migrations).
func NewSQLiteProductRepository(db *sql.DB) *SQLiteProductRepository {
	return &SQLiteProductRepository{db: db}
}

// productColumns is the shared column list for product queries.
const productColumns = `id, name, metal, category, price, weight_kg,
	height_inch, finish_type, stock, images, description,
	created_at, updated_at`

func (r *SQLiteProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM catalog_products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %q: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteProductRepository) List(ctx context.Context, filter ProductFilter, opts ListOptions) (*ListResult[models.Product], error) {
	opts = normalizeListOptions(opts)

	// Validate sortBy against allowed columns.
	sortCol := "created_at"
	allowedSorts := map[string]string{
		"name":        "name",
		"price":       "price",
		"weight_kg":   "weight_kg",
		"height_inch": "height_inch",
		"created_at":  "created_at",
	}
	if opts.SortBy != "" {
		if col, ok := allowedSorts[opts.SortBy]; ok {
			sortCol = col
		}
	}

	// Build WHERE clause with parameterized placeholders.
	where := "1=1"
	var args []any

	if filter.Metal != "" {
		where += " AND metal = ?"
		args = append(args, filter.Metal)
	}
	if filter.Category != "" {
		where += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.PriceMin != nil {
		where += " AND price >= ?"
		args = append(args, *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		where += " AND price <= ?"
		args = append(args, *filter.PriceMax)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR description LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.InStock {
		where += " AND stock > 0"
	}

	// Count total matching rows.
	var total int
	//nolint:gosec // where uses parameterized placeholders only
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM catalog_products WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	// Query with pagination and sorting.
	queryArgs := make([]any, 0, len(args)+2)
	queryArgs = append(queryArgs, args...)
	queryArgs = append(queryArgs, opts.Limit, opts.Offset)

	orderDir := "DESC"
	if opts.SortOrder == "asc" {
		orderDir = "ASC"
	}

	//nolint:gosec // where and sortCol are validated above, not user input
	query := fmt.Sprintf(
		"SELECT %s FROM catalog_products WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?",
		productColumns, where, sortCol, orderDir,
	)

	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	return &ListResult[models.Product]{Items: products, Total: total}, nil
}

func (r *SQLiteProductRepository) All(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM catalog_products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (r *SQLiteProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}

	imagesJSON, _ := json.Marshal(product.Images)
	if product.Images == nil {
		imagesJSON = []byte("[]")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_products (
			id, name, metal, category, price, weight_kg,
			height_inch, finish_type, stock, images, description,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, string(product.Metal), string(product.Category),
		product.Price, product.WeightKg, product.HeightInch, string(product.FinishType),
		product.Stock, string(imagesJSON), product.Description,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *SQLiteProductRepository) Update(ctx context.Context, product *models.Product) error {
	imagesJSON, _ := json.Marshal(product.Images)
	if product.Images == nil {
		imagesJSON = []byte("[]")
	}
	product.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE catalog_products SET
			name = ?, metal = ?, category = ?, price = ?, weight_kg = ?,
			height_inch = ?, finish_type = ?, stock = ?, images = ?,
			description = ?, updated_at = ?
		WHERE id = ?`,
		product.Name, string(product.Metal), string(product.Category),
		product.Price, product.WeightKg, product.HeightInch, string(product.FinishType),
		product.Stock, string(imagesJSON), product.Description,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM catalog_products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanProduct scans a single *sql.Row into a Product.
func scanProduct(row *sql.Row) (*models.Product, error) {
	var p models.Product
	var metal, category, finish string
	var imagesJSON string
	err := row.Scan(
		&p.ID, &p.Name, &metal, &category, &p.Price, &p.WeightKg,
		&p.HeightInch, &finish, &p.Stock, &imagesJSON, &p.Description,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Metal = models.MetalType(metal)
	p.Category = models.CategoryType(category)
	p.FinishType = models.FinishType(finish)
	_ = json.Unmarshal([]byte(imagesJSON), &p.Images)
	return &p, nil
}

// scanProductRow scans a *sql.Rows row into a Product.
func scanProductRow(rows *sql.Rows) (*models.Product, error) {
	var p models.Product
	var metal, category, finish string
	var imagesJSON string
	err := rows.Scan(
		&p.ID, &p.Name, &metal, &category, &p.Price, &p.WeightKg,
		&p.HeightInch, &finish, &p.Stock, &imagesJSON, &p.Description,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Metal = models.MetalType(metal)
	p.Category = models.CategoryType(category)
	p.FinishType = models.FinishType(finish)
	_ = json.Unmarshal([]byte(imagesJSON), &p.Images)
	return &p, nil
}
