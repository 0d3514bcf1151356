package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/tienda-api/internal/domain"
)

const storeProductColumns = `id::text, title, price, description, category, image, rating_rate, rating_count,
	stock, tags, brand, is_active, created_at, updated_at`

const createStoreProductsTable = `
	CREATE TABLE IF NOT EXISTS store_products (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title        TEXT NOT NULL,
		price        DOUBLE PRECISION NOT NULL CHECK (price > 0),
		description  TEXT NOT NULL DEFAULT '',
		category     TEXT NOT NULL,
		image        TEXT NOT NULL DEFAULT '',
		rating_rate  DOUBLE PRECISION NOT NULL DEFAULT 0,
		rating_count INTEGER NOT NULL DEFAULT 0,
		stock        INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		tags         TEXT[] NOT NULL DEFAULT '{}',
		brand        TEXT NOT NULL DEFAULT '',
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

const selectStoreProductForUpdate = `SELECT ` + storeProductColumns + ` FROM store_products WHERE id = $1 FOR UPDATE`

const updateStoreProduct = `
	UPDATE store_products
	SET title = $2, price = $3, description = $4, category = $5, image = $6, rating_rate = $7,
		rating_count = $8, stock = $9, tags = $10, brand = $11, is_active = $12, updated_at = now()
	WHERE id = $1
	RETURNING ` + storeProductColumns

const createStoreProductsCategoryIndex = `CREATE INDEX IF NOT EXISTS idx_store_products_category ON store_products (category)`

// postgresSortColumns maps document field names to columns
var postgresSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"price":       "price",
	"title":       "title",
	"stock":       "stock",
	"rating.rate": "rating_rate",
}

// postgresDB is the part of *pgxpool.Pool the store uses
type postgresDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresProductStore implements ProductStore on the store_products table.
// Ids and timestamps come from column defaults.
type PostgresProductStore struct {
	pool postgresDB
}

// NewPostgresProductStore creates a new PostgresProductStore
func NewPostgresProductStore(pool *pgxpool.Pool) *PostgresProductStore {
	return &PostgresProductStore{pool: pool}
}

// EnsureSchema creates the table when it does not exist
func (s *PostgresProductStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createStoreProductsTable, createStoreProductsCategoryIndex} {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create store_products schema: %w", err)
		}
	}
	return nil
}

// Create inserts a product
func (s *PostgresProductStore) Create(ctx context.Context, attrs domain.ProductAttributes) (*domain.StoredProduct, error) {
	valid, err := domain.NewStoredProductAttributes(attrs)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO store_products (title, price, description, category, image, rating_rate, rating_count, stock, tags, brand)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + storeProductColumns
	row := s.pool.QueryRow(ctx, query,
		valid.Title,
		valid.Price,
		valid.Description,
		valid.Category,
		valid.Image,
		valid.Rating.Rate,
		valid.Rating.Count,
		valid.Stock,
		valid.Tags,
		valid.Brand,
	)
	p, err := scanStoredProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

// Get retrieves a product by id
func (s *PostgresProductStore) Get(ctx context.Context, id string) (*domain.StoredProduct, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrProductNotFound
	}

	query := `SELECT ` + storeProductColumns + ` FROM store_products WHERE id = $1`
	p, err := scanStoredProduct(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// Update locks the row, applies the patch and writes the whole row in one
// transaction, so concurrent patches to the same product apply in turn
func (s *PostgresProductStore) Update(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.StoredProduct, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrProductNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanStoredProduct(tx.QueryRow(ctx, selectStoreProductForUpdate, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	next, err := current.ApplyPatch(patch)
	if err != nil {
		return nil, err
	}

	p, err := scanStoredProduct(tx.QueryRow(ctx, updateStoreProduct,
		id,
		next.Title,
		next.Price,
		next.Description,
		next.Category,
		next.Image,
		next.Rating.Rate,
		next.Rating.Count,
		next.Stock,
		next.Tags,
		next.Brand,
		next.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return p, nil
}

// Delete removes a product
func (s *PostgresProductStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrProductNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM store_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// List runs an equality-filtered, single-column sorted query
func (s *PostgresProductStore) List(ctx context.Context, q *StoreQuery) ([]domain.StoredProduct, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	query, args := buildStoreListQuery(q)
	return s.query(ctx, query, args...)
}

// PrefixSearch uses starts_with, so only prefixes match
func (s *PostgresProductStore) PrefixSearch(ctx context.Context, field, prefix string) ([]domain.StoredProduct, error) {
	if err := validatePrefixField(field); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM store_products WHERE starts_with(%s, $1) ORDER BY %s`,
		storeProductColumns, field, field)
	return s.query(ctx, query, prefix)
}

// Categories lists distinct categories
func (s *PostgresProductStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT category FROM store_products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *PostgresProductStore) query(ctx context.Context, query string, args ...any) ([]domain.StoredProduct, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	out := []domain.StoredProduct{}
	for rows.Next() {
		p, err := scanStoredProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return out, nil
}

func buildStoreListQuery(q *StoreQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q != nil {
		if q.Category != "" {
			add("category = $%d", q.Category)
		}
		if q.Brand != "" {
			add("brand = $%d", q.Brand)
		}
		if q.IsActive != nil {
			add("is_active = $%d", *q.IsActive)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT " + storeProductColumns + " FROM store_products")
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	field, desc := q.sort()
	b.WriteString(" ORDER BY " + postgresSortColumns[field])
	if desc {
		b.WriteString(" DESC")
	} else {
		b.WriteString(" ASC")
	}

	if q != nil && q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

func scanStoredProduct(row pgx.Row) (*domain.StoredProduct, error) {
	p := &domain.StoredProduct{}
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Price,
		&p.Description,
		&p.Category,
		&p.Image,
		&p.Rating.Rate,
		&p.Rating.Count,
		&p.Stock,
		&p.Tags,
		&p.Brand,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}
