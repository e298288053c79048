package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listProductsSQL = `
SELECT p.id, p.name, p.slug, p.description, p.price, p.old_price,
    p.image_url, p.badge, p.sizes, p.is_active, p.created_at,
    c.name AS category
FROM products p
LEFT JOIN categories c ON p.category_id = c.id
WHERE (p.is_active = TRUE OR $4::bool)
  AND ($1::text IS NULL OR c.name = $1)
  AND ($2::text IS NULL OR p.sizes LIKE '%' || $2 || '%')
  AND ($3::text IS NULL OR p.name ILIKE '%' || $3 || '%' OR p.description ILIKE '%' || $3 || '%')
ORDER BY p.created_at DESC`

type ListProductsParams struct {
	Category pgtype.Text
	Size     pgtype.Text
	Search   pgtype.Text
	// IncludeInactive also returns deactivated products (admin page).
	IncludeInactive bool
}

// ListProductsRow is a product joined with its category name.
type ListProductsRow struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description pgtype.Text
	Price       pgtype.Numeric
	OldPrice    pgtype.Numeric
	ImageUrl    pgtype.Text
	Badge       pgtype.Text
	Sizes       string
	IsActive    bool
	CreatedAt   time.Time
	Category    pgtype.Text
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]ListProductsRow, error) {
	rows, err := q.db.Query(ctx, listProductsSQL, arg.Category, arg.Size, arg.Search, arg.IncludeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ListProductsRow
	for rows.Next() {
		var p ListProductsRow
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.OldPrice,
			&p.ImageUrl, &p.Badge, &p.Sizes, &p.IsActive, &p.CreatedAt,
			&p.Category,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const createProductSQL = `
INSERT INTO products (
    name, slug, description, price, old_price, category_id, image_url, badge, sizes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, name, slug, description, price, old_price, category_id,
    image_url, badge, sizes, is_active, created_at, updated_at`

type CreateProductParams struct {
	Name        string
	Slug        string
	Description pgtype.Text
	Price       pgtype.Numeric
	OldPrice    pgtype.Numeric
	CategoryID  pgtype.UUID
	ImageUrl    pgtype.Text
	Badge       pgtype.Text
	Sizes       string
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProductSQL,
		arg.Name, arg.Slug, arg.Description, arg.Price, arg.OldPrice,
		arg.CategoryID, arg.ImageUrl, arg.Badge, arg.Sizes,
	)
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.OldPrice,
		&p.CategoryID, &p.ImageUrl, &p.Badge, &p.Sizes, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

const setProductActiveSQL = `
UPDATE products
SET is_active = $2, updated_at = now()
WHERE id = $1`

type SetProductActiveParams struct {
	ID       uuid.UUID
	IsActive bool
}

// SetProductActive toggles the active flag without checking existence,
// mirroring UpdateOrderStatus.
func (q *Queries) SetProductActive(ctx context.Context, arg SetProductActiveParams) error {
	_, err := q.db.Exec(ctx, setProductActiveSQL, arg.ID, arg.IsActive)
	return err
}

const getCategoryIDByNameSQL = `
SELECT id FROM categories WHERE name = $1`

func (q *Queries) GetCategoryIDByName(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, getCategoryIDByNameSQL, name).Scan(&id)
	return id, err
}

const createCategorySQL = `
INSERT INTO categories (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name`

// CreateCategory inserts a category or returns the existing row with the
// same name. Used by the seed command; the handlers never create categories.
func (q *Queries) CreateCategory(ctx context.Context, name string) (Category, error) {
	var c Category
	err := q.db.QueryRow(ctx, createCategorySQL, name).Scan(&c.ID, &c.Name)
	return c, err
}
