// Package store provides typed access to the storefront's PostgreSQL tables.
// All queries use bound parameters; no value is ever interpolated into SQL.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so the same Queries type
// works inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries runs the storefront's SQL against the given connection source.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to a pool or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// --- Models ---

type Order struct {
	ID              uuid.UUID
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   pgtype.Text
	DeliveryAddress pgtype.Text
	PaymentMethod   pgtype.Text
	DeliveryMethod  pgtype.Text
	Comment         pgtype.Text
	TotalAmount     pgtype.Numeric
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ProductID    pgtype.UUID
	ProductName  string
	ProductPrice pgtype.Numeric
	Size         pgtype.Text
	Quantity     int32
	Subtotal     pgtype.Numeric
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description pgtype.Text
	Price       pgtype.Numeric
	OldPrice    pgtype.Numeric
	CategoryID  pgtype.UUID
	ImageUrl    pgtype.Text
	Badge       pgtype.Text
	Sizes       string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Category struct {
	ID   uuid.UUID
	Name string
}
