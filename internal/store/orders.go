package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrderSQL = `
INSERT INTO orders (
    customer_name, customer_phone, customer_email,
    delivery_address, payment_method, delivery_method,
    comment, total_amount, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, customer_name, customer_phone, customer_email,
    delivery_address, payment_method, delivery_method,
    comment, total_amount, status, created_at, updated_at`

type CreateOrderParams struct {
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   pgtype.Text
	DeliveryAddress pgtype.Text
	PaymentMethod   pgtype.Text
	DeliveryMethod  pgtype.Text
	Comment         pgtype.Text
	TotalAmount     pgtype.Numeric
	Status          string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrderSQL,
		arg.CustomerName, arg.CustomerPhone, arg.CustomerEmail,
		arg.DeliveryAddress, arg.PaymentMethod, arg.DeliveryMethod,
		arg.Comment, arg.TotalAmount, arg.Status,
	)
	var o Order
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&o.DeliveryAddress, &o.PaymentMethod, &o.DeliveryMethod,
		&o.Comment, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

const createOrderItemSQL = `
INSERT INTO order_items (
    order_id, product_id, product_name, product_price, size, quantity, subtotal
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, product_id, product_name, product_price, size, quantity, subtotal`

type CreateOrderItemParams struct {
	OrderID      uuid.UUID
	ProductID    pgtype.UUID
	ProductName  string
	ProductPrice pgtype.Numeric
	Size         pgtype.Text
	Quantity     int32
	Subtotal     pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItemSQL,
		arg.OrderID, arg.ProductID, arg.ProductName,
		arg.ProductPrice, arg.Size, arg.Quantity, arg.Subtotal,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID, &i.OrderID, &i.ProductID, &i.ProductName,
		&i.ProductPrice, &i.Size, &i.Quantity, &i.Subtotal,
	)
	return i, err
}

const getOrderSQL = `
SELECT id, customer_name, customer_phone, customer_email,
    delivery_address, payment_method, delivery_method,
    comment, total_amount, status, created_at, updated_at
FROM orders
WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderSQL, id)
	var o Order
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&o.DeliveryAddress, &o.PaymentMethod, &o.DeliveryMethod,
		&o.Comment, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

const listOrdersSQL = `
SELECT id, customer_name, customer_phone, customer_email,
    delivery_address, payment_method, delivery_method,
    comment, total_amount, status, created_at, updated_at
FROM orders
WHERE ($1::text IS NULL OR status = $1)
ORDER BY created_at DESC
LIMIT $2`

type ListOrdersParams struct {
	Status pgtype.Text
	Limit  int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersSQL, arg.Status, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
			&o.DeliveryAddress, &o.PaymentMethod, &o.DeliveryMethod,
			&o.Comment, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOrderItemsByOrderSQL = `
SELECT id, order_id, product_id, product_name, product_price, size, quantity, subtotal
FROM order_items
WHERE order_id = $1
ORDER BY id`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrderSQL, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID, &i.OrderID, &i.ProductID, &i.ProductName,
			&i.ProductPrice, &i.Size, &i.Quantity, &i.Subtotal,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateOrderStatusSQL = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1`

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

// UpdateOrderStatus overwrites the status unconditionally. It does not report
// whether a row matched; a status update for an unknown id is a no-op.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) error {
	_, err := q.db.Exec(ctx, updateOrderStatusSQL, arg.ID, arg.Status)
	return err
}
