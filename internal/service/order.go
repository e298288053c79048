package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/grandessa-shop/api/internal/notify"
	"github.com/grandessa-shop/api/internal/store"
)

const notifyTimeout = 15 * time.Second

// Errors returned by the order service.
var (
	ErrMissingCustomerName  = errors.New("customer_name is required")
	ErrMissingCustomerPhone = errors.New("customer_phone is required")
	ErrEmptyItems           = errors.New("items are required")
	ErrMissingProductName   = errors.New("product_name is required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidProductID     = errors.New("invalid product_id")
	ErrInvalidProductPrice  = errors.New("invalid product_price")
	ErrInvalidSubtotal      = errors.New("invalid subtotal")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *store.Queries.
type OrderStore interface {
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	CreateOrderItem(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db store.DBTX) OrderStore

// Notifier delivers a single email. Satisfied by *notify.Client.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// CreateOrderRequest is the input for creating an order. Money fields carry
// the raw JSON number text; the service parses them into decimals.
type CreateOrderRequest struct {
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	DeliveryAddress string
	PaymentMethod   string
	DeliveryMethod  string
	Comment         string
	Items           []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single item in the order. Prices are the
// buyer's cart snapshot; they are stored as supplied, not recomputed against
// the catalog.
type CreateOrderItemRequest struct {
	ProductID    string
	ProductName  string
	ProductPrice string
	Size         string
	Quantity     int32
	Subtotal     string
}

// CreateOrderResult is the created order with its items.
type CreateOrderResult struct {
	Order store.Order
	Items []store.OrderItem
}

// OrderService handles order creation.
type OrderService struct {
	pool       TxBeginner
	newStore   NewOrderStore
	notifier   Notifier
	adminEmail string
}

// NewOrderService creates a new OrderService. notifier may be nil when no
// mail function is configured; adminEmail may be empty.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, notifier Notifier, adminEmail string) *OrderService {
	return &OrderService{
		pool:       pool,
		newStore:   newStore,
		notifier:   notifier,
		adminEmail: adminEmail,
	}
}

// processedItem holds validated item params before insertion.
type processedItem struct {
	params   store.CreateOrderItemParams
	subtotal decimal.Decimal
}

// CreateOrder validates the request, persists the order and its items in one
// transaction, then dispatches best-effort email notifications. The total is
// the sum of the supplied item subtotals. Notification failures never affect
// the returned result.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if req.CustomerName == "" {
		return nil, ErrMissingCustomerName
	}
	if req.CustomerPhone == "" {
		return nil, ErrMissingCustomerPhone
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	// --- Process items: validate + sum subtotals ---
	total := decimal.Zero
	items := make([]processedItem, 0, len(req.Items))
	for i, item := range req.Items {
		if item.ProductName == "" {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrMissingProductName)
		}

		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}

		productID := pgtype.UUID{}
		if item.ProductID != "" {
			pid, err := uuid.Parse(item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidProductID)
			}
			productID = pgtype.UUID{Bytes: pid, Valid: true}
		}

		price, err := parseMoney(item.ProductPrice)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidProductPrice)
		}
		subtotal, err := parseMoney(item.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidSubtotal)
		}
		total = total.Add(subtotal)

		size := pgtype.Text{}
		if item.Size != "" {
			size = pgtype.Text{String: item.Size, Valid: true}
		}

		items = append(items, processedItem{
			params: store.CreateOrderItemParams{
				ProductID:    productID,
				ProductName:  item.ProductName,
				ProductPrice: decimalToNumeric(price),
				Size:         size,
				Quantity:     quantity,
				Subtotal:     decimalToNumeric(subtotal),
			},
			subtotal: subtotal,
		})
	}

	result, err := s.createOrderTx(ctx, req, items, total)
	if err != nil {
		return nil, err
	}

	// Notifications run after the commit so a slow or broken mail function
	// can never roll back a stored order.
	s.dispatchNotifications(result)

	return result, nil
}

// createOrderTx persists the order and all items in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, items []processedItem, total decimal.Decimal) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	st := s.newStore(tx)

	order, err := st.CreateOrder(ctx, store.CreateOrderParams{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   optionalText(req.CustomerEmail),
		DeliveryAddress: optionalText(req.DeliveryAddress),
		PaymentMethod:   optionalText(req.PaymentMethod),
		DeliveryMethod:  optionalText(req.DeliveryMethod),
		Comment:         optionalText(req.Comment),
		TotalAmount:     decimalToNumeric(total),
		Status:          "new",
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	inserted := make([]store.OrderItem, 0, len(items))
	for i, pi := range items {
		pi.params.OrderID = order.ID
		item, err := st.CreateOrderItem(ctx, pi.params)
		if err != nil {
			return nil, fmt.Errorf("create order item %d: %w", i, err)
		}
		inserted = append(inserted, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: inserted}, nil
}

// dispatchNotifications sends the admin and customer emails in the
// background. Failures are logged and discarded.
func (s *OrderService) dispatchNotifications(result *CreateOrderResult) {
	if s.notifier == nil {
		return
	}

	data := emailData(result)
	adminEmail := s.adminEmail

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if adminEmail != "" {
			subject, body := notify.AdminOrderEmail(data)
			if err := s.notifier.Send(ctx, adminEmail, subject, body); err != nil {
				log.Printf("WARN: admin notification for order %s: %v", data.OrderID, err)
			}
		}
		if data.CustomerEmail != "" {
			subject, body := notify.CustomerOrderEmail(data)
			if err := s.notifier.Send(ctx, data.CustomerEmail, subject, body); err != nil {
				log.Printf("WARN: customer notification for order %s: %v", data.OrderID, err)
			}
		}
	}()
}

func emailData(result *CreateOrderResult) notify.OrderEmailData {
	o := result.Order
	data := notify.OrderEmailData{
		OrderID:         o.ID.String(),
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerEmail:   o.CustomerEmail.String,
		DeliveryAddress: o.DeliveryAddress.String,
		PaymentMethod:   o.PaymentMethod.String,
		DeliveryMethod:  o.DeliveryMethod.String,
		Comment:         o.Comment.String,
		Total:           numericToDecimal(o.TotalAmount),
	}
	for _, item := range result.Items {
		data.Items = append(data.Items, notify.OrderItemSummary{
			ProductName: item.ProductName,
			Size:        item.Size.String,
			Quantity:    item.Quantity,
			Subtotal:    numericToDecimal(item.Subtotal),
		})
	}
	return data
}

// --- Helpers ---

// parseMoney parses a JSON number string; empty means zero (the storefront
// omits prices it does not know).
func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
