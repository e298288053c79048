package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/grandessa-shop/api/internal/service"
	"github.com/grandessa-shop/api/internal/store"
	"github.com/grandessa-shop/api/internal/ws"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update
// handlers. Satisfied by *store.Queries.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	ListOrders(ctx context.Context, arg store.ListOrdersParams) ([]store.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]store.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg store.UpdateOrderStatusParams) error
}

// listOrdersLimit caps the order list; the admin page never pages past this.
const listOrdersLimit = 100

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   *ws.Hub
}

// NewOrderHandler creates a new OrderHandler. hub may be nil in tests.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// The storefront addresses a single collection URL: GET /orders (with an
// optional id query parameter), POST /orders, PUT /orders. Other methods
// get Chi's 405.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/", h.Create)
	r.Put("/", h.UpdateStatus)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName    string                   `json:"customer_name"`
	CustomerPhone   string                   `json:"customer_phone"`
	CustomerEmail   string                   `json:"customer_email"`
	DeliveryAddress string                   `json:"delivery_address"`
	PaymentMethod   string                   `json:"payment_method"`
	DeliveryMethod  string                   `json:"delivery_method"`
	Comment         string                   `json:"comment"`
	Items           []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID    string      `json:"product_id"`
	ProductName  string      `json:"product_name"`
	ProductPrice json.Number `json:"product_price"`
	Size         string      `json:"size"`
	Quantity     int32       `json:"quantity"`
	Subtotal     json.Number `json:"subtotal"`
}

type updateOrderStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerEmail   *string             `json:"customer_email"`
	DeliveryAddress *string             `json:"delivery_address"`
	PaymentMethod   *string             `json:"payment_method"`
	DeliveryMethod  *string             `json:"delivery_method"`
	Comment         *string             `json:"comment"`
	TotalAmount     string              `json:"total_amount"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Items           []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductID    *string   `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductPrice string    `json:"product_price"`
	Size         *string   `json:"size"`
	Quantity     int32     `json:"quantity"`
	Subtotal     string    `json:"subtotal"`
}

// orderEvent is the payload broadcast to admin dashboards.
type orderEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	CustomerName string    `json:"customer_name,omitempty"`
	Status       string    `json:"status"`
	TotalAmount  string    `json:"total_amount,omitempty"`
}

// --- Handlers ---

// Get handles GET /orders. With an id query parameter it returns one order
// with its items aggregated; otherwise a filtered list of recent orders.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	if idStr := r.URL.Query().Get("id"); idStr != "" {
		h.getOne(w, r, idStr)
		return
	}

	params := store.ListOrdersParams{Limit: listOrdersLimit}
	if s := r.URL.Query().Get("status"); s != "" {
		params.Status = pgtype.Text{String: s, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, nil)
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

func (h *OrderHandler) getOne(w http.ResponseWriter, r *http.Request, idStr string) {
	orderID, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": toOrderResponse(order, items)})
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateOrderItemRequest{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductPrice: item.ProductPrice.String(),
			Size:         item.Size,
			Quantity:     item.Quantity,
			Subtotal:     item.Subtotal.String(),
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		DeliveryMethod:  req.DeliveryMethod,
		Comment:         req.Comment,
		Items:           svcItems,
	})
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcast("order.created", orderEvent{
		OrderID:      result.Order.ID,
		CustomerName: result.Order.CustomerName,
		Status:       result.Order.Status,
		TotalAmount:  numericToString(result.Order.TotalAmount),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"order_id": result.Order.ID,
		"message":  "Order created successfully",
	})
}

// UpdateStatus handles PUT /orders. The update is unconditional: no
// existence check, no transition validation, any status string accepted.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.ID == "" || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order id and status are required"})
		return
	}

	orderID, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.store.UpdateOrderStatus(r.Context(), store.UpdateOrderStatusParams{
		ID:     orderID,
		Status: req.Status,
	}); err != nil {
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcast("order.status_updated", orderEvent{OrderID: orderID, Status: req.Status})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Order updated successfully"})
}

// --- Helpers ---

func (h *OrderHandler) broadcast(eventType string, payload orderEvent) {
	if h.hub == nil {
		return
	}
	evt, err := ws.NewEvent(eventType, payload)
	if err != nil {
		log.Printf("WARN: build %s event: %v", eventType, err)
		return
	}
	h.hub.Broadcast(evt)
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrMissingCustomerName) ||
		errors.Is(err, service.ErrMissingCustomerPhone) ||
		errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrMissingProductName) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidProductID) ||
		errors.Is(err, service.ErrInvalidProductPrice) ||
		errors.Is(err, service.ErrInvalidSubtotal)
}

func toOrderResponse(o store.Order, items []store.OrderItem) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		TotalAmount:   numericToString(o.TotalAmount),
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}

	if o.CustomerEmail.Valid {
		resp.CustomerEmail = &o.CustomerEmail.String
	}
	if o.DeliveryAddress.Valid {
		resp.DeliveryAddress = &o.DeliveryAddress.String
	}
	if o.PaymentMethod.Valid {
		resp.PaymentMethod = &o.PaymentMethod.String
	}
	if o.DeliveryMethod.Valid {
		resp.DeliveryMethod = &o.DeliveryMethod.String
	}
	if o.Comment.Valid {
		resp.Comment = &o.Comment.String
	}

	for _, item := range items {
		resp.Items = append(resp.Items, toOrderItemResponse(item))
	}
	return resp
}

func toOrderItemResponse(i store.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ID:           i.ID,
		ProductName:  i.ProductName,
		ProductPrice: numericToString(i.ProductPrice),
		Quantity:     i.Quantity,
		Subtotal:     numericToString(i.Subtotal),
	}
	if i.ProductID.Valid {
		s := uuid.UUID(i.ProductID.Bytes).String()
		resp.ProductID = &s
	}
	if i.Size.Valid {
		resp.Size = &i.Size.String
	}
	return resp
}
