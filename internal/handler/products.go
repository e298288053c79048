package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/grandessa-shop/api/internal/store"
)

// filterAll is the sentinel the storefront sends for "no filter"
// (the tab is labelled "Все" in the UI).
const filterAll = "Все"

// ProductStore defines the database methods needed by product handlers.
// Satisfied by *store.Queries.
type ProductStore interface {
	ListProducts(ctx context.Context, arg store.ListProductsParams) ([]store.ListProductsRow, error)
	CreateProduct(ctx context.Context, arg store.CreateProductParams) (store.Product, error)
	SetProductActive(ctx context.Context, arg store.SetProductActiveParams) error
	GetCategoryIDByName(ctx context.Context, name string) (uuid.UUID, error)
}

// ProductHandler handles product endpoints.
type ProductHandler struct {
	store ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers product endpoints on the given Chi router.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/", h.Toggle)
}

// --- Request / Response types ---

type createProductRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	OldPrice    json.Number `json:"old_price"`
	Category    string      `json:"category"`
	ImageURL    string      `json:"image_url"`
	Badge       string      `json:"badge"`
	Sizes       string      `json:"sizes"`
}

type toggleProductRequest struct {
	ID       string `json:"id"`
	IsActive *bool  `json:"is_active"`
}

type productResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Price       string    `json:"price"`
	OldPrice    *string   `json:"old_price"`
	Category    *string   `json:"category"`
	ImageURL    *string   `json:"image_url"`
	Badge       *string   `json:"badge"`
	Sizes       string    `json:"sizes"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// --- Handlers ---

// List handles GET /products. Only active products are returned unless
// all=1 is set; category, size and search filters combine with AND.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var params store.ListProductsParams
	if c := r.URL.Query().Get("category"); c != "" && c != filterAll {
		params.Category = pgtype.Text{String: c, Valid: true}
	}
	if s := r.URL.Query().Get("size"); s != "" && s != filterAll {
		params.Size = pgtype.Text{String: s, Valid: true}
	}
	if q := r.URL.Query().Get("search"); q != "" {
		params.Search = pgtype.Text{String: q, Valid: true}
	}
	// The admin page asks for the full catalog, deactivated products included.
	if r.URL.Query().Get("all") == "1" {
		params.IncludeInactive = true
	}

	products, err := h.store.ListProducts(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = productResponse{
			ID:        p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Price:     numericToString(p.Price),
			Sizes:     p.Sizes,
			IsActive:  p.IsActive,
			CreatedAt: p.CreatedAt,
		}
		if p.Description.Valid {
			resp[i].Description = &p.Description.String
		}
		if p.OldPrice.Valid {
			s := numericToString(p.OldPrice)
			resp[i].OldPrice = &s
		}
		if p.Category.Valid {
			resp[i].Category = &p.Category.String
		}
		if p.ImageUrl.Valid {
			resp[i].ImageURL = &p.ImageUrl.String
		}
		if p.Badge.Valid {
			resp[i].Badge = &p.Badge.String
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": resp})
}

// Create handles POST /products. The slug is derived from the name; the
// category is resolved by name and left NULL when unknown.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.Price == "" || req.Category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, price and category are required"})
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	params := store.CreateProductParams{
		Name:        req.Name,
		Slug:        slugify(req.Name),
		Description: optionalParam(req.Description),
		Price:       moneyParam(price),
		ImageUrl:    optionalParam(req.ImageURL),
		Badge:       optionalParam(req.Badge),
		Sizes:       req.Sizes,
	}

	if req.OldPrice != "" {
		oldPrice, err := parsePrice(req.OldPrice)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid old_price"})
			return
		}
		params.OldPrice = moneyParam(oldPrice)
	}

	categoryID, err := h.store.GetCategoryIDByName(r.Context(), req.Category)
	switch {
	case err == nil:
		params.CategoryID = pgtype.UUID{Bytes: categoryID, Valid: true}
	case errors.Is(err, pgx.ErrNoRows):
		// unknown category: store the product uncategorized
	default:
		log.Printf("ERROR: resolve category %q: %v", req.Category, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	product, err := h.store.CreateProduct(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"product_id": product.ID,
		"message":    "Product created successfully",
	})
}

// Toggle handles PUT /products, setting a product's active flag.
func (h *ProductHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.ID == "" || req.IsActive == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product id and is_active are required"})
		return
	}

	productID, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	if err := h.store.SetProductActive(r.Context(), store.SetProductActiveParams{
		ID:       productID,
		IsActive: *req.IsActive,
	}); err != nil {
		log.Printf("ERROR: set product active: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Product updated successfully"})
}

// --- Helpers ---

// slugify derives a URL slug from a product name: lowercased, spaces
// replaced with hyphens, quotes removed.
func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, `"`, "")
	slug = strings.ReplaceAll(slug, "'", "")
	return slug
}

func parsePrice(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}

func optionalParam(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func moneyParam(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
