package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/grandessa-shop/api/internal/handler"
	"github.com/grandessa-shop/api/internal/store"
)

// --- Mock ProductStore ---

type mockProductStore struct {
	listProductsFn        func(ctx context.Context, arg store.ListProductsParams) ([]store.ListProductsRow, error)
	createProductFn       func(ctx context.Context, arg store.CreateProductParams) (store.Product, error)
	setProductActiveFn    func(ctx context.Context, arg store.SetProductActiveParams) error
	getCategoryIDByNameFn func(ctx context.Context, name string) (uuid.UUID, error)
}

func (m *mockProductStore) ListProducts(ctx context.Context, arg store.ListProductsParams) ([]store.ListProductsRow, error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx, arg)
	}
	return []store.ListProductsRow{}, nil
}

func (m *mockProductStore) CreateProduct(ctx context.Context, arg store.CreateProductParams) (store.Product, error) {
	if m.createProductFn != nil {
		return m.createProductFn(ctx, arg)
	}
	return store.Product{}, pgx.ErrNoRows
}

func (m *mockProductStore) SetProductActive(ctx context.Context, arg store.SetProductActiveParams) error {
	if m.setProductActiveFn != nil {
		return m.setProductActiveFn(ctx, arg)
	}
	return nil
}

func (m *mockProductStore) GetCategoryIDByName(ctx context.Context, name string) (uuid.UUID, error) {
	if m.getCategoryIDByNameFn != nil {
		return m.getCategoryIDByNameFn(ctx, name)
	}
	return uuid.Nil, pgx.ErrNoRows
}

func setupProductRouter(st *mockProductStore) *chi.Mux {
	h := handler.NewProductHandler(st)
	r := chi.NewRouter()
	r.Route("/products", h.RegisterRoutes)
	return r
}

func testProductRow(name string) store.ListProductsRow {
	return store.ListProductsRow{
		ID:        uuid.New(),
		Name:      name,
		Slug:      "test-slug",
		Price:     testNumeric("4990.00"),
		Category:  testText("Платья"),
		Sizes:     "52,54,56",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

// --- Tests ---

func TestProductList(t *testing.T) {
	st := &mockProductStore{
		listProductsFn: func(ctx context.Context, arg store.ListProductsParams) ([]store.ListProductsRow, error) {
			if arg.Category.Valid || arg.Size.Valid || arg.Search.Valid {
				t.Errorf("filters: got %+v, want none", arg)
			}
			return []store.ListProductsRow{testProductRow("Платье миди")}, nil
		},
	}

	router := setupProductRouter(st)
	rr := doRequest(t, router, "GET", "/products", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	products, ok := resp["products"].([]interface{})
	if !ok {
		t.Fatal("products not present in response")
	}
	if len(products) != 1 {
		t.Fatalf("products count: got %d, want 1", len(products))
	}

	p := products[0].(map[string]interface{})
	if p["name"] != "Платье миди" {
		t.Errorf("name: got %v", p["name"])
	}
	if p["price"] != "4990.00" {
		t.Errorf("price: got %v, want 4990.00", p["price"])
	}
	if p["category"] != "Платья" {
		t.Errorf("category: got %v, want Платья", p["category"])
	}
	if p["sizes"] != "52,54,56" {
		t.Errorf("sizes: got %v", p["sizes"])
	}
}

func TestProductList_Filters(t *testing.T) {
	st := &mockProductStore{
		listProductsFn: func(ctx context.Context, arg store.ListProductsParams) ([]store.ListProductsRow, error) {
			if !arg.Category.Valid || arg.Category.String != "Блузы" {
				t.Errorf("category filter: got %+v, want Блузы", arg.Category)
			}
			if !arg.Size.Valid || arg.Size.String != "54" {
				t.Errorf("size filter: got %+v, want 54", arg.Size)
			}
			if !arg.Search.Valid || arg.Search.String != "хлопок" {
				t.Errorf("search filter: got %+v, want хлопок", arg.Search)
			}
			return nil, nil
		},
	}

	router := setupProductRouter(st)
	rr := doRequest(t, router, "GET", "/products?category=Блузы&size=54&search=хлопок", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestProductList_AllSentinelIgnored(t *testing.T) {
	st := &mockProductStore{
		listProductsFn: func(ctx context.Context, arg store.ListProductsParams) ([]store.ListProductsRow, error) {
			if arg.Category.Valid {
				t.Errorf("category filter: got %q, want none", arg.Category.String)
			}
			if arg.Size.Valid {
				t.Errorf("size filter: got %q, want none", arg.Size.String)
			}
			return nil, nil
		},
	}

	router := setupProductRouter(st)
	rr := doRequest(t, router, "GET", "/products?category=Все&size=Все", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestProductList_IncludeInactive(t *testing.T) {
	st := &mockProductStore{
		listProductsFn: func(ctx context.Context, arg store.ListProductsParams) ([]store.ListProductsRow, error) {
			if !arg.IncludeInactive {
				t.Error("include_inactive: got false, want true")
			}
			return nil, nil
		},
	}

	router := setupProductRouter(st)
	rr := doRequest(t, router, "GET", "/products?all=1", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestProductCreate_HappyPath(t *testing.T) {
	productID := uuid.New()
	categoryID := uuid.New()

	st := &mockProductStore{
		getCategoryIDByNameFn: func(ctx context.Context, name string) (uuid.UUID, error) {
			if name != "Платья" {
				t.Errorf("category name: got %q, want Платья", name)
			}
			return categoryID, nil
		},
		createProductFn: func(ctx context.Context, arg store.CreateProductParams) (store.Product, error) {
			if arg.Name != "Платье миди \"Вечернее\"" {
				t.Errorf("name: got %q", arg.Name)
			}
			if arg.Slug != "платье-миди-вечернее" {
				t.Errorf("slug: got %q, want платье-миди-вечернее", arg.Slug)
			}
			if !arg.CategoryID.Valid || arg.CategoryID.Bytes != categoryID {
				t.Errorf("category_id: got %+v, want %v", arg.CategoryID, categoryID)
			}
			return store.Product{ID: productID, Name: arg.Name, Slug: arg.Slug}, nil
		},
	}

	router := setupProductRouter(st)
	rr := doRequest(t, router, "POST", "/products", map[string]interface{}{
		"name":     "Платье миди \"Вечернее\"",
		"price":    5990,
		"category": "Платья",
		"sizes":    "52,54,56",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["product_id"] != productID.String() {
		t.Errorf("product_id: got %v, want %v", resp["product_id"], productID)
	}
	if resp["message"] != "Product created successfully" {
		t.Errorf("message: got %v", resp["message"])
	}
}

func TestProductCreate_UnknownCategory(t *testing.T) {
	st := &mockProductStore{
		getCategoryIDByNameFn: func(ctx context.Context, name string) (uuid.UUID, error) {
			return uuid.Nil, pgx.ErrNoRows
		},
		createProductFn: func(ctx context.Context, arg store.CreateProductParams) (store.Product, error) {
			if arg.CategoryID.Valid {
				t.Errorf("category_id: got %+v, want NULL", arg.CategoryID)
			}
			return store.Product{ID: uuid.New()}, nil
		},
	}

	router := setupProductRouter(st)
	rr := doRequest(t, router, "POST", "/products", map[string]interface{}{
		"name":     "Туника",
		"price":    2490,
		"category": "Несуществующая",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
}

func TestProductCreate_MissingRequiredFields(t *testing.T) {
	router := setupProductRouter(&mockProductStore{})

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no name", map[string]interface{}{"price": 1000, "category": "Платья"}},
		{"no price", map[string]interface{}{"name": "Туника", "category": "Платья"}},
		{"no category", map[string]interface{}{"name": "Туника", "price": 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, "POST", "/products", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestProductToggle(t *testing.T) {
	productID := uuid.New()
	var gotParams store.SetProductActiveParams

	st := &mockProductStore{
		setProductActiveFn: func(ctx context.Context, arg store.SetProductActiveParams) error {
			gotParams = arg
			return nil
		},
	}

	router := setupProductRouter(st)
	rr := doRequest(t, router, "PUT", "/products", map[string]interface{}{
		"id":        productID.String(),
		"is_active": false,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	if gotParams.ID != productID {
		t.Errorf("product id: got %v, want %v", gotParams.ID, productID)
	}
	if gotParams.IsActive {
		t.Error("is_active: got true, want false")
	}

	resp := decodeResponse(t, rr)
	if resp["message"] != "Product updated successfully" {
		t.Errorf("message: got %v", resp["message"])
	}
}

func TestProductToggle_MissingFields(t *testing.T) {
	router := setupProductRouter(&mockProductStore{})

	rr := doRequest(t, router, "PUT", "/products", map[string]interface{}{"id": uuid.New().String()})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status without is_active: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = doRequest(t, router, "PUT", "/products", map[string]interface{}{"is_active": true})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status without id: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestProducts_MethodNotAllowed(t *testing.T) {
	router := setupProductRouter(&mockProductStore{})
	rr := doRequest(t, router, "DELETE", "/products", nil)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}
