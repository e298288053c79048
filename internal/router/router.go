package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grandessa-shop/api/internal/config"
	"github.com/grandessa-shop/api/internal/handler"
	"github.com/grandessa-shop/api/internal/notify"
	"github.com/grandessa-shop/api/internal/service"
	"github.com/grandessa-shop/api/internal/store"
	"github.com/grandessa-shop/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, queries *store.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration. The storefront and admin page are served from
	// arbitrary origins (static hosting), so everything is allowed.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         86400, // 24 hours
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Live order feed for the admin dashboard.
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Notifier is nil when no mail function is configured; order creation
	// then skips email delivery entirely.
	var notifier service.Notifier
	if cfg.MailFunctionURL != "" {
		notifier = notify.NewClient(cfg.MailFunctionURL)
	}

	newOrderStore := func(db store.DBTX) service.OrderStore {
		return store.New(db)
	}
	orderService := service.NewOrderService(pool, newOrderStore, notifier, cfg.AdminEmail)
	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	r.Route("/orders", orderHandler.RegisterRoutes)

	productHandler := handler.NewProductHandler(queries)
	r.Route("/products", productHandler.RegisterRoutes)

	return r
}
