package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/auth"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/health"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/httputil"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/middleware"
)

// RouterConfig collects the handlers and cross-cutting pieces the router
// mounts.
type RouterConfig struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Catalog  *CatalogHandler
	Auth     *AuthHandler
	Orders   *OrderHandler
	JWT      *auth.JWTManager
	Health   *health.Handler
	Logger   *slog.Logger
}

// NewRouter builds the API router with the shared middleware chain, health
// and metrics endpoints, and the versioned storefront routes.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.RealIP)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Tracing())
	r.Use(CORS)

	r.Get("/health/live", cfg.Health.Liveness())
	r.Get("/health/ready", cfg.Health.Readiness())
	r.Handle("/metrics", promhttp.Handler())

	authenticate := Authenticate(cfg.JWT)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authenticate)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", cfg.Catalog.ListCategories)
			r.Get("/products", cfg.Catalog.ListProducts)
			r.Get("/products/{productID}", cfg.Catalog.GetProduct)
			r.Get("/products/slug/{slug}", cfg.Catalog.GetProductBySlug)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(CartID)
			r.Get("/", cfg.Cart.Get)
			r.Delete("/", cfg.Cart.Clear)
			r.Post("/items", cfg.Cart.AddItem)
			r.Put("/items/{productID}", cfg.Cart.UpdateItem)
			r.Patch("/items/{productID}", cfg.Cart.AdjustItem)
			r.Delete("/items/{productID}", cfg.Cart.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.With(CartID).Post("/", cfg.Checkout.Start)
			r.Get("/{sessionID}", cfg.Checkout.Get)
			r.Post("/{sessionID}/next", cfg.Checkout.Next)
			r.Post("/{sessionID}/back", cfg.Checkout.Back)
			r.Put("/{sessionID}/address", cfg.Checkout.SetAddress)
			r.Post("/{sessionID}/submit", cfg.Checkout.Submit)
			r.Post("/{sessionID}/retry", cfg.Checkout.Retry)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)
			r.With(RequireAuth).Get("/me", cfg.Auth.Me)
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(RequireAuth).Get("/", cfg.Orders.List)
			r.Get("/{orderID}", cfg.Orders.Get)
			r.Get("/reference/{reference}", cfg.Orders.GetByReference)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "NOT_FOUND", Message: "route not found"},
		})
	})

	return r
}
