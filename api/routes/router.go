package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelarde/shopflow-backend/api/controllers"
	"github.com/avelarde/shopflow-backend/api/middleware"
	"github.com/avelarde/shopflow-backend/internal/auth"
	"github.com/avelarde/shopflow-backend/internal/cart"
	checkoutsvc "github.com/avelarde/shopflow-backend/internal/checkout"
	"github.com/avelarde/shopflow-backend/internal/orders"
	productsvc "github.com/avelarde/shopflow-backend/internal/products"
	"github.com/avelarde/shopflow-backend/internal/reviews"
	"github.com/avelarde/shopflow-backend/internal/users"
	"github.com/avelarde/shopflow-backend/pkg/auth/session"
	"github.com/avelarde/shopflow-backend/pkg/config"
	"github.com/avelarde/shopflow-backend/pkg/db"
	"github.com/avelarde/shopflow-backend/pkg/enums"
	"github.com/avelarde/shopflow-backend/pkg/logger"
	"github.com/avelarde/shopflow-backend/pkg/metrics"
	"github.com/avelarde/shopflow-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions sessionManager
	Registry *prometheus.Registry
	HTTP     *metrics.HTTPMetrics

	Auth     auth.Service
	Users    users.Service
	Products productsvc.Service
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Reviews  reviews.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTP),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	authMW := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	idempotencyMW := middleware.Idempotency(deps.Redis, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			idempotencyMW,
		).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		if !cfg.App.IsProd() {
			// Bootstrap route for the first admin of a fresh install.
			r.With(
				middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
				idempotencyMW,
			).Post("/register-admin", controllers.AuthRegisterAdmin(deps.Auth, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(authMW).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	// Catalog surface. Review creation lives here too so the product
	// subtree owns every /products route.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/categories", controllers.ListCategories(deps.Products, logg))
		r.Get("/slug/{slug}", controllers.GetProductBySlug(deps.Products, logg))
		r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))
		r.Get("/{productId}/reviews", controllers.ListReviews(deps.Reviews, logg))
		r.With(authMW, idempotencyMW).Post("/{productId}/reviews", controllers.CreateReview(deps.Reviews, logg))
	})

	// Authenticated customer surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMW)
		r.Use(idempotencyMW)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Cart, logg))
			r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
			r.Put("/items/{productId}", controllers.UpdateCartItem(deps.Cart, logg))
			r.Delete("/items/{productId}", controllers.RemoveCartItem(deps.Cart, logg))
			r.Delete("/", controllers.ClearCart(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PlaceOrder(deps.Checkout, logg))
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(deps.Orders, logg))
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(deps.Users, logg))
			r.Patch("/", controllers.UpdateProfile(deps.Users, logg))
			r.Put("/password", controllers.ChangePassword(deps.Users, logg))
			r.Get("/addresses", controllers.ListAddresses(deps.Users, logg))
			r.Post("/addresses", controllers.AddAddress(deps.Users, logg))
			r.Delete("/addresses/{index}", controllers.RemoveAddress(deps.Users, logg))
		})
	})

	// Admin surface.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authMW)
		r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
		r.Use(idempotencyMW)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(deps.Products, logg))
			r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
			r.Patch("/{productId}", controllers.AdminUpdateProduct(deps.Products, logg))
			r.Delete("/{productId}", controllers.AdminDeactivateProduct(deps.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(deps.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
		})
	})

	return r
}
