package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/castrogabe/antiquepox/pkg/health"
	"github.com/castrogabe/antiquepox/pkg/middleware"

	"github.com/castrogabe/antiquepox/internal/auth"
	"github.com/castrogabe/antiquepox/internal/config"
	"github.com/castrogabe/antiquepox/internal/service"
	"github.com/castrogabe/antiquepox/internal/storage"
)

// serviceName identifies this server in metrics and traces.
const serviceName = "antiquepox"

// catalogCacheMaxAge is the Cache-Control max-age for public catalog reads.
const catalogCacheMaxAge = 60

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Config         *config.Config
	Users          *service.UserService
	Catalog        *service.CatalogService
	Cart           *service.CartService
	Orders         *service.OrderService
	Messages       *service.MessageService
	Reports        *service.ReportService
	Storage        storage.Storage
	Tokens         *auth.TokenManager
	HealthHandler  *health.Handler
	Logger         *slog.Logger
	TracingEnabled bool
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	logger := deps.Logger
	cfg := deps.Config

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	if deps.TracingEnabled {
		r.Use(middleware.Tracing(serviceName))
	}
	r.Use(middleware.RequestLogger(logger))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	r.Use(middleware.CORS(corsCfg))

	// Health and metrics endpoints
	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	// Auth middleware validating session tokens issued by the token manager.
	requireAuth := middleware.Auth(func(token string) (*middleware.Claims, error) {
		claims, err := deps.Tokens.ValidateSessionToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:  claims.UserID,
			Name:    claims.Name,
			Email:   claims.Email,
			IsAdmin: claims.IsAdmin,
		}, nil
	})
	requireAdmin := middleware.RequireAdmin()

	// Brute-force protection on the credential endpoints.
	authRateLimit := middleware.RateLimit(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, logger)

	userHandler := NewUserHandler(deps.Users, logger)
	productHandler := NewProductHandler(deps.Catalog, logger)
	cartHandler := NewCartHandler(deps.Cart, logger)
	orderHandler := NewOrderHandler(deps.Orders, logger)
	messageHandler := NewMessageHandler(deps.Messages, logger)
	reportHandler := NewReportHandler(deps.Reports, logger)
	uploadHandler := NewUploadHandler(deps.Storage, logger)
	keysHandler := NewKeysHandler(cfg.PayPalClientID, cfg.StripePublishableKey)

	r.Route("/api/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authRateLimit)
			r.Post("/signup", userHandler.Signup)
			r.Post("/signin", userHandler.Signin)
			r.Post("/forget-password", userHandler.ForgetPassword)
		})
		r.Post("/reset-password", userHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", userHandler.GetProfile)
			r.Put("/profile", userHandler.UpdateProfile)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Get("/", userHandler.ListUsers)
			r.Get("/{id}", userHandler.GetUser)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Delete("/{id}", userHandler.DeleteUser)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		// Public catalog reads are cacheable.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogCacheMaxAge))
			r.Get("/", productHandler.ListProducts)
			r.Get("/search", productHandler.SearchProducts)
			r.Get("/categories", productHandler.ListCategories)
			r.Get("/slug/{slug}", productHandler.GetProductBySlug)
			r.Get("/{id}", productHandler.GetProduct)
			r.Get("/{id}/reviews", productHandler.ListReviews)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/{id}/reviews", productHandler.CreateReview)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/", productHandler.CreateProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{productId}", cartHandler.UpdateItem)
		r.Delete("/items/{productId}", cartHandler.RemoveItem)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/", orderHandler.CreateOrder)
		r.Get("/mine", orderHandler.ListMyOrders)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", orderHandler.ListOrders)
			r.Get("/summary", reportHandler.Summary)
			r.Put("/{id}/ship", orderHandler.ShipOrder)
			r.Put("/{id}/deliver", orderHandler.DeliverOrder)
			r.Delete("/{id}", orderHandler.DeleteOrder)
		})

		r.Get("/{id}", orderHandler.GetOrder)
		r.Put("/{id}/pay", orderHandler.PayOrder)
		r.Post("/{id}/stripe-intent", orderHandler.CreateStripeIntent)
	})

	r.Route("/api/messages", func(r chi.Router) {
		r.Post("/", messageHandler.SubmitMessage)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Get("/", messageHandler.ListMessages)
		})
	})

	r.Route("/api/keys", func(r chi.Router) {
		r.Get("/paypal", keysHandler.PayPalKey)
		r.Get("/stripe", keysHandler.StripeKey)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.Post("/api/upload", uploadHandler.Upload)
	})

	// Uploaded images are served straight from disk.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	return r
}
