package router

import (
	"net/http"

	"kobo-inventory/internal/handler"
	"kobo-inventory/internal/metrics"
	"kobo-inventory/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Products   *handler.ProductHandler
	Reports    *handler.ReportHandler
	Categories *handler.CategoryHandler
	Auth       *handler.AuthHandler
}

// Options configures the router's middleware.
type Options struct {
	Tokens      middleware.TokenParser
	Limiter     *middleware.RateLimiter
	Metrics     *metrics.Metrics
	CORSOrigin  string
	MetricsPath string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> Metrics -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.CORS(opts.CORSOrigin))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, opts.Metrics.Handler())
	}

	requireAuth := middleware.Auth(opts.Tokens, logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(opts.Limiter.Middleware)
			}
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/forget-password", h.Auth.ForgetPassword)
			r.Get("/reset-password", h.Auth.LoadReset)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.With(requireAuth).Post("/enable-2fa", h.Auth.EnableTwoFactor)
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/productSold", h.Products.RecordSale)
			r.Post("/getProductReport", h.Reports.ProductReport)
			r.Get("/getAllProductsReport", h.Reports.AllProductsReport)
			r.Get("/bestSellingProducts", h.Reports.BestSelling)
			r.Get("/lowStockProducts", h.Reports.LowStock)

			r.Post("/newProduct", h.Products.Create)
			r.Get("/getProduct", h.Products.Get)
			r.Get("/getAllProducts", h.Products.GetAll)
			r.Get("/getProductsWithPagination", h.Products.GetPage)
			r.Post("/import", h.Products.Import)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Categories.List)
			r.Post("/", h.Categories.Create)
			r.With(requireAuth).Post("/createProduct", h.Products.Create)
			r.Post("/products", h.Products.ByCategory)
		})
	})

	return r
}
