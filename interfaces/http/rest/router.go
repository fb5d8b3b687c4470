// Package rest wires the HTTP routes and middleware stack.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"fintrack-backend/application/services"
	"fintrack-backend/interfaces/http/rest/handlers"
	"fintrack-backend/interfaces/http/rest/middleware"
	"fintrack-backend/pkg/auth"
	"fintrack-backend/pkg/cache"
)

// Router creates and configures the HTTP router.
type Router struct {
	categories   *services.CategoryService
	transactions *services.TransactionService
	reports      *services.ReportService
	caches       *cache.Registry
	validator    *auth.JWTValidator
	enableCORS   bool
	logger       *zap.Logger
}

// NewRouter creates a new router instance.
func NewRouter(
	categories *services.CategoryService,
	transactions *services.TransactionService,
	reports *services.ReportService,
	caches *cache.Registry,
	validator *auth.JWTValidator,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		categories:   categories,
		transactions: transactions,
		reports:      reports,
		caches:       caches,
		validator:    validator,
		enableCORS:   enableCORS,
		logger:       logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))

		r.Route("/categories", func(r chi.Router) {
			h := handlers.NewCategoryHandler(rt.categories, rt.logger)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Put("/{categoryID}", h.Update)
			r.Delete("/{categoryID}", h.Delete)
		})

		r.Route("/transactions", func(r chi.Router) {
			h := handlers.NewTransactionHandler(rt.transactions, rt.logger)
			r.Get("/", h.List)
			r.Get("/feed", h.Feed)
			r.Post("/", h.Create)
			r.Put("/{transactionID}", h.Update)
			r.Delete("/{transactionID}", h.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			h := handlers.NewReportHandler(rt.reports, rt.logger)
			r.Get("/summary", h.Summary)
			r.Get("/categories", h.ByCategory)
			r.Get("/timeseries", h.TimeSeries)
		})

		r.Get("/cache/stats", handlers.NewCacheHandler(rt.caches).Stats)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
