// Package server exposes the services over a JSON REST API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/granaflow/backend/internal/config"
	"github.com/granaflow/backend/internal/service"
)

// Server bundles the services behind the HTTP API.
type Server struct {
	cfg        *config.Config
	expenses   *service.ExpenseService
	recurring  *service.RecurringService
	forecasts  *service.ForecastService
	jobs       *service.ForecastJobs
	reconcile  *service.ReconcileService
	imports    *service.ImportService
	categories *service.CategoryService
	splits     *service.SplitService
}

func New(
	cfg *config.Config,
	expenses *service.ExpenseService,
	recurring *service.RecurringService,
	forecasts *service.ForecastService,
	jobs *service.ForecastJobs,
	reconcile *service.ReconcileService,
	imports *service.ImportService,
	categories *service.CategoryService,
	splits *service.SplitService,
) *Server {
	return &Server{
		cfg:        cfg,
		expenses:   expenses,
		recurring:  recurring,
		forecasts:  forecasts,
		jobs:       jobs,
		reconcile:  reconcile,
		imports:    imports,
		categories: categories,
		splits:     splits,
	}
}

// Handler builds the full route tree with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Get("/{id}", s.handleGetExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/recurring-expenses", func(r chi.Router) {
			r.Post("/", s.handleCreateRecurring)
			r.Get("/", s.handleListRecurring)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRecurring)
				r.Patch("/", s.handleUpdateRecurring)
				r.Delete("/", s.handleDeleteRecurring)
				r.Post("/stop", s.handleStopRecurring)
				r.Get("/forecasts", s.handleListTemplateForecasts)
				r.Post("/forecasts", s.handleUpdateAllFutureForecasts)
			})
		})

		r.Route("/forecasts", func(r chi.Router) {
			r.Get("/upcoming", s.handleUpcomingForecasts)
			r.Post("/bulk-confirm", s.handleBulkConfirmForecasts)
			r.Post("/bulk-delete", s.handleBulkDeleteForecasts)
			r.Post("/check-matches", s.handleCheckMatches)
			r.Post("/merge", s.handleConfirmMerge)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", s.handleUpdateForecast)
				r.Post("/confirm", s.handleConfirmForecast)
			})
		})

		r.Route("/imports", func(r chi.Router) {
			r.Post("/preview", s.handleImportPreview)
			r.Post("/", s.handleImportCommit)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/split-events", func(r chi.Router) {
			r.Post("/", s.handleCreateSplitEvent)
			r.Get("/", s.handleListSplitEvents)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSplitEvent)
				r.Put("/", s.handleUpdateSplitEvent)
				r.Delete("/", s.handleDeleteSplitEvent)
				r.Post("/status", s.handleSetSplitEventStatus)
				r.Post("/receipts", s.handleAddReceipt)
				r.Delete("/receipts/{receiptId}", s.handleRemoveReceipt)
				r.Get("/calculate", s.handleCalculateSplit)
			})
		})

		r.Route("/cron", func(r chi.Router) {
			r.Use(s.requireCronSecret)
			r.Post("/extend-forecasts", s.handleCronExtend)
			r.Post("/mature-forecasts", s.handleCronMature)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
			"X-User-ID",
		},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
