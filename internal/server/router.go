// Package server exposes the ledger core as a JSON HTTP API. It is a thin
// adapter: request decoding, actor extraction, and error-to-status mapping —
// all business rules live in the service and ledger packages.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sunny0223day/accountingbot/internal/auth"
	"github.com/sunny0223day/accountingbot/internal/middleware"
	"github.com/sunny0223day/accountingbot/internal/service"
)

// Server bundles the HTTP handlers with their dependencies.
type Server struct {
	ledger  *service.LedgerService
	queries *service.QueryService
	jwt     *auth.JWTManager
}

// New creates a Server.
func New(ledgerSvc *service.LedgerService, querySvc *service.QueryService, jwtManager *auth.JWTManager) *Server {
	return &Server{
		ledger:  ledgerSvc,
		queries: querySvc,
		jwt:     jwtManager,
	}
}

// Router builds the chi router with middleware and all API routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(middleware.Logging)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.jwt))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", s.CreateOrder)
			r.Get("/", s.SearchOrders)

			r.Route("/{orderID}", func(r chi.Router) {
				r.Post("/items", s.AddItem)
				r.Post("/discount", s.SetDiscount)
				r.Post("/adjustment", s.SetAdjustment)
				r.Post("/lock", s.Lock)
				r.Post("/unlock", s.Unlock)
				r.Post("/cancel", s.Cancel)
				r.Post("/payments", s.MarkPaid)
				r.Get("/bill", s.GetBill)
			})
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/debt", s.GetDebt)
			r.Get("/overview", s.GetOverview)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
