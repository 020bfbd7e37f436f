// Package httpapi exposes the identity provider and the profile document
// store over a JSON/HTTP API.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flixflex/flixflex/internal/logging"
	"github.com/flixflex/flixflex/internal/server/accounts"
	"github.com/flixflex/flixflex/internal/server/docstore"
	"github.com/flixflex/flixflex/internal/server/sessions"
)

type Server struct {
	log      logging.Logger
	accounts *accounts.Service
	sessions *sessions.Service
	store    docstore.Store
	secret   []byte
	router   chi.Router
}

func NewServer(log logging.Logger, accountSvc *accounts.Service, sessionSvc *sessions.Service, store docstore.Store, secret []byte, reg *prometheus.Registry) *Server {
	s := &Server{
		log:      log.With("component", "httpapi"),
		accounts: accountSvc,
		sessions: sessionSvc,
		store:    store,
		secret:   secret,
	}

	metrics := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/accounts", s.handleSignUp)
		r.With(s.requireAuth).Delete("/accounts/{uid}", s.handleDeleteAccount)

		r.Post("/sessions", s.handleSignIn)
		r.Post("/sessions/refresh", s.handleRefresh)
		r.Delete("/sessions", s.handleSignOut)

		r.Post("/password-resets", s.handlePasswordReset)
		r.Post("/password-resets/confirm", s.handlePasswordResetConfirm)

		r.Route("/store/{collection}", func(r chi.Router) {
			r.Get("/", s.handleStoreQuery)
			r.Get("/{id}", s.handleStoreGet)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/{id}", s.handleStoreCreate)
				r.Put("/{id}", s.handleStoreSet)
				r.Delete("/{id}", s.handleStoreDelete)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the root http handler.
func (s *Server) Handler() http.Handler { return s.router }
