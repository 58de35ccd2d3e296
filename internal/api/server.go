// Package api exposes the flow engine over HTTP. Clients drive a session by
// posting named actions and polling the session view, which samples live
// progress on every read.
package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rechargehub/cardflow/internal/apperr"
	"github.com/rechargehub/cardflow/internal/auth"
	"github.com/rechargehub/cardflow/internal/catalog"
	"github.com/rechargehub/cardflow/internal/flow"
	"github.com/rechargehub/cardflow/internal/health"
	"github.com/rechargehub/cardflow/internal/middleware"
	"github.com/rechargehub/cardflow/internal/notify"
	"github.com/rechargehub/cardflow/pkg/logger"
)

// Server wires the HTTP handlers around the flow controller and its
// collaborators.
type Server struct {
	controller *flow.Controller
	auth       *auth.Service
	catalog    catalog.Provider
	checker    *health.Checker
	notifier   notify.Notifier
	errs       *apperr.Handler
	log        *slog.Logger
}

// NewServer builds a Server. The health checker, notifier and error handler
// may be nil.
func NewServer(
	controller *flow.Controller,
	authSvc *auth.Service,
	provider catalog.Provider,
	checker *health.Checker,
	notifier notify.Notifier,
	errs *apperr.Handler,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if errs == nil {
		errs = apperr.NewHandler(log, false)
	}

	return &Server{
		controller: controller,
		auth:       authSvc,
		catalog:    provider,
		checker:    checker,
		notifier:   notifier,
		errs:       errs,
		log:        log,
	}
}

// Handler assembles the route table and the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/cards", s.handleListCards)

	mux.HandleFunc("POST /api/flow", s.handleOpenSession)
	mux.HandleFunc("GET /api/flow/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/flow/{id}/actions", s.handleAction)
	mux.HandleFunc("DELETE /api/flow/{id}", s.handleCloseSession)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	var h http.Handler = mux
	h = middleware.Metrics(h)
	h = middleware.Logging(s.log)(h)
	h = logger.Middleware(h)

	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	results := s.checker.Check(r.Context())
	status := http.StatusOK
	for _, result := range results {
		if result != "OK" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]any{
		"status":     http.StatusText(status),
		"components": results,
	})
}
