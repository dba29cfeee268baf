// Package server exposes the invoicing core over a JSON HTTP surface for the
// mobile client, including a server-sent-events stream that mirrors the
// live bill-list subscription.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/auth"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/billing"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/export"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/middleware"
)

// Server holds the handler dependencies.
type Server struct {
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
	repo          *billing.Repository
	renderer      *export.HTMLRenderer
}

// New creates a Server over the given core components.
func New(authenticator auth.Authenticator, tokens *auth.JWTManager, repo *billing.Repository, renderer *export.HTMLRenderer) *Server {
	return &Server{
		authenticator: authenticator,
		tokens:        tokens,
		repo:          repo,
		renderer:      renderer,
	}
}

// Handler builds the route table. Bill routes require a bearer token; the
// auth routes and /metrics do not.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(s.tokens)

	route := func(pattern string, h http.HandlerFunc, authed bool) {
		var handler http.Handler = h
		if authed {
			handler = requireAuth(handler)
		}
		mux.Handle(pattern, middleware.Metrics(pattern, handler))
	}

	route("POST /api/register", s.handleRegister, false)
	route("POST /api/login", s.handleLogin, false)
	route("GET /api/me", s.handleMe, true)

	route("GET /api/bills", s.handleListBills, true)
	route("GET /api/bills/stream", s.handleStreamBills, true)
	route("POST /api/bills", s.handleCreateBill, true)
	route("GET /api/bills/{id}", s.handleGetBill, true)
	route("PUT /api/bills/{id}", s.handleUpdateBill, true)
	route("DELETE /api/bills/{id}", s.handleDeleteBill, true)
	route("GET /api/bills/{id}/items", s.handleListItems, true)
	route("GET /api/bills/{id}/export", s.handleExportBill, true)

	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Logging(middleware.CORS(mux))
}
