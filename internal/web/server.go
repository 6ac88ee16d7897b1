// Package web provides the HTTP server and JSON API behind the staff
// dashboard: importing storefront exports, sending ticket emails, editing
// purchase notes, and downloading the per-ticket export.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lbocquet/tombola/internal/config"
	"github.com/lbocquet/tombola/internal/mail"
	"github.com/lbocquet/tombola/internal/store"
	mw "github.com/lbocquet/tombola/internal/web/middleware"
)

// Server is the HTTP server for the ticket dashboard API.
type Server struct {
	store    *store.Store
	notifier mail.Notifier
	cfg      *config.Config
	imports  *importLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(st *store.Store, notifier mail.Notifier, cfg *config.Config) *Server {
	s := &Server{
		store:    st,
		notifier: notifier,
		cfg:      cfg,
		imports:  newImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWait),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders)
	s.router.Use(mw.APIKeyAuth(&s.cfg.Security))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Order listing (pending/assigned partition + summary)
		r.Get("/orders", s.handleListOrders)

		// Spreadsheet import
		r.Post("/import", s.handleImport)

		// Manual entry
		r.Post("/orders", s.handleCreateOrder)

		// Ticket assignment + email
		r.Post("/orders/send", s.handleSend)
		r.Post("/orders/resend", s.handleResend)

		// Purchase note editing
		r.Post("/orders/note", s.handleUpdateNote)

		// Remove a mistaken entry (pending orders only)
		r.Post("/orders/delete", s.handleDelete)

		// One-row-per-ticket workbook
		r.Get("/export", s.handleExport)

		// Gmail authorization flow
		r.Get("/auth/gmail", s.handleAuthStart)
		r.Get("/auth/gmail/callback", s.handleAuthCallback)
		r.Get("/auth/gmail/status", s.handleAuthStatus)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
