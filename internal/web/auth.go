package web

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lbocquet/tombola/internal/logging"
	"github.com/lbocquet/tombola/internal/mail"
)

// gmailNotifier returns the Gmail implementation when that is what is
// configured. The log sink has no authorization flow.
func (s *Server) gmailNotifier() (*mail.GmailNotifier, bool) {
	g, ok := s.notifier.(*mail.GmailNotifier)
	return g, ok
}

// handleAuthStatus reports whether Gmail delivery is configured and holds a
// usable token.
func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gmailNotifier()
	if !ok {
		s.respondJSON(w, r, map[string]any{"configured": false, "authorized": false})
		return
	}
	s.respondJSON(w, r, map[string]any{"configured": true, "authorized": g.Authorized()})
}

// handleAuthStart redirects the operator to Google's consent screen.
func (s *Server) handleAuthStart(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gmailNotifier()
	if !ok {
		s.respondError(w, r, nil, "gmail delivery is not configured", http.StatusConflict)
		return
	}
	http.Redirect(w, r, g.AuthURL(uuid.New().String()), http.StatusFound)
}

// handleAuthCallback exchanges the authorization code Google redirects back
// with and stores the resulting token.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gmailNotifier()
	if !ok {
		s.respondError(w, r, nil, "gmail delivery is not configured", http.StatusConflict)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		s.respondError(w, r, nil, "missing authorization code", http.StatusBadRequest)
		return
	}

	if err := g.Exchange(r.Context(), code); err != nil {
		s.respondError(w, r, err, "authorization failed", http.StatusBadGateway)
		return
	}

	logging.FromContext(r.Context()).Info("gmail authorization completed")
	s.respondJSON(w, r, map[string]string{"status": "authorized"})
}
