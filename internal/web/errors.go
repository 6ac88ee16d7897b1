package web

import (
	"encoding/json"
	"net/http"

	"github.com/lbocquet/tombola/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError logs the technical error server-side and returns a JSON error
// to the client. Messages passed here are already user-presentable; raw
// database or transport errors stay in the log.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, message string, statusCode int) {
	logger := logging.FromContext(r.Context())
	if err != nil {
		logger.Error("request error",
			"path", r.URL.Path,
			"method", r.Method,
			"status", statusCode,
			"error", err,
		)
	} else {
		logger.Warn("request rejected",
			"path", r.URL.Path,
			"method", r.Method,
			"status", statusCode,
			"reason", message,
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON encodes v as JSON and writes it to w.
func (s *Server) respondJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
