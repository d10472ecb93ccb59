package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/alem-hub/homework-bot/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"name":    "homework-bot",
		"version": s.config.Version,
		"endpoints": map[string]string{
			"health":        "/health",
			"metrics":       "/metrics",
			"state":         "/api/v1/state",
			"notifications": "/api/v1/notifications/recent",
		},
	})
}

// handleHealth reports "ok" while every registered check passes.
// The body is not wrapped in the API envelope so liveness checks can read "status" directly.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())

	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

// ══════════════════════════════════════════════════════════════════════════════
// API V1 HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetState returns the snapshot published after the last cycle.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	if s.deps.State == nil {
		writeJSONError(w, r, http.StatusServiceUnavailable, "state_unavailable", "Poller is not attached")
		return
	}
	writeJSON(w, r, http.StatusOK, s.deps.State.Snapshot())
}

// recentResponse is the payload of GET /api/v1/notifications/recent.
type recentResponse struct {
	Notifications []notification.Entry `json:"notifications"`
	Count         int                  `json:"count"`
}

// handleGetRecentNotifications returns journal entries, oldest first.
func (s *Server) handleGetRecentNotifications(w http.ResponseWriter, r *http.Request) {
	if s.deps.Journal == nil {
		writeJSONError(w, r, http.StatusServiceUnavailable, "journal_unavailable", "Notification journal is not configured")
		return
	}

	limit, ok := parseLimit(r.URL.Query().Get("limit"))
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
		return
	}

	entries, err := s.deps.Journal.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("journal read failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeJSONError(w, r, http.StatusInternalServerError, "journal_error", "Failed to read notification journal")
		return
	}
	if entries == nil {
		entries = []notification.Entry{}
	}

	writeJSON(w, r, http.StatusOK, recentResponse{Notifications: entries, Count: len(entries)})
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// JSONResponse represents a standard JSON response.
type JSONResponse struct {
	Success   bool          `json:"success"`
	Data      any           `json:"data,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(JSONResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta: &ResponseMeta{
			Timestamp: time.Now().UTC(),
			Version:   "v1",
		},
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeJSONError writes an error JSON response.
func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(JSONResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &ResponseMeta{
			Timestamp: time.Now().UTC(),
		},
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// parseLimit reads ?limit=N. Empty means the default; values above the
// maximum are clamped.
func parseLimit(raw string) (int, bool) {
	if raw == "" {
		return defaultRecentLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > maxRecentLimit {
		n = maxRecentLimit
	}
	return n, true
}
