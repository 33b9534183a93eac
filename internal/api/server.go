// Package api provides the HTTP server for the Smile-Share
// gamification engine. Recording endpoints are best-effort: the
// primary action they accompany already succeeded, so engine failures
// degrade to an empty result instead of an error status.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smile-share/engage/internal/app/gamify"
	"github.com/smile-share/engage/internal/app/notify"
	"github.com/smile-share/engage/internal/health"
)

// Server is the engagement HTTP API server.
type Server struct {
	engine         *gamify.Engine
	dispatcher     *notify.Dispatcher
	health         *health.Checker
	corsOrigins    []string
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(engine *gamify.Engine, dispatcher *notify.Dispatcher) *Server {
	return &Server{
		engine:      engine,
		dispatcher:  dispatcher,
		corsOrigins: []string{"*"},
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetCORSOrigins restricts which origins the API answers for.
func (s *Server) SetCORSOrigins(origins []string) {
	if len(origins) > 0 {
		s.corsOrigins = origins
	}
}

// SetHealth attaches the health checker backing /health.
func (s *Server) SetHealth(h *health.Checker) { s.health = h }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware(s.corsOrigins))

	r.Get("/health", s.handleHealth)

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "engage is running",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": "0.1.0",
		})
	})

	r.Route("/api", func(r chi.Router) {
		// Recording endpoints (best-effort side effects)
		r.Route("/users/{id}", func(r chi.Router) {
			r.Post("/purchases", s.handleRecordPurchase)
			r.Post("/donations", s.handleRecordDonation)
			r.Post("/activities", s.handleRecordActivity)
			r.Post("/grants", s.handleGrant)
			r.Post("/logins", s.handleRecordLogin)

			// Read side
			r.Get("/summary", s.handleSummary)
			r.Get("/badges", s.handleBadges)
			r.Get("/history", s.handleHistory)
		})

		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/achievements/{id}", s.handleAchievement)
		r.Get("/levels", s.handleLevels)

		// Ephemeral notifications
		r.Get("/notifications", s.handleNotifications)
		r.Post("/notifications/{id}/dismiss", s.handleDismiss)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status := http.StatusOK
	if !s.health.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": map[bool]string{true: "ok", false: "degraded"}[s.health.IsHealthy()],
		"checks": s.health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the web frontend. A "*" entry
// allows any origin; otherwise the request's Origin must be listed.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAny := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAny = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
