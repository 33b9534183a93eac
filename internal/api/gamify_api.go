package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/smile-share/engage/internal/domain"
	"github.com/smile-share/engage/internal/infra/metrics"
)

// ─── Recording Endpoints ─────────────────────────────────────────────────────
// Each POST below is the gamification side effect of a primary action
// (a purchase, a donation, a join) that already succeeded elsewhere.
// A malformed request or invalid delta is the caller's bug and gets a
// 4xx; a persistence failure is logged and swallowed, answering 200
// with a zeroed result so the caller can degrade gracefully.

func (s *Server) handleRecordPurchase(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var delta domain.PurchaseDelta
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.RecordPurchase(userID, delta)
	s.respondRecord(w, "purchase", res, err)
}

func (s *Server) handleRecordDonation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var delta domain.DonationDelta
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.RecordDonation(userID, delta)
	s.respondRecord(w, "donation", res, err)
}

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var delta domain.ActivityDelta
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.RecordActivityJoin(userID, delta)
	s.respondRecord(w, "activity", res, err)
}

func (s *Server) handleRecordLogin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	stats, err := s.engine.RecordLogin(userID)
	if err != nil {
		if isDeltaError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[api] login record failed for %s: %v", userID, err)
		metrics.PersistenceFailures.WithLabelValues("login").Inc()
		writeJSON(w, http.StatusOK, domain.UserStats{NGOSupport: map[string]int{}})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleGrant records a manual point grant. Unlike the recording
// endpoints this is a primary action of its own, so failures surface.
func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req struct {
		Amount int64  `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.Grant(userID, req.Amount, req.Reason)
	if err != nil {
		if isDeltaError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.dispatcher.Publish(res.Events)
	writeJSON(w, http.StatusOK, res)
}

// respondRecord implements the best-effort propagation policy shared
// by the three delta endpoints.
func (s *Server) respondRecord(w http.ResponseWriter, action string, res domain.Result, err error) {
	if err != nil {
		if isDeltaError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[api] %s record failed: %v", action, err)
		metrics.PersistenceFailures.WithLabelValues(action).Inc()
		writeJSON(w, http.StatusOK, domain.EmptyResult())
		return
	}
	s.dispatcher.Publish(res.Events)
	writeJSON(w, http.StatusOK, res)
}

// isDeltaError reports whether the error is caller-fixable input
// validation, rejected before any write.
func isDeltaError(err error) bool {
	return errors.Is(err, domain.ErrEmptyUserID) ||
		errors.Is(err, domain.ErrEmptyReason) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrEmptyPurchase) ||
		errors.Is(err, domain.ErrInvalidDonation) ||
		errors.Is(err, domain.ErrEmptyActivity)
}

// ─── Read Side ──────────────────────────────────────────────────────────────

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.Summary(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.Summary(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": summary.UserID,
		"badges":  summary.Badges,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	limit := queryInt(r, "limit", 50)

	entries, err := s.engine.History(userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":        userID,
		"entries":        entries,
		"points_history": domain.HistoryMap(entries),
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.engine.Leaderboard(queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if board == nil {
		board = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": board})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"achievements": s.engine.Catalog()})
}

func (s *Server) handleAchievement(w http.ResponseWriter, r *http.Request) {
	def, err := s.engine.Achievement(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"levels": s.engine.Ladder()})
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": s.dispatcher.Pending(),
	})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatcher.Dismiss(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
