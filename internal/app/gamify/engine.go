// Package gamify implements the Smile-Share engagement engine: stats
// aggregation, achievement evaluation, the points ledger, and level
// resolution. One engine call runs the full pipeline for one user
// action and reports every state change as a domain event.
package gamify

import (
	"time"

	"github.com/smile-share/engage/internal/domain"
	"github.com/smile-share/engage/internal/infra/metrics"
	"github.com/smile-share/engage/internal/infra/sqlite"
)

// BasePoints are the flat grants attached to each action type, on top
// of any badge payouts the action unlocks.
type BasePoints struct {
	Purchase int64
	Donation int64
	Activity int64
}

// DefaultBasePoints returns the shipped per-action grants.
func DefaultBasePoints() BasePoints {
	return BasePoints{Purchase: 10, Donation: 25, Activity: 30}
}

// Engine wires the aggregator, evaluator, ledger, and level resolver
// into one pipeline per user action:
// aggregate → base grant → evaluate badges → detect level change.
type Engine struct {
	db         *sqlite.DB
	aggregator *Aggregator
	evaluator  *Evaluator
	ledger     *Ledger
	ladder     []domain.LevelDef
	base       BasePoints
}

// NewEngine creates an engine with the default catalog, ladder, and
// base points.
func NewEngine(db *sqlite.DB) *Engine {
	return NewEngineWithBase(db, DefaultBasePoints())
}

// NewEngineWithBase creates an engine with custom per-action grants.
func NewEngineWithBase(db *sqlite.DB, base BasePoints) *Engine {
	if base.Purchase <= 0 {
		base.Purchase = DefaultBasePoints().Purchase
	}
	if base.Donation <= 0 {
		base.Donation = DefaultBasePoints().Donation
	}
	if base.Activity <= 0 {
		base.Activity = DefaultBasePoints().Activity
	}
	return &Engine{
		db:         db,
		aggregator: NewAggregator(db),
		evaluator:  NewEvaluator(db),
		ledger:     NewLedger(db),
		ladder:     DefaultLadder(),
		base:       base,
	}
}

// ─── Recording Actions ──────────────────────────────────────────────────────

// RecordPurchase runs the pipeline for one completed purchase.
func (e *Engine) RecordPurchase(userID string, p domain.PurchaseDelta) (domain.Result, error) {
	now := time.Now()
	stats, err := e.aggregator.ApplyPurchase(userID, p, now)
	if err != nil {
		metrics.DeltasRejected.WithLabelValues("purchase").Inc()
		return domain.EmptyResult(), err
	}
	metrics.DeltasApplied.WithLabelValues("purchase").Inc()
	return e.finish(userID, stats, e.base.Purchase, "Purchase completed", now)
}

// RecordDonation runs the pipeline for one completed donation.
func (e *Engine) RecordDonation(userID string, d domain.DonationDelta) (domain.Result, error) {
	now := time.Now()
	stats, err := e.aggregator.ApplyDonation(userID, d, now)
	if err != nil {
		metrics.DeltasRejected.WithLabelValues("donation").Inc()
		return domain.EmptyResult(), err
	}
	metrics.DeltasApplied.WithLabelValues("donation").Inc()
	return e.finish(userID, stats, e.base.Donation, "Donation completed", now)
}

// RecordActivityJoin runs the pipeline for one activity join.
func (e *Engine) RecordActivityJoin(userID string, act domain.ActivityDelta) (domain.Result, error) {
	now := time.Now()
	stats, err := e.aggregator.ApplyActivityJoin(userID, act, now)
	if err != nil {
		metrics.DeltasRejected.WithLabelValues("activity").Inc()
		return domain.EmptyResult(), err
	}
	metrics.DeltasApplied.WithLabelValues("activity").Inc()
	return e.finish(userID, stats, e.base.Activity, "Joined activity", now)
}

// RecordLogin tracks a login day. Grants nothing — no shipped
// achievement reads the login fields.
func (e *Engine) RecordLogin(userID string) (domain.UserStats, error) {
	now := time.Now()
	stats, err := e.aggregator.ApplyLogin(userID, now)
	if err != nil {
		return domain.UserStats{}, err
	}
	metrics.DeltasApplied.WithLabelValues("login").Inc()
	return stats, nil
}

// Grant records a manual point grant (campaign bonuses, admin
// corrections). Stats are untouched, so no badge can newly qualify;
// level change is still detected.
func (e *Engine) Grant(userID string, amount int64, reason string) (domain.Result, error) {
	now := time.Now()
	before, err := e.ledger.Total(userID)
	if err != nil {
		return domain.EmptyResult(), err
	}
	total, err := e.ledger.Grant(userID, amount, reason, now)
	if err != nil {
		return domain.EmptyResult(), err
	}
	metrics.GrantsRecorded.Inc()
	metrics.PointsGranted.Add(float64(amount))

	res := domain.Result{
		PointsAwarded: amount,
		NewBadges:     []domain.AwardedBadge{},
		Total:         total,
		Events:        []domain.Event{domain.NewPointsGranted(amount, reason, now)},
	}
	e.detectLevelUp(&res, before, total, now)
	return res, nil
}

// finish runs the shared tail of every action pipeline: base grant,
// badge evaluation, level detection.
func (e *Engine) finish(userID string, stats domain.UserStats, basePoints int64, reason string, now time.Time) (domain.Result, error) {
	before, err := e.ledger.Total(userID)
	if err != nil {
		return domain.EmptyResult(), err
	}

	total, err := e.ledger.Grant(userID, basePoints, reason, now)
	if err != nil {
		return domain.EmptyResult(), err
	}
	metrics.GrantsRecorded.Inc()
	metrics.PointsGranted.Add(float64(basePoints))

	res := domain.Result{
		PointsAwarded: basePoints,
		NewBadges:     []domain.AwardedBadge{},
		Total:         total,
		Events:        []domain.Event{domain.NewPointsGranted(basePoints, reason, now)},
	}

	held, err := e.db.ListBadges(userID)
	if err != nil {
		return res, err
	}
	won, total, err := e.evaluator.Evaluate(userID, stats, held, now)
	if err != nil {
		return res, err
	}
	if len(won) > 0 {
		res.NewBadges = won
		res.Total = total
		res.Events = append(res.Events, domain.NewBadgesAwarded(won, now))
		for _, b := range won {
			res.PointsAwarded += b.Points
			metrics.BadgesAwarded.WithLabelValues(b.ID).Inc()
			metrics.PointsGranted.Add(float64(b.Points))
		}
	}

	e.detectLevelUp(&res, before, res.Total, now)
	return res, nil
}

// detectLevelUp appends exactly one level-up event when the total
// crossed into a higher level. Levels never decrease — no operation
// removes points.
func (e *Engine) detectLevelUp(res *domain.Result, before, after int64, now time.Time) {
	prev := ResolveLevel(e.ladder, before)
	cur := ResolveLevel(e.ladder, after)
	res.Level = cur
	if cur.Level > prev.Level {
		res.Events = append(res.Events, domain.NewLevelUp(cur, now))
		metrics.LevelUps.Inc()
	}
}

// ─── Read Side ──────────────────────────────────────────────────────────────

// Summary is the per-user dashboard view.
type Summary struct {
	UserID          string                `json:"user_id"`
	Points          int64                 `json:"points"`
	Level           domain.LevelDef       `json:"level"`
	NextLevel       *domain.LevelDef      `json:"next_level,omitempty"`
	ProgressPercent int                   `json:"progress_percent"`
	Badges          []domain.AwardedBadge `json:"badges"`
	Stats           domain.UserStats      `json:"stats"`
	CreatedAt       time.Time             `json:"created_at"`
}

// Summary returns the user's dashboard view, creating the record with
// zero defaults if the user was never seen before.
func (e *Engine) Summary(userID string) (Summary, error) {
	if userID == "" {
		return Summary{}, domain.ErrEmptyUserID
	}
	rec, err := e.db.GetRecord(userID)
	if err != nil {
		return Summary{}, err
	}
	if rec == nil {
		now := time.Now()
		if err := e.db.EnsureUser(userID, now); err != nil {
			return Summary{}, err
		}
		if rec, err = e.db.GetRecord(userID); err != nil {
			return Summary{}, err
		}
	}

	level := ResolveLevel(e.ladder, rec.Points)
	s := Summary{
		UserID:          rec.UserID,
		Points:          rec.Points,
		Level:           level,
		ProgressPercent: ProgressPercent(e.ladder, rec.Points, level),
		Badges:          rec.Badges,
		Stats:           rec.Stats,
		CreatedAt:       rec.CreatedAt,
	}
	if next, ok := NextLevel(e.ladder, level); ok {
		s.NextLevel = &next
	}
	if s.Badges == nil {
		s.Badges = []domain.AwardedBadge{}
	}
	return s, nil
}

// History returns the user's audit trail, newest first.
func (e *Engine) History(userID string, limit int) ([]domain.PointsEntry, error) {
	return e.ledger.History(userID, limit)
}

// Leaderboard returns the top users by points.
func (e *Engine) Leaderboard(limit int) ([]domain.LeaderboardEntry, error) {
	return e.db.Leaderboard(limit)
}

// Catalog returns the static achievement catalog.
func (e *Engine) Catalog() []domain.AchievementDef {
	return e.evaluator.Definitions()
}

// Achievement returns one catalog entry by badge id.
func (e *Engine) Achievement(id string) (domain.AchievementDef, error) {
	for _, def := range e.evaluator.Definitions() {
		if def.ID == id {
			return def, nil
		}
	}
	return domain.AchievementDef{}, domain.ErrBadgeUnknown
}

// Ladder returns the static level ladder.
func (e *Engine) Ladder() []domain.LevelDef {
	return e.ladder
}
