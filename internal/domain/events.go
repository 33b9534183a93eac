package domain

import "time"

// ─── Domain Events ──────────────────────────────────────────────────────────
// The engine reports every state change as an event. Presentation code
// (the notification dispatcher) consumes events; the engine itself
// never touches UI timers.

// EventType categorizes engine events.
type EventType string

const (
	EventPointsGranted EventType = "points_granted"
	EventBadgesAwarded EventType = "badges_awarded"
	EventLevelUp       EventType = "level_up"
)

// Event is one observable state change produced by an engine call.
type Event struct {
	Type   EventType      `json:"type"`
	Points int64          `json:"points,omitempty"`
	Reason string         `json:"reason,omitempty"`
	Badges []AwardedBadge `json:"badges,omitempty"`
	Level  *LevelDef      `json:"level,omitempty"`
	At     time.Time      `json:"at"`
}

// NewPointsGranted builds a points-granted event.
func NewPointsGranted(points int64, reason string, at time.Time) Event {
	return Event{Type: EventPointsGranted, Points: points, Reason: reason, At: at}
}

// NewBadgesAwarded builds one batched event for all badges unlocked by
// a single evaluation.
func NewBadgesAwarded(badges []AwardedBadge, at time.Time) Event {
	return Event{Type: EventBadgesAwarded, Badges: badges, At: at}
}

// NewLevelUp builds a level-up event carrying the newly reached level.
func NewLevelUp(level LevelDef, at time.Time) Event {
	return Event{Type: EventLevelUp, Level: &level, At: at}
}

// Result is what an engine call returns to its caller. A zero Result
// is the graceful-degradation value handed back when gamification
// fails behind a successful primary action.
type Result struct {
	PointsAwarded int64          `json:"points_awarded"`
	NewBadges     []AwardedBadge `json:"new_badges"`
	Total         int64          `json:"total"`
	Level         LevelDef       `json:"level"`
	Events        []Event        `json:"-"`
}

// EmptyResult is the degraded response: no points, no badges.
func EmptyResult() Result {
	return Result{NewBadges: []AwardedBadge{}}
}
