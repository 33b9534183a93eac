// Package domain holds the pure types of the Smile-Share gamification
// engine: per-user records, stats snapshots, the achievement catalog
// shape, the level ladder, and the deltas that feed the aggregator.
package domain

import "time"

// ─── Stats Types ────────────────────────────────────────────────────────────

// UserStats is a snapshot of user state fed to achievement criteria.
// Mutated only by the stats aggregator; criteria read it, never write.
type UserStats struct {
	TotalPurchases   int            `json:"total_purchases"`
	TotalDonations   int            `json:"total_donations"`
	DonationAmount   int64          `json:"donation_amount"`
	Categories       []string       `json:"categories"`
	ActivitiesJoined int            `json:"activities_joined"`
	NGOSupport       map[string]int `json:"ngo_support"`
	EcoProducts      int            `json:"eco_products"`
	LoginDays        int            `json:"login_days"`
	LastLogin        time.Time      `json:"last_login"`
	ProfileComplete  bool           `json:"profile_complete"`
}

// CategoryCount returns the number of distinct purchase categories.
func (s UserStats) CategoryCount() int {
	return len(s.Categories)
}

// MaxNGOSupport returns the highest support count across all NGOs.
func (s UserStats) MaxNGOSupport() int {
	max := 0
	for _, n := range s.NGOSupport {
		if n > max {
			max = n
		}
	}
	return max
}

// StatsDelta is the field-level merge applied by one user action.
// The aggregator translates each delta shape (purchase, donation,
// activity join, login) into one of these.
type StatsDelta struct {
	Purchases        int
	Donations        int
	DonationAmount   int64
	ActivitiesJoined int
	EcoProducts      int
	Categories       []string
	NGOID            string
	LoginAt          time.Time // zero = not a login delta
}

// ─── Action Deltas ──────────────────────────────────────────────────────────

// PurchaseItem is one line item of a purchase delta.
type PurchaseItem struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Eco      bool   `json:"eco"`
}

// PurchaseDelta records one completed purchase.
type PurchaseDelta struct {
	Items       []PurchaseItem `json:"items"`
	NGOID       string         `json:"ngo_id"`
	TotalAmount int64          `json:"total_amount"`
}

// DonationDelta records one completed donation.
type DonationDelta struct {
	Amount     int64  `json:"amount"`
	CampaignID string `json:"campaign_id"`
	NGOID      string `json:"ngo_id"`
}

// ActivityDelta records one activity join.
type ActivityDelta struct {
	ActivityID string `json:"activity_id"`
	NGOID      string `json:"ngo_id"`
}

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementDef defines a single badge's requirements.
// Criteria must be pure and monotonic over increasing stats — once a
// stats trajectory satisfies it, every later snapshot does too. That
// is what makes "badges are never revoked" hold.
type AchievementDef struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Icon        string               `json:"icon"`
	Points      int64                `json:"points"`
	Criteria    func(UserStats) bool `json:"-"`
}

// AwardedBadge records a badge held by a user. A badge id appears at
// most once per user; insertion order is award order.
type AwardedBadge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Points      int64     `json:"points"`
	AwardedAt   time.Time `json:"date_awarded"`
}

// ─── Level Types ────────────────────────────────────────────────────────────

// LevelDef maps a point threshold to a named level. The ladder is
// sorted ascending by PointsRequired and its first entry requires 0.
type LevelDef struct {
	Level          int    `json:"level"`
	Name           string `json:"name"`
	PointsRequired int64  `json:"points_required"`
}

// ─── Ledger Types ───────────────────────────────────────────────────────────

// PointsEntry is one append-only audit record of a point grant.
type PointsEntry struct {
	Points    int64     `json:"points"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Key returns the ISO-8601 history key the original record schema
// exposes for this entry.
func (e PointsEntry) Key() string {
	return e.Timestamp.UTC().Format(time.RFC3339Nano)
}

// HistoryMap renders entries in the serialized pointsHistory shape
// (ISO timestamp → entry). Later entries win on a same-nanosecond key,
// but storage itself is append-only and keeps both rows.
func HistoryMap(entries []PointsEntry) map[string]PointsEntry {
	m := make(map[string]PointsEntry, len(entries))
	for _, e := range entries {
		m[e.Key()] = e
	}
	return m
}

// ─── Record ─────────────────────────────────────────────────────────────────

// GamificationRecord is the full per-user state. Created lazily with
// zero defaults on first observation of a user; never deleted here.
type GamificationRecord struct {
	UserID    string         `json:"user_id"`
	Points    int64          `json:"points"`
	Badges    []AwardedBadge `json:"badges"`
	Stats     UserStats      `json:"stats"`
	History   []PointsEntry  `json:"points_history"`
	CreatedAt time.Time      `json:"created_at"`
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
	Badges int    `json:"badges"`
}
