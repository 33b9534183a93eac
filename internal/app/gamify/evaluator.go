package gamify

import (
	"time"

	"github.com/smile-share/engage/internal/domain"
	"github.com/smile-share/engage/internal/infra/sqlite"
)

// Evaluator checks an updated stats snapshot against the static
// achievement catalog and awards newly-qualifying badges.
type Evaluator struct {
	db          *sqlite.DB
	definitions []domain.AchievementDef
}

// NewEvaluator creates an evaluator over the full catalog.
func NewEvaluator(db *sqlite.DB) *Evaluator {
	return &Evaluator{db: db, definitions: AllAchievements()}
}

// Evaluate finds every catalog badge the user newly qualifies for,
// persists badges plus their point payouts as one combined update,
// and returns the new badges with the resulting point total.
// An empty result is not an error — most actions unlock nothing.
// Held badges are skipped, so re-evaluating the same snapshot is
// idempotent.
func (e *Evaluator) Evaluate(userID string, stats domain.UserStats, held []domain.AwardedBadge, now time.Time) ([]domain.AwardedBadge, int64, error) {
	heldIDs := make(map[string]bool, len(held))
	for _, b := range held {
		heldIDs[b.ID] = true
	}

	var won []domain.AwardedBadge
	for _, def := range e.definitions {
		if heldIDs[def.ID] {
			continue
		}
		if def.Criteria != nil && def.Criteria(stats) {
			won = append(won, domain.AwardedBadge{
				ID:          def.ID,
				Name:        def.Name,
				Description: def.Description,
				Icon:        def.Icon,
				Points:      def.Points,
				AwardedAt:   now,
			})
		}
	}

	if len(won) == 0 {
		total, err := e.db.UserPoints(userID)
		return nil, total, err
	}

	total, err := e.db.AwardBadges(userID, won)
	if err != nil {
		return nil, 0, err
	}
	return won, total, nil
}

// Definitions returns the catalog (for display).
func (e *Evaluator) Definitions() []domain.AchievementDef {
	return e.definitions
}
