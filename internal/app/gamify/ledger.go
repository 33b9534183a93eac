package gamify

import (
	"time"

	"github.com/smile-share/engage/internal/domain"
	"github.com/smile-share/engage/internal/infra/sqlite"
)

// Ledger is the single entry point for point grants. Every mutation
// appends an audit entry and recomputes the total in one transaction;
// there is no spending path, so totals are monotonic.
type Ledger struct {
	db *sqlite.DB
}

// NewLedger creates a points ledger.
func NewLedger(db *sqlite.DB) *Ledger {
	return &Ledger{db: db}
}

// Grant adds points to a user with a reason. Rejects non-positive
// amounts before any write. Returns the new total.
func (l *Ledger) Grant(userID string, amount int64, reason string, at time.Time) (int64, error) {
	if userID == "" {
		return 0, domain.ErrEmptyUserID
	}
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if reason == "" {
		return 0, domain.ErrEmptyReason
	}
	return l.db.GrantPoints(userID, amount, reason, at)
}

// Total returns the user's current point total.
func (l *Ledger) Total(userID string) (int64, error) {
	return l.db.UserPoints(userID)
}

// History returns recent audit entries, newest first.
func (l *Ledger) History(userID string, limit int) ([]domain.PointsEntry, error) {
	return l.db.PointsHistory(userID, limit)
}
