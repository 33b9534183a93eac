package gamify

import (
	"time"

	"github.com/smile-share/engage/internal/domain"
	"github.com/smile-share/engage/internal/infra/sqlite"
)

// Aggregator merges incremental action deltas into the per-user
// running stats record. It is the only writer of stats; point grants
// are the ledger's job.
type Aggregator struct {
	db *sqlite.DB
}

// NewAggregator creates a stats aggregator.
func NewAggregator(db *sqlite.DB) *Aggregator {
	return &Aggregator{db: db}
}

// ApplyPurchase merges one purchase: purchase counter, category union,
// eco-product count, and NGO support. Returns the merged snapshot.
func (a *Aggregator) ApplyPurchase(userID string, p domain.PurchaseDelta, now time.Time) (domain.UserStats, error) {
	if userID == "" {
		return domain.UserStats{}, domain.ErrEmptyUserID
	}
	if len(p.Items) == 0 {
		return domain.UserStats{}, domain.ErrEmptyPurchase
	}

	delta := domain.StatsDelta{Purchases: 1, NGOID: p.NGOID}
	for _, item := range p.Items {
		if item.Category != "" {
			delta.Categories = append(delta.Categories, item.Category)
		}
		if item.Eco {
			delta.EcoProducts++
		}
	}
	return a.db.ApplyStatsDelta(userID, delta, now)
}

// ApplyDonation merges one donation: donation counter, accumulated
// amount, and NGO support.
func (a *Aggregator) ApplyDonation(userID string, d domain.DonationDelta, now time.Time) (domain.UserStats, error) {
	if userID == "" {
		return domain.UserStats{}, domain.ErrEmptyUserID
	}
	if d.Amount <= 0 {
		return domain.UserStats{}, domain.ErrInvalidDonation
	}

	delta := domain.StatsDelta{
		Donations:      1,
		DonationAmount: d.Amount,
		NGOID:          d.NGOID,
	}
	return a.db.ApplyStatsDelta(userID, delta, now)
}

// ApplyActivityJoin merges one activity join: join counter and NGO
// support.
func (a *Aggregator) ApplyActivityJoin(userID string, act domain.ActivityDelta, now time.Time) (domain.UserStats, error) {
	if userID == "" {
		return domain.UserStats{}, domain.ErrEmptyUserID
	}
	if act.ActivityID == "" {
		return domain.UserStats{}, domain.ErrEmptyActivity
	}

	delta := domain.StatsDelta{ActivitiesJoined: 1, NGOID: act.NGOID}
	return a.db.ApplyStatsDelta(userID, delta, now)
}

// ApplyLogin records a login day. Same-day logins are idempotent on
// login_days. No shipped achievement reads these fields.
func (a *Aggregator) ApplyLogin(userID string, at time.Time) (domain.UserStats, error) {
	if userID == "" {
		return domain.UserStats{}, domain.ErrEmptyUserID
	}
	return a.db.ApplyStatsDelta(userID, domain.StatsDelta{LoginAt: at}, at)
}
