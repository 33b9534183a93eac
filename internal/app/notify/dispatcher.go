// Package notify implements the ephemeral notification queue.
// Notices are process-local, best-effort UI feedback with per-kind
// auto-dismiss timeouts; nothing is persisted and loss on restart is
// not a correctness concern.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smile-share/engage/internal/domain"
	"github.com/smile-share/engage/internal/infra/metrics"
)

// Kind categorizes notices.
type Kind string

const (
	KindBadges  Kind = "badges"
	KindLevelUp Kind = "level_up"
	KindPoints  Kind = "points"
)

// Notice is one queued UI signal. All badges awarded by a single
// evaluation share one notice (a carousel, not a stack).
type Notice struct {
	ID        string                `json:"id"`
	Kind      Kind                  `json:"kind"`
	Badges    []domain.AwardedBadge `json:"badges,omitempty"`
	Level     *domain.LevelDef      `json:"level,omitempty"`
	Points    int64                 `json:"points,omitempty"`
	Reason    string                `json:"reason,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

// TTLs are the per-kind auto-dismiss timeouts.
type TTLs struct {
	Badges  time.Duration
	LevelUp time.Duration
	Points  time.Duration
}

// DefaultTTLs returns the shipped timeouts: badges linger longest,
// points notices vanish fastest.
func DefaultTTLs() TTLs {
	return TTLs{
		Badges:  10 * time.Second,
		LevelUp: 5 * time.Second,
		Points:  3 * time.Second,
	}
}

// Dispatcher holds the transient display queue. Safe for concurrent
// use; expired notices are pruned lazily on read.
type Dispatcher struct {
	mu      sync.Mutex
	ttls    TTLs
	now     func() time.Time
	notices []Notice
}

// NewDispatcher creates a dispatcher with default timeouts.
func NewDispatcher() *Dispatcher {
	return NewDispatcherWithTTLs(DefaultTTLs())
}

// NewDispatcherWithTTLs creates a dispatcher with custom timeouts.
func NewDispatcherWithTTLs(ttls TTLs) *Dispatcher {
	if ttls.Badges <= 0 {
		ttls.Badges = DefaultTTLs().Badges
	}
	if ttls.LevelUp <= 0 {
		ttls.LevelUp = DefaultTTLs().LevelUp
	}
	if ttls.Points <= 0 {
		ttls.Points = DefaultTTLs().Points
	}
	return &Dispatcher{ttls: ttls, now: time.Now}
}

// SetClock overrides the clock. Test hook.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
}

// ─── Fire-and-Forget Calls ──────────────────────────────────────────────────

// NotifyBadges queues one notice for all badges won by a single
// evaluation. Returns the notice id ("" for an empty batch).
func (d *Dispatcher) NotifyBadges(badges []domain.AwardedBadge) string {
	if len(badges) == 0 {
		return ""
	}
	return d.push(Notice{Kind: KindBadges, Badges: badges}, d.ttls.Badges)
}

// NotifyLevelUp queues a level-up notice.
func (d *Dispatcher) NotifyLevelUp(level domain.LevelDef) string {
	return d.push(Notice{Kind: KindLevelUp, Level: &level}, d.ttls.LevelUp)
}

// NotifyPoints queues a "+N points" notice.
func (d *Dispatcher) NotifyPoints(amount int64, reason string) string {
	return d.push(Notice{Kind: KindPoints, Points: amount, Reason: reason}, d.ttls.Points)
}

// Publish consumes engine events and queues the matching notices.
func (d *Dispatcher) Publish(events []domain.Event) {
	for _, ev := range events {
		switch ev.Type {
		case domain.EventPointsGranted:
			d.NotifyPoints(ev.Points, ev.Reason)
		case domain.EventBadgesAwarded:
			d.NotifyBadges(ev.Badges)
		case domain.EventLevelUp:
			if ev.Level != nil {
				d.NotifyLevelUp(*ev.Level)
			}
		}
	}
}

func (d *Dispatcher) push(n Notice, ttl time.Duration) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	n.ID = uuid.NewString()
	n.CreatedAt = d.now()
	n.ExpiresAt = n.CreatedAt.Add(ttl)
	d.notices = append(d.notices, n)
	metrics.NoticesQueued.WithLabelValues(string(n.Kind)).Inc()
	return n.ID
}

// ─── Queue Reads ────────────────────────────────────────────────────────────

// Pending returns live notices in queue order, pruning expired ones.
func (d *Dispatcher) Pending() []Notice {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.prune()
	out := make([]Notice, len(d.notices))
	copy(out, d.notices)
	return out
}

// Dismiss removes a notice before its timeout.
func (d *Dispatcher) Dismiss(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.prune()
	for i, n := range d.notices {
		if n.ID == id {
			d.notices = append(d.notices[:i], d.notices[i+1:]...)
			return nil
		}
	}
	return domain.ErrNoticeNotFound
}

// prune drops expired notices. Caller holds the lock.
func (d *Dispatcher) prune() {
	now := d.now()
	live := d.notices[:0]
	for _, n := range d.notices {
		if n.ExpiresAt.After(now) {
			live = append(live, n)
		}
	}
	d.notices = live
}
