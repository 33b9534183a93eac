package notify_test

import (
	"errors"
	"testing"
	"time"

	"github.com/smile-share/engage/internal/app/notify"
	"github.com/smile-share/engage/internal/domain"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestDispatcher_BadgeBatchIsOneNotice(t *testing.T) {
	d := notify.NewDispatcher()
	d.SetClock(fixedClock(t0))

	id := d.NotifyBadges([]domain.AwardedBadge{
		{ID: "first_purchase", Name: "First Purchase"},
		{ID: "collector", Name: "Collector"},
	})
	if id == "" {
		t.Fatal("expected a notice id")
	}

	pending := d.Pending()
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1 (badges share a notice)", len(pending))
	}
	if len(pending[0].Badges) != 2 {
		t.Errorf("notice badges = %d, want 2", len(pending[0].Badges))
	}
	if pending[0].Kind != notify.KindBadges {
		t.Errorf("kind = %q", pending[0].Kind)
	}
}

func TestDispatcher_EmptyBatchIgnored(t *testing.T) {
	d := notify.NewDispatcher()
	if id := d.NotifyBadges(nil); id != "" {
		t.Errorf("empty batch queued notice %q", id)
	}
	if len(d.Pending()) != 0 {
		t.Error("empty batch left a pending notice")
	}
}

func TestDispatcher_TTLExpiry(t *testing.T) {
	d := notify.NewDispatcherWithTTLs(notify.TTLs{
		Badges:  10 * time.Second,
		LevelUp: 5 * time.Second,
		Points:  3 * time.Second,
	})
	d.SetClock(fixedClock(t0))

	d.NotifyBadges([]domain.AwardedBadge{{ID: "volunteer"}})
	d.NotifyLevelUp(domain.LevelDef{Level: 2, Name: "Supporter"})
	d.NotifyPoints(25, "Donation completed")

	if got := len(d.Pending()); got != 3 {
		t.Fatalf("pending = %d, want 3", got)
	}

	// 4s in: the points notice (3s) is gone.
	d.SetClock(fixedClock(t0.Add(4 * time.Second)))
	pending := d.Pending()
	if len(pending) != 2 {
		t.Fatalf("pending at 4s = %d, want 2", len(pending))
	}
	for _, n := range pending {
		if n.Kind == notify.KindPoints {
			t.Error("points notice survived its TTL")
		}
	}

	// 6s in: level-up (5s) expired too.
	d.SetClock(fixedClock(t0.Add(6 * time.Second)))
	pending = d.Pending()
	if len(pending) != 1 || pending[0].Kind != notify.KindBadges {
		t.Errorf("pending at 6s = %+v, want just the badge notice", pending)
	}

	// 11s in: queue drained.
	d.SetClock(fixedClock(t0.Add(11 * time.Second)))
	if got := len(d.Pending()); got != 0 {
		t.Errorf("pending at 11s = %d, want 0", got)
	}
}

func TestDispatcher_Dismiss(t *testing.T) {
	d := notify.NewDispatcher()
	d.SetClock(fixedClock(t0))

	id := d.NotifyPoints(10, "Purchase completed")
	if err := d.Dismiss(id); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if len(d.Pending()) != 0 {
		t.Error("notice survived dismissal")
	}

	if err := d.Dismiss(id); !errors.Is(err, domain.ErrNoticeNotFound) {
		t.Errorf("second dismiss = %v, want ErrNoticeNotFound", err)
	}
	if err := d.Dismiss("no-such-id"); !errors.Is(err, domain.ErrNoticeNotFound) {
		t.Errorf("unknown id = %v, want ErrNoticeNotFound", err)
	}
}

func TestDispatcher_PublishEvents(t *testing.T) {
	d := notify.NewDispatcher()
	d.SetClock(fixedClock(t0))

	level := domain.LevelDef{Level: 2, Name: "Supporter"}
	d.Publish([]domain.Event{
		domain.NewPointsGranted(25, "Donation completed", t0),
		domain.NewBadgesAwarded([]domain.AwardedBadge{{ID: "donation_starter"}}, t0),
		domain.NewLevelUp(level, t0),
	})

	pending := d.Pending()
	if len(pending) != 3 {
		t.Fatalf("pending = %d, want 3", len(pending))
	}

	kinds := map[notify.Kind]bool{}
	for _, n := range pending {
		kinds[n.Kind] = true
	}
	for _, k := range []notify.Kind{notify.KindPoints, notify.KindBadges, notify.KindLevelUp} {
		if !kinds[k] {
			t.Errorf("missing %q notice", k)
		}
	}
}

func TestDispatcher_QueueOrderPreserved(t *testing.T) {
	d := notify.NewDispatcher()
	d.SetClock(fixedClock(t0))

	first := d.NotifyPoints(10, "a")
	second := d.NotifyPoints(20, "b")

	pending := d.Pending()
	if len(pending) != 2 {
		t.Fatalf("pending = %d", len(pending))
	}
	if pending[0].ID != first || pending[1].ID != second {
		t.Error("queue order not preserved")
	}
}
