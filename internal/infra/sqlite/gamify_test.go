package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/smile-share/engage/internal/domain"
	"github.com/smile-share/engage/internal/infra/sqlite"
)

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// ─── Record Lifecycle ───────────────────────────────────────────────────────

func TestEnsureUser_Idempotent(t *testing.T) {
	db := testDB(t)

	if err := db.EnsureUser("alice", testTime); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := db.EnsureUser("alice", testTime.Add(time.Hour)); err != nil {
		t.Fatalf("re-ensure: %v", err)
	}

	count, err := db.UserCount()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("user count = %d, want 1", count)
	}

	rec, err := db.GetRecord("alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("record missing after ensure")
	}
	if rec.Points != 0 {
		t.Errorf("fresh record points = %d, want 0", rec.Points)
	}
	// Second ensure must not reset created_at.
	if !rec.CreatedAt.Equal(testTime) {
		t.Errorf("created_at = %v, want %v", rec.CreatedAt, testTime)
	}
}

func TestGetRecord_MissingUser(t *testing.T) {
	db := testDB(t)

	rec, err := db.GetRecord("nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Errorf("want nil record for unknown user, got %+v", rec)
	}
}

// ─── Stats Merging ──────────────────────────────────────────────────────────

func TestApplyStatsDelta_Counters(t *testing.T) {
	db := testDB(t)

	stats, err := db.ApplyStatsDelta("alice", domain.StatsDelta{
		Purchases:      1,
		EcoProducts:    2,
		Categories:     []string{"books", "food"},
		NGOID:          "ngo1",
		DonationAmount: 0,
	}, testTime)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if stats.TotalPurchases != 1 {
		t.Errorf("purchases = %d, want 1", stats.TotalPurchases)
	}
	if stats.EcoProducts != 2 {
		t.Errorf("eco = %d, want 2", stats.EcoProducts)
	}
	if stats.CategoryCount() != 2 {
		t.Errorf("categories = %v, want 2", stats.Categories)
	}
	if stats.NGOSupport["ngo1"] != 1 {
		t.Errorf("ngo support = %v, want ngo1:1", stats.NGOSupport)
	}
}

func TestApplyStatsDelta_CategoryUnion(t *testing.T) {
	db := testDB(t)

	delta := domain.StatsDelta{Purchases: 1, Categories: []string{"books", "books", "food"}}
	if _, err := db.ApplyStatsDelta("alice", delta, testTime); err != nil {
		t.Fatalf("apply 1: %v", err)
	}
	stats, err := db.ApplyStatsDelta("alice", delta, testTime)
	if err != nil {
		t.Fatalf("apply 2: %v", err)
	}

	// Two applications, duplicate items — still two distinct categories.
	if stats.CategoryCount() != 2 {
		t.Errorf("categories = %v, want exactly [books food]", stats.Categories)
	}
	if stats.TotalPurchases != 2 {
		t.Errorf("purchases = %d, want 2", stats.TotalPurchases)
	}
}

func TestApplyStatsDelta_NGOSupportAccumulates(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 3; i++ {
		if _, err := db.ApplyStatsDelta("alice", domain.StatsDelta{Donations: 1, NGOID: "ngo1"}, testTime); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}
	stats, err := db.ApplyStatsDelta("alice", domain.StatsDelta{Donations: 1, NGOID: "ngo2"}, testTime)
	if err != nil {
		t.Fatalf("apply ngo2: %v", err)
	}

	if stats.NGOSupport["ngo1"] != 3 || stats.NGOSupport["ngo2"] != 1 {
		t.Errorf("ngo support = %v, want ngo1:3 ngo2:1", stats.NGOSupport)
	}
	if stats.MaxNGOSupport() != 3 {
		t.Errorf("max support = %d, want 3", stats.MaxNGOSupport())
	}
}

func TestGetStats_UnknownUserIsZero(t *testing.T) {
	db := testDB(t)

	stats, err := db.GetStats("nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stats.TotalPurchases != 0 || stats.CategoryCount() != 0 {
		t.Errorf("zero stats expected, got %+v", stats)
	}
	if stats.NGOSupport == nil {
		t.Error("NGOSupport map should be non-nil")
	}
}

// ─── Points ─────────────────────────────────────────────────────────────────

func TestGrantPoints_TotalAndAudit(t *testing.T) {
	db := testDB(t)

	total, err := db.GrantPoints("alice", 50, "test grant", testTime)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if total != 50 {
		t.Errorf("total = %d, want 50", total)
	}

	total, err = db.GrantPoints("alice", 25, "second", testTime.Add(time.Second))
	if err != nil {
		t.Fatalf("grant 2: %v", err)
	}
	if total != 75 {
		t.Errorf("total = %d, want 75", total)
	}

	entries, err := db.PointsHistory("alice", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Reason != "second" {
		t.Errorf("newest entry = %q, want second", entries[0].Reason)
	}
	if !entries[0].Timestamp.Equal(testTime.Add(time.Second)) {
		t.Errorf("timestamp roundtrip = %v", entries[0].Timestamp)
	}
}

func TestGrantPoints_SameInstantKeepsBothEntries(t *testing.T) {
	db := testDB(t)

	// Two grants in the same clock tick must both survive in the audit
	// trail even though their ISO keys collide.
	if _, err := db.GrantPoints("alice", 10, "one", testTime); err != nil {
		t.Fatalf("grant 1: %v", err)
	}
	total, err := db.GrantPoints("alice", 20, "two", testTime)
	if err != nil {
		t.Fatalf("grant 2: %v", err)
	}
	if total != 30 {
		t.Errorf("total = %d, want 30", total)
	}

	entries, err := db.PointsHistory("alice", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2 (append-only)", len(entries))
	}
}

func TestPointsHistory_CorruptTimestampSurfaces(t *testing.T) {
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Plant a row the store would never write itself.
	raw, err := sql.Open("sqlite", filepath.Join(dir, "engage.db"))
	if err != nil {
		t.Fatalf("open raw: %v", err)
	}
	if _, err := raw.Exec(
		`INSERT INTO points_history (user_id, ts, points, reason) VALUES ('alice', 'not-a-time', 5, 'x')`,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}
	raw.Close()

	if _, err := db.PointsHistory("alice", 0); err == nil {
		t.Error("corrupt timestamp should surface as an error, not a zero time")
	}
}

// ─── Badges ─────────────────────────────────────────────────────────────────

func TestAwardBadges_CombinedUpdate(t *testing.T) {
	db := testDB(t)

	total, err := db.AwardBadges("alice", []domain.AwardedBadge{
		{ID: "first_purchase", Name: "First Purchase", Points: 50, AwardedAt: testTime},
		{ID: "collector", Name: "Collector", Points: 75, AwardedAt: testTime},
	})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if total != 125 {
		t.Errorf("total = %d, want 125", total)
	}

	badges, err := db.ListBadges("alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(badges) != 2 {
		t.Fatalf("badges = %d, want 2", len(badges))
	}
	if badges[0].ID != "first_purchase" || badges[1].ID != "collector" {
		t.Errorf("award order lost: %v", badges)
	}

	// Each payout has its own audit entry.
	entries, err := db.PointsHistory("alice", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("audit entries = %d, want 2", len(entries))
	}
	if entries[0].Reason != "Badge: Collector" {
		t.Errorf("newest reason = %q", entries[0].Reason)
	}
}

func TestAwardBadges_HeldBadgeSkipped(t *testing.T) {
	db := testDB(t)

	badge := []domain.AwardedBadge{
		{ID: "volunteer", Name: "Volunteer", Points: 50, AwardedAt: testTime},
	}
	if _, err := db.AwardBadges("alice", badge); err != nil {
		t.Fatalf("award 1: %v", err)
	}
	total, err := db.AwardBadges("alice", badge)
	if err != nil {
		t.Fatalf("award 2: %v", err)
	}

	// No double payout, no duplicate row.
	if total != 50 {
		t.Errorf("total after re-award = %d, want 50", total)
	}
	badges, _ := db.ListBadges("alice")
	if len(badges) != 1 {
		t.Errorf("badges = %d, want 1", len(badges))
	}
	has, err := db.HasBadge("alice", "volunteer")
	if err != nil || !has {
		t.Errorf("HasBadge = %v, %v", has, err)
	}
}

// ─── Leaderboard ────────────────────────────────────────────────────────────

func TestLeaderboard_OrderAndTies(t *testing.T) {
	db := testDB(t)

	db.GrantPoints("zoe", 100, "seed", testTime)
	db.GrantPoints("amy", 100, "seed", testTime)
	db.GrantPoints("max", 200, "seed", testTime)
	db.AwardBadges("max", []domain.AwardedBadge{
		{ID: "volunteer", Name: "Volunteer", Points: 50, AwardedAt: testTime},
	})

	board, err := db.Leaderboard(10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("board = %d entries, want 3", len(board))
	}
	if board[0].UserID != "max" || board[0].Points != 250 || board[0].Badges != 1 {
		t.Errorf("rank 1 = %+v", board[0])
	}
	// Ties break by user id, ascending.
	if board[1].UserID != "amy" || board[2].UserID != "zoe" {
		t.Errorf("tie order = %s, %s, want amy then zoe", board[1].UserID, board[2].UserID)
	}
	for i, e := range board {
		if e.Rank != i+1 {
			t.Errorf("rank at %d = %d", i, e.Rank)
		}
	}
}
