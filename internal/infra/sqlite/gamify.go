package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/smile-share/engage/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// ─── Record Lifecycle ───────────────────────────────────────────────────────

// EnsureUser lazily creates the zero-default record for a user.
// A missing record is never an error — it becomes a fresh one.
func (d *DB) EnsureUser(userID string, now time.Time) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ensureUserTx(tx, userID, now); err != nil {
		return err
	}
	return tx.Commit()
}

func ensureUserTx(tx *sql.Tx, userID string, now time.Time) error {
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO users (user_id, points, created_at) VALUES (?, 0, ?)`,
		userID, now.Unix(),
	); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO user_stats (user_id) VALUES (?)`,
		userID,
	); err != nil {
		return fmt.Errorf("ensure stats: %w", err)
	}
	return nil
}

// GetRecord assembles the full gamification record for a user.
// Returns nil if the user has no record yet.
func (d *DB) GetRecord(userID string) (*domain.GamificationRecord, error) {
	var rec domain.GamificationRecord
	var createdAt int64
	err := d.db.QueryRow(
		`SELECT user_id, points, created_at FROM users WHERE user_id = ?`, userID,
	).Scan(&rec.UserID, &rec.Points, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(createdAt, 0)

	if rec.Stats, err = d.GetStats(userID); err != nil {
		return nil, err
	}
	if rec.Badges, err = d.ListBadges(userID); err != nil {
		return nil, err
	}
	if rec.History, err = d.PointsHistory(userID, 0); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ─── Stats ──────────────────────────────────────────────────────────────────

// GetStats returns the stats snapshot for a user (zero if absent).
func (d *DB) GetStats(userID string) (domain.UserStats, error) {
	return readStats(d.db, userID)
}

// ApplyStatsDelta merges one delta into the user's stats record and
// returns the merged snapshot. The whole merge is one transaction.
func (d *DB) ApplyStatsDelta(userID string, delta domain.StatsDelta, now time.Time) (domain.UserStats, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return domain.UserStats{}, err
	}
	defer tx.Rollback()

	if err := ensureUserTx(tx, userID, now); err != nil {
		return domain.UserStats{}, err
	}

	_, err = tx.Exec(
		`UPDATE user_stats SET
			total_purchases   = total_purchases + ?,
			total_donations   = total_donations + ?,
			donation_amount   = donation_amount + ?,
			activities_joined = activities_joined + ?,
			eco_products      = eco_products + ?
		 WHERE user_id = ?`,
		delta.Purchases, delta.Donations, delta.DonationAmount,
		delta.ActivitiesJoined, delta.EcoProducts, userID,
	)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("merge counters: %w", err)
	}

	for _, cat := range delta.Categories {
		if cat == "" {
			continue
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO purchase_categories (user_id, category) VALUES (?, ?)`,
			userID, cat,
		); err != nil {
			return domain.UserStats{}, fmt.Errorf("union category: %w", err)
		}
	}

	if delta.NGOID != "" {
		if _, err := tx.Exec(
			`INSERT INTO ngo_support (user_id, ngo_id, count) VALUES (?, ?, 1)
			 ON CONFLICT(user_id, ngo_id) DO UPDATE SET count = count + 1`,
			userID, delta.NGOID,
		); err != nil {
			return domain.UserStats{}, fmt.Errorf("ngo support: %w", err)
		}
	}

	if !delta.LoginAt.IsZero() {
		if err := recordLoginTx(tx, userID, delta.LoginAt); err != nil {
			return domain.UserStats{}, err
		}
	}

	stats, err := readStats(tx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.UserStats{}, err
	}
	return stats, nil
}

// recordLoginTx bumps login_days when the login falls on a new UTC day.
func recordLoginTx(tx *sql.Tx, userID string, at time.Time) error {
	var last sql.NullInt64
	if err := tx.QueryRow(
		`SELECT last_login FROM user_stats WHERE user_id = ?`, userID,
	).Scan(&last); err != nil {
		return fmt.Errorf("read last login: %w", err)
	}

	newDay := true
	if last.Valid {
		prev := time.Unix(last.Int64, 0).UTC()
		cur := at.UTC()
		newDay = prev.Year() != cur.Year() || prev.YearDay() != cur.YearDay()
	}

	if newDay {
		_, err := tx.Exec(
			`UPDATE user_stats SET login_days = login_days + 1, last_login = ? WHERE user_id = ?`,
			at.Unix(), userID,
		)
		return err
	}
	_, err := tx.Exec(
		`UPDATE user_stats SET last_login = ? WHERE user_id = ?`,
		at.Unix(), userID,
	)
	return err
}

func readStats(q querier, userID string) (domain.UserStats, error) {
	var s domain.UserStats
	var lastLogin sql.NullInt64
	err := q.QueryRow(
		`SELECT total_purchases, total_donations, donation_amount, activities_joined,
		        eco_products, login_days, last_login, profile_complete
		 FROM user_stats WHERE user_id = ?`, userID,
	).Scan(&s.TotalPurchases, &s.TotalDonations, &s.DonationAmount, &s.ActivitiesJoined,
		&s.EcoProducts, &s.LoginDays, &lastLogin, &s.ProfileComplete)
	if err == sql.ErrNoRows {
		return domain.UserStats{NGOSupport: map[string]int{}}, nil
	}
	if err != nil {
		return s, err
	}
	if lastLogin.Valid {
		s.LastLogin = time.Unix(lastLogin.Int64, 0)
	}

	rows, err := q.Query(
		`SELECT category FROM purchase_categories WHERE user_id = ? ORDER BY category`, userID,
	)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return s, err
		}
		s.Categories = append(s.Categories, cat)
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	s.NGOSupport = map[string]int{}
	nrows, err := q.Query(
		`SELECT ngo_id, count FROM ngo_support WHERE user_id = ?`, userID,
	)
	if err != nil {
		return s, err
	}
	defer nrows.Close()
	for nrows.Next() {
		var ngo string
		var n int
		if err := nrows.Scan(&ngo, &n); err != nil {
			return s, err
		}
		s.NGOSupport[ngo] = n
	}
	return s, nrows.Err()
}

// ─── Points ─────────────────────────────────────────────────────────────────

// UserPoints returns the current point total (0 if no record).
func (d *DB) UserPoints(userID string) (int64, error) {
	var points int64
	err := d.db.QueryRow(`SELECT points FROM users WHERE user_id = ?`, userID).Scan(&points)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return points, err
}

// GrantPoints adds a positive amount to the user's total and appends
// the audit entry, in one transaction. Returns the new total.
func (d *DB) GrantPoints(userID string, amount int64, reason string, at time.Time) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := ensureUserTx(tx, userID, at); err != nil {
		return 0, err
	}
	total, err := grantTx(tx, userID, amount, reason, at)
	if err != nil {
		return 0, err
	}
	return total, tx.Commit()
}

// grantTx is the single point-mutation path: total update plus audit
// append. Both the ledger and badge awards go through it.
func grantTx(tx *sql.Tx, userID string, amount int64, reason string, at time.Time) (int64, error) {
	if _, err := tx.Exec(
		`UPDATE users SET points = points + ? WHERE user_id = ?`, amount, userID,
	); err != nil {
		return 0, fmt.Errorf("update points: %w", err)
	}
	entry := domain.PointsEntry{Points: amount, Reason: reason, Timestamp: at}
	if _, err := tx.Exec(
		`INSERT INTO points_history (user_id, ts, points, reason) VALUES (?, ?, ?, ?)`,
		userID, entry.Key(), amount, reason,
	); err != nil {
		return 0, fmt.Errorf("append history: %w", err)
	}

	var total int64
	if err := tx.QueryRow(
		`SELECT points FROM users WHERE user_id = ?`, userID,
	).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// PointsHistory returns audit entries, newest first. limit <= 0 means
// no limit.
func (d *DB) PointsHistory(userID string, limit int) ([]domain.PointsEntry, error) {
	query := `SELECT ts, points, reason FROM points_history WHERE user_id = ? ORDER BY id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PointsEntry
	for rows.Next() {
		var e domain.PointsEntry
		var ts string
		if err := rows.Scan(&ts, &e.Points, &e.Reason); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse history timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// HasBadge reports whether the user already holds a badge.
func (d *DB) HasBadge(userID, badgeID string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM badges WHERE user_id = ? AND badge_id = ?`, userID, badgeID,
	).Scan(&count)
	return count > 0, err
}

// ListBadges returns the user's badges in award order.
func (d *DB) ListBadges(userID string) ([]domain.AwardedBadge, error) {
	rows, err := d.db.Query(
		`SELECT badge_id, name, description, icon, points, awarded_at
		 FROM badges WHERE user_id = ? ORDER BY id ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.AwardedBadge
	for rows.Next() {
		var b domain.AwardedBadge
		var awardedAt int64
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Points, &awardedAt); err != nil {
			return nil, err
		}
		b.AwardedAt = time.Unix(awardedAt, 0)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// AwardBadges persists newly-won badges and their point payouts as a
// single combined update: badge rows, point total, and one audit entry
// per badge commit or roll back together. Already-held badges are
// skipped (INSERT OR IGNORE), keeping the award idempotent even if two
// evaluations race. Returns the new point total.
func (d *DB) AwardBadges(userID string, badges []domain.AwardedBadge) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if len(badges) > 0 {
		if err := ensureUserTx(tx, userID, badges[0].AwardedAt); err != nil {
			return 0, err
		}
	}

	var total int64
	for _, b := range badges {
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO badges (user_id, badge_id, name, description, icon, points, awarded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, b.ID, b.Name, b.Description, b.Icon, b.Points, b.AwardedAt.Unix(),
		)
		if err != nil {
			return 0, fmt.Errorf("award badge %s: %w", b.ID, err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			continue // already held — never award twice
		}
		total, err = grantTx(tx, userID, b.Points, "Badge: "+b.Name, b.AwardedAt)
		if err != nil {
			return 0, err
		}
	}

	if total == 0 {
		if err := tx.QueryRow(
			`SELECT points FROM users WHERE user_id = ?`, userID,
		).Scan(&total); err != nil && err != sql.ErrNoRows {
			return 0, err
		}
	}
	return total, tx.Commit()
}

// ─── Leaderboard ────────────────────────────────────────────────────────────

// Leaderboard returns the top users by points with their badge counts.
func (d *DB) Leaderboard(limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.db.Query(
		`SELECT u.user_id, u.points, COUNT(b.id)
		 FROM users u LEFT JOIN badges b ON b.user_id = u.user_id
		 GROUP BY u.user_id
		 ORDER BY u.points DESC, u.user_id ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Points, &e.Badges); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UserCount returns how many users have a record.
func (d *DB) UserCount() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
