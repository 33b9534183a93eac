// Package sqlite provides SQLite-based persistent storage for the
// Smile-Share gamification engine.
// Uses WAL mode for concurrent reads and crash-safe writes. Every
// read-modify-write runs inside a transaction on the single-writer
// connection, so concurrent callers for the same user cannot lose an
// update.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/engage.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "engage.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Per-user gamification record. Points only ever increase —
		// no operation spends them.
		`CREATE TABLE IF NOT EXISTS users (
			user_id    TEXT PRIMARY KEY,
			points     INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_points ON users(points DESC)`,

		// Stats snapshot, mutated by the aggregator only.
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id           TEXT PRIMARY KEY,
			total_purchases   INTEGER NOT NULL DEFAULT 0,
			total_donations   INTEGER NOT NULL DEFAULT 0,
			donation_amount   INTEGER NOT NULL DEFAULT 0,
			activities_joined INTEGER NOT NULL DEFAULT 0,
			eco_products      INTEGER NOT NULL DEFAULT 0,
			login_days        INTEGER NOT NULL DEFAULT 0,
			last_login        INTEGER,
			profile_complete  BOOLEAN NOT NULL DEFAULT 0
		)`,

		// Deduplicated set of categories ever purchased from.
		`CREATE TABLE IF NOT EXISTS purchase_categories (
			user_id  TEXT NOT NULL,
			category TEXT NOT NULL,
			PRIMARY KEY (user_id, category)
		)`,

		// Support-interaction count per NGO.
		`CREATE TABLE IF NOT EXISTS ngo_support (
			user_id TEXT NOT NULL,
			ngo_id  TEXT NOT NULL,
			count   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, ngo_id)
		)`,

		// Awarded badges. UNIQUE(user_id, badge_id) is the
		// never-awarded-twice invariant; rowid order is award order.
		`CREATE TABLE IF NOT EXISTS badges (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     TEXT NOT NULL,
			badge_id    TEXT NOT NULL,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon        TEXT NOT NULL DEFAULT '',
			points      INTEGER NOT NULL,
			awarded_at  INTEGER NOT NULL,
			UNIQUE (user_id, badge_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_badges_user ON badges(user_id)`,

		// Append-only points audit trail. Keyed by rowid so two grants
		// in the same clock tick never overwrite each other; ts keeps
		// the ISO-8601 key the serialized record exposes.
		`CREATE TABLE IF NOT EXISTS points_history (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			ts      TEXT NOT NULL,
			points  INTEGER NOT NULL,
			reason  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user ON points_history(user_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
