package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Ledger errors
	ErrInvalidAmount = errors.New("point grant must be a positive amount")
	ErrEmptyUserID   = errors.New("user id must not be empty")
	ErrEmptyReason   = errors.New("point grant requires a reason")

	// Delta errors
	ErrEmptyPurchase   = errors.New("purchase delta has no items")
	ErrInvalidDonation = errors.New("donation amount must be positive")
	ErrEmptyActivity   = errors.New("activity delta requires an activity id")

	// Catalog errors
	ErrBadgeUnknown = errors.New("badge id not in the achievement catalog")

	// Notification errors
	ErrNoticeNotFound = errors.New("notification not found or already dismissed")
)
