package gamify

import "github.com/smile-share/engage/internal/domain"

// ─── Achievement Catalog ────────────────────────────────────────────────────
// Badge ids and the level names/thresholds below are a public contract
// consumed by display code — renaming any of them needs a migration.

// AllAchievements returns the full badge catalog in declaration order.
// Evaluation order (and therefore award order on ties) follows this
// slice. Every criteria function is pure and monotonic over
// increasing stats, so a badge once earned stays earned.
func AllAchievements() []domain.AchievementDef {
	return []domain.AchievementDef{
		{
			ID: "first_purchase", Name: "First Purchase",
			Description: "Bought your first item from an NGO store.",
			Icon:        "🛍️", Points: 50,
			Criteria: func(s domain.UserStats) bool { return s.TotalPurchases >= 1 },
		},
		{
			ID: "donation_starter", Name: "Donation Starter",
			Description: "Made your first donation.",
			Icon:        "💝", Points: 50,
			Criteria: func(s domain.UserStats) bool { return s.TotalDonations >= 1 },
		},
		{
			ID: "generous_donor", Name: "Generous Donor",
			Description: "Donated 1000 or more in total.",
			Icon:        "💖", Points: 100,
			Criteria: func(s domain.UserStats) bool { return s.DonationAmount >= 1000 },
		},
		{
			ID: "collector", Name: "Collector",
			Description: "Purchased from 5 different categories.",
			Icon:        "🧺", Points: 75,
			Criteria: func(s domain.UserStats) bool { return s.CategoryCount() >= 5 },
		},
		{
			ID: "volunteer", Name: "Volunteer",
			Description: "Joined your first NGO activity.",
			Icon:        "🤝", Points: 50,
			Criteria: func(s domain.UserStats) bool { return s.ActivitiesJoined >= 1 },
		},
		{
			ID: "loyal_supporter", Name: "Loyal Supporter",
			Description: "Supported the same NGO 3 times.",
			Icon:        "🏅", Points: 100,
			Criteria: func(s domain.UserStats) bool { return s.MaxNGOSupport() >= 3 },
		},
		{
			ID: "sustainability_champion", Name: "Sustainability Champion",
			Description: "Purchased 5 eco-friendly products.",
			Icon:        "🌱", Points: 150,
			Criteria: func(s domain.UserStats) bool { return s.EcoProducts >= 5 },
		},
	}
}

// DefaultLadder returns the level ladder, ascending by threshold.
// The zeroth entry requires 0 points, so every total resolves.
func DefaultLadder() []domain.LevelDef {
	return []domain.LevelDef{
		{Level: 1, Name: "Beginner", PointsRequired: 0},
		{Level: 2, Name: "Supporter", PointsRequired: 100},
		{Level: 3, Name: "Contributor", PointsRequired: 250},
		{Level: 4, Name: "Champion", PointsRequired: 500},
		{Level: 5, Name: "Hero", PointsRequired: 1000},
		{Level: 6, Name: "Legend", PointsRequired: 2000},
	}
}
