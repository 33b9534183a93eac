package gamify

import "github.com/smile-share/engage/internal/domain"

// ─── Level Resolver ─────────────────────────────────────────────────────────

// ResolveLevel returns the highest ladder entry whose threshold is at
// or below the point total. Total function: the ladder's first entry
// requires 0 points, so any total >= 0 resolves.
func ResolveLevel(ladder []domain.LevelDef, points int64) domain.LevelDef {
	current := ladder[0]
	for _, l := range ladder {
		if l.PointsRequired <= points {
			current = l
		}
	}
	return current
}

// NextLevel returns the ladder entry after the current level, or
// false if the user is at the top.
func NextLevel(ladder []domain.LevelDef, current domain.LevelDef) (domain.LevelDef, bool) {
	for i, l := range ladder {
		if l.Level == current.Level && i+1 < len(ladder) {
			return ladder[i+1], true
		}
	}
	return domain.LevelDef{}, false
}

// ProgressPercent returns progress toward the next level as an integer
// in [0, 100]. 100 at the top level, and on a misconfigured ladder
// with equal adjacent thresholds (no division by zero).
func ProgressPercent(ladder []domain.LevelDef, points int64, current domain.LevelDef) int {
	next, ok := NextLevel(ladder, current)
	if !ok {
		return 100
	}
	span := next.PointsRequired - current.PointsRequired
	if span <= 0 {
		return 100
	}
	pct := int((points - current.PointsRequired) * 100 / span)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
