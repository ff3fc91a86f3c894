// Package risk holds the pure scoring core: the risk formulas, the
// restricted-word counter, the per-user state merge and the media
// verdict. Nothing in this package performs I/O.
package risk

import (
	"math"
	"strings"
)

// Risk levels produced by the scoring policies.
const (
	LevelCalm       = "Calm"
	LevelAggressive = "Aggressive"
	LevelEscalating = "Escalating"
	LevelCritical   = "Critical"
)

// Named scoring policies. The two formulas come from different service
// revisions and are kept separate on purpose; their thresholds are
// dashboard-visible and must not drift into each other.
const (
	PolicyStandard   = "standard"
	PolicySimplified = "simplified"
)

// ComputeRisk combines the current event's toxicity and restricted-word
// hits with the user's history into a bounded risk score:
//
//	raw = toxicity*40 + restrictedHits*25 + priorWarnings*5 + repeatedTarget*15
//
// capped at 100. Rounding is half-away-from-zero (math.Round), which
// matters at the 30/60 level boundaries. Toxicity outside [0,1] is
// clamped before use.
func ComputeRisk(toxicity float64, restrictedHits, priorWarnings, repeatedTarget int64) (int, string) {
	toxicity = Clamp01(toxicity)
	raw := toxicity*40 +
		float64(restrictedHits)*25 +
		float64(priorWarnings)*5 +
		float64(repeatedTarget)*15
	score := int(math.Round(raw))
	if score > 100 {
		score = 100
	}
	return score, LevelForScore(score)
}

// LevelForScore maps a 0-100 score onto the standard-policy levels.
// Boundaries are inclusive on the low side: 30 is still Calm, 60 is
// still Aggressive.
func LevelForScore(score int) string {
	switch {
	case score <= 30:
		return LevelCalm
	case score <= 60:
		return LevelAggressive
	default:
		return LevelEscalating
	}
}

// ComputeSimplified is the single-signal policy from the second service
// revision: the toxic label score alone, scaled to 0-100, with its own
// threshold set.
func ComputeSimplified(toxic float64) (int, string) {
	toxic = Clamp01(toxic)
	score := int(math.Round(toxic * 100))
	switch {
	case toxic > 0.9:
		return score, LevelCritical
	case toxic > 0.7:
		return score, LevelAggressive
	default:
		return score, LevelCalm
	}
}

// CountRestricted counts how many of the listed words appear anywhere in
// text, case-insensitively. Each listed word counts at most once no
// matter how often it occurs.
func CountRestricted(text string, words []string) int64 {
	if text == "" || len(words) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	var count int64
	for _, word := range words {
		if word == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			count++
		}
	}
	return count
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
