package risk

import (
	"time"

	"sentinelshield/internal/models"
)

// FlagThreshold is the score above which an event counts as flagged,
// both in the per-user counter and the daily stats.
const FlagThreshold = 30

// NextRepeatedTargeting returns the repeated-targeting counter after this
// submission. It increments only when the submission is aimed at the same
// user as the previous one, judged against the *old* last_target_id, and
// never for the "unknown" placeholder.
func NextRepeatedTargeting(prior *models.UserState, targetUserID string) int64 {
	if prior == nil {
		return 0
	}
	if targetUserID != models.TargetUnknown && prior.LastTargetID == targetUserID {
		return prior.RepeatedTargeting + 1
	}
	return prior.RepeatedTargeting
}

// UpdateUserState merges one scored event into the user's rolling record.
// prior may be nil for a first-time user. The average toxicity is
// maintained incrementally in float64; it is never recomputed from the
// event history.
func UpdateUserState(prior *models.UserState, toxicity float64, targetUserID string, riskScore int, riskLevel, platform string, now time.Time) models.UserState {
	toxicity = Clamp01(toxicity)

	next := models.UserState{}
	if prior != nil {
		next = *prior
	}

	next.TotalScanned++
	if riskScore > FlagThreshold {
		next.FlaggedCount++
	}
	next.AvgToxicity = (next.AvgToxicity*float64(next.TotalScanned-1) + toxicity) / float64(next.TotalScanned)
	next.RepeatedTargeting = NextRepeatedTargeting(prior, targetUserID)
	next.LastTargetID = targetUserID
	next.RiskScore = riskScore
	next.RiskLevel = riskLevel
	next.Platform = platform
	next.LastUpdated = now

	return next
}
