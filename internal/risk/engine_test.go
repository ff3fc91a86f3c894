package risk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sentinelshield/internal/risk"
)

func TestComputeRisk_LevelBoundaries(t *testing.T) {
	tests := []struct {
		name           string
		toxicity       float64
		restrictedHits int64
		priorWarnings  int64
		repeatedTarget int64
		wantScore      int
		wantLevel      string
	}{
		{"score 30 is still Calm", 0.75, 0, 0, 0, 30, risk.LevelCalm},
		{"score 31 is Aggressive", 0.775, 0, 0, 0, 31, risk.LevelAggressive},
		{"score 60 is still Aggressive", 0.5, 1, 3, 0, 60, risk.LevelAggressive},
		{"score 61 is Escalating", 0.9, 1, 0, 0, 61, risk.LevelEscalating},
		{"zero everything", 0, 0, 0, 0, 0, risk.LevelCalm},
		{"capped at 100", 1.0, 4, 0, 0, 100, risk.LevelEscalating},
		{"repeated targeting weight", 0, 0, 0, 3, 45, risk.LevelAggressive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, level := risk.ComputeRisk(tt.toxicity, tt.restrictedHits, tt.priorWarnings, tt.repeatedTarget)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

// The documented rounding mode is math.Round's half-away-from-zero.
// Raw values just either side of 30.5 must land on opposite sides of the
// Calm/Aggressive boundary.
func TestComputeRisk_RoundingAtBoundary(t *testing.T) {
	score, level := risk.ComputeRisk(0.7624, 0, 0, 0) // raw ~= 30.496
	assert.Equal(t, 30, score)
	assert.Equal(t, risk.LevelCalm, level)

	score, level = risk.ComputeRisk(0.7626, 0, 0, 0) // raw ~= 30.504
	assert.Equal(t, 31, score)
	assert.Equal(t, risk.LevelAggressive, level)
}

func TestComputeRisk_ClampsToxicity(t *testing.T) {
	score, _ := risk.ComputeRisk(1.7, 0, 0, 0)
	assert.Equal(t, 40, score, "toxicity above 1 must clamp to 1 before weighting")

	score, level := risk.ComputeRisk(-0.4, 0, 0, 0)
	assert.Equal(t, 0, score)
	assert.Equal(t, risk.LevelCalm, level)
}

func TestComputeRisk_OutputAlwaysBounded(t *testing.T) {
	for _, tox := range []float64{0, 0.25, 0.5, 0.99, 1} {
		for _, hits := range []int64{0, 1, 5, 50} {
			score, _ := risk.ComputeRisk(tox, hits, 7, 9)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}

// The worked example from the service contract: toxicity 0.5 with one
// restricted hit and two prior warnings scores 55, Aggressive.
func TestComputeRisk_WorkedExample(t *testing.T) {
	score, level := risk.ComputeRisk(0.5, 1, 2, 0)
	assert.Equal(t, 55, score)
	assert.Equal(t, risk.LevelAggressive, level)
}

func TestComputeSimplified(t *testing.T) {
	tests := []struct {
		name      string
		toxic     float64
		wantScore int
		wantLevel string
	}{
		{"critical above 0.9", 0.95, 95, risk.LevelCritical},
		{"exactly 0.9 is not critical", 0.9, 90, risk.LevelAggressive},
		{"aggressive above 0.7", 0.8, 80, risk.LevelAggressive},
		{"exactly 0.7 is calm", 0.7, 70, risk.LevelCalm},
		{"calm low", 0.12, 12, risk.LevelCalm},
		{"zero", 0, 0, risk.LevelCalm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, level := risk.ComputeSimplified(tt.toxic)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestCountRestricted(t *testing.T) {
	words := []string{"hate", "moron"}

	assert.Equal(t, int64(1), risk.CountRestricted("I really HATE this", words),
		"matching is case-insensitive")
	assert.Equal(t, int64(1), risk.CountRestricted("hate hate hate", words),
		"presence count, not occurrence count")
	assert.Equal(t, int64(2), risk.CountRestricted("you moron, I hate you", words))
	assert.Equal(t, int64(0), risk.CountRestricted("have a nice day", words))
	assert.Equal(t, int64(0), risk.CountRestricted("", words))
	assert.Equal(t, int64(0), risk.CountRestricted("whatever", nil))
}

func TestCountRestricted_Idempotent(t *testing.T) {
	words := []string{"Hate", "idiot"}
	text := "hate mail from an idiot"

	first := risk.CountRestricted(text, words)
	second := risk.CountRestricted(text, words)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(2), first)
}
