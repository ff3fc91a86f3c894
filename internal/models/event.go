package models

import "time"

// ScoredEvent is one row of the append-only moderation log consumed by
// the dashboard. Immutable once created.
type ScoredEvent struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Platform      string    `db:"platform" json:"platform"`
	Content       string    `db:"content" json:"content"`
	ToxicityScore float64   `db:"toxicity_score" json:"toxicity_score"`
	RiskScore     int       `db:"risk_score" json:"risk_score"`
	RiskLevel     string    `db:"risk_level" json:"risk_level"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`
}
