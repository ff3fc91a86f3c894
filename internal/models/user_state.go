package models

import "time"

// UserState is the per-user rolling record stored in the 'user_states'
// table. It is merged on every scored submission for that user and never
// deleted by this service.
type UserState struct {
	UserID       string  `db:"user_id" json:"user_id"`
	TotalScanned int64   `db:"total_scanned" json:"total_scanned"`
	FlaggedCount int64   `db:"flagged_count" json:"flagged_count"`
	AvgToxicity  float64 `db:"avg_toxicity" json:"avg_toxicity"`
	RiskScore    int     `db:"risk_score" json:"risk_score"`
	RiskLevel    string  `db:"risk_level" json:"risk_level"`
	// WarningsIgnored is maintained by the dashboard's warning flow.
	// This service only reads it as a scoring input and carries it forward.
	WarningsIgnored   int64     `db:"warnings_ignored" json:"warnings_ignored"`
	LastTargetID      string    `db:"last_target_id" json:"last_target_id"`
	RepeatedTargeting int64     `db:"repeated_targeting" json:"repeated_targeting"`
	Platform          string    `db:"platform" json:"platform"`
	LastUpdated       time.Time `db:"last_updated" json:"last_updated"`
}
