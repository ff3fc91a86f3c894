package models

import "time"

// MediaAnalysis is the stored verdict for one media submission.
// Probabilities are percentages in [0,100]; audio toxicity is [0,1].
type MediaAnalysis struct {
	ID                  string    `db:"id" json:"id"`
	MediaType           string    `db:"media_type" json:"media_type"`
	UserID              string    `db:"user_id" json:"user_id"`
	AuthenticityLabel   string    `db:"authenticity_label" json:"authenticity_label"`
	DeepfakeProbability float64   `db:"deepfake_probability" json:"deepfake_probability"`
	AbuseProbability    float64   `db:"abuse_probability" json:"abuse_probability"`
	AudioToxicity       float64   `db:"audio_toxicity" json:"audio_toxicity"`
	Transcript          string    `db:"transcript" json:"transcript"`
	Timestamp           time.Time `db:"timestamp" json:"timestamp"`
}
