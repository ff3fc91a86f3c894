package models

// Content types accepted by the moderation endpoint.
const (
	ContentTypeText       = "text"
	ContentTypeImage      = "image"
	ContentTypeAudio      = "audio"
	ContentTypeVideoFrame = "video-frame"
)

// TargetUnknown marks a submission that is not directed at anyone in
// particular. Repeated-targeting tracking ignores it.
const TargetUnknown = "unknown"

// Submission is a single piece of content sent in for scoring.
type Submission struct {
	Platform     string `json:"platform" binding:"required"`
	UserID       string `json:"user_id" binding:"required"`
	TargetUserID string `json:"target_user_id"`
	ContentType  string `json:"content_type" binding:"required"`
	Content      string `json:"content"`
	// Policy selects the scoring policy ("standard" or "simplified").
	// Empty means the configured default.
	Policy string `json:"policy"`
}
