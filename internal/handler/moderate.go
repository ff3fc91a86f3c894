package handler

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sentinelshield/internal/models"
	"sentinelshield/internal/risk"
	"sentinelshield/internal/service"
)

// ModerationService is the slice of the moderation service the HTTP
// layer needs.
type ModerationService interface {
	ModerateText(ctx context.Context, sub models.Submission) (*service.TextResult, error)
	AnalyzeMedia(ctx context.Context, req service.MediaRequest) (*models.MediaAnalysis, error)
}

type ModerateHandler interface {
	Moderate(c *gin.Context)
}

type moderateHandler struct {
	svc    ModerationService
	logger *zap.Logger
}

func NewModerateHandler(svc ModerationService, logger *zap.Logger) ModerateHandler {
	return &moderateHandler{svc: svc, logger: logger}
}

// StandardModerationResponse is the response shape of the standard
// scoring policy.
type StandardModerationResponse struct {
	Status    string  `json:"status"`
	RiskScore int     `json:"risk_score"`
	RiskLevel string  `json:"risk_level"`
	Toxicity  float64 `json:"toxicity"`
}

// SimplifiedModerationResponse is the response shape of the simplified
// scoring policy. Kept distinct from the standard shape; the dashboard
// reads both.
type SimplifiedModerationResponse struct {
	Platform  string `json:"platform"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	RiskScore int    `json:"risk_score"`
	RiskLevel string `json:"risk_level"`
	Timestamp string `json:"timestamp"`
}

// Moderate handles POST /moderate
func (h *moderateHandler) Moderate(c *gin.Context) {
	var sub models.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.logger.Error("Failed to bind moderation submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if sub.Policy != "" && sub.Policy != risk.PolicyStandard && sub.Policy != risk.PolicySimplified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid policy. Valid values: standard, simplified"})
		return
	}

	result, err := h.svc.ModerateText(c.Request.Context(), sub)
	if err != nil {
		h.logger.Error("Failed to process submission",
			zap.String("user_id", sub.UserID),
			zap.String("platform", sub.Platform),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process submission"})
		return
	}

	if result.Policy == risk.PolicySimplified {
		c.JSON(http.StatusOK, SimplifiedModerationResponse{
			Platform:  sub.Platform,
			UserID:    sub.UserID,
			Content:   sub.Content,
			RiskScore: result.RiskScore,
			RiskLevel: result.RiskLevel,
			Timestamp: result.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		})
		return
	}

	c.JSON(http.StatusOK, StandardModerationResponse{
		Status:    "processed",
		RiskScore: result.RiskScore,
		RiskLevel: result.RiskLevel,
		Toxicity:  round3(result.Toxicity),
	})
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
