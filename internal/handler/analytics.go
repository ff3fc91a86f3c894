package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sentinelshield/internal/models"
	"sentinelshield/internal/repository"
)

type AnalyticsHandler interface {
	GetDashboard(c *gin.Context)
}

type analyticsHandler struct {
	events repository.EventRepository
	stats  repository.StatsRepository
	logger *zap.Logger
}

func NewAnalyticsHandler(events repository.EventRepository, stats repository.StatsRepository, logger *zap.Logger) AnalyticsHandler {
	return &analyticsHandler{
		events: events,
		stats:  stats,
		logger: logger,
	}
}

// DashboardStats represents the statistics for the dashboard
type DashboardStats struct {
	Today         *models.DailyStat       `json:"today"`
	EventsByLevel map[string]int64        `json:"events_by_level"`
	RecentEvents  []*models.ScoredEvent   `json:"recent_events"`
	RecentMedia   []*models.MediaAnalysis `json:"recent_media"`
}

// GetDashboard handles GET /api/analytics/dashboard
func (h *analyticsHandler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	today, err := h.stats.GetDaily(ctx, time.Now().Format("2006-01-02"))
	if err != nil {
		h.logger.Error("Failed to get daily stats for dashboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	byLevel, err := h.events.CountEventsByRiskLevel(ctx)
	if err != nil {
		h.logger.Error("Failed to count events by risk level", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	recentEvents, err := h.events.RecentScoredEvents(ctx, 10)
	if err != nil {
		h.logger.Error("Failed to get recent events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	recentMedia, err := h.events.RecentMediaAnalyses(ctx, 10)
	if err != nil {
		h.logger.Error("Failed to get recent media analyses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	c.JSON(http.StatusOK, DashboardStats{
		Today:         today,
		EventsByLevel: byLevel,
		RecentEvents:  recentEvents,
		RecentMedia:   recentMedia,
	})
}
