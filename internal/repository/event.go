package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"sentinelshield/internal/models"
)

// EventRepository is the append-only moderation log. Rows are never
// updated or deleted.
type EventRepository interface {
	AppendScoredEvent(ctx context.Context, event *models.ScoredEvent) error
	AppendMediaAnalysis(ctx context.Context, analysis *models.MediaAnalysis) error
	RecentScoredEvents(ctx context.Context, limit int) ([]*models.ScoredEvent, error)
	RecentMediaAnalyses(ctx context.Context, limit int) ([]*models.MediaAnalysis, error)
	CountEventsByRiskLevel(ctx context.Context) (map[string]int64, error)
}

type eventRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewEventRepository(db *sqlx.DB, logger *zap.Logger) EventRepository {
	return &eventRepository{db: db, logger: logger}
}

func (r *eventRepository) AppendScoredEvent(ctx context.Context, event *models.ScoredEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	query := `INSERT INTO scored_events (id, user_id, platform, content, toxicity_score, risk_score, risk_level, timestamp)
	          VALUES (:id, :user_id, :platform, :content, :toxicity_score, :risk_score, :risk_level, :timestamp)`
	_, err := r.db.NamedExecContext(ctx, query, event)
	return err
}

func (r *eventRepository) AppendMediaAnalysis(ctx context.Context, analysis *models.MediaAnalysis) error {
	if analysis.ID == "" {
		analysis.ID = uuid.NewString()
	}
	query := `INSERT INTO media_analyses (id, media_type, user_id, authenticity_label, deepfake_probability,
	              abuse_probability, audio_toxicity, transcript, timestamp)
	          VALUES (:id, :media_type, :user_id, :authenticity_label, :deepfake_probability,
	              :abuse_probability, :audio_toxicity, :transcript, :timestamp)`
	_, err := r.db.NamedExecContext(ctx, query, analysis)
	return err
}

func (r *eventRepository) RecentScoredEvents(ctx context.Context, limit int) ([]*models.ScoredEvent, error) {
	var events []*models.ScoredEvent
	query := `SELECT id, user_id, platform, content, toxicity_score, risk_score, risk_level, timestamp
	          FROM scored_events ORDER BY timestamp DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) RecentMediaAnalyses(ctx context.Context, limit int) ([]*models.MediaAnalysis, error) {
	var analyses []*models.MediaAnalysis
	query := `SELECT id, media_type, user_id, authenticity_label, deepfake_probability,
	              abuse_probability, audio_toxicity, transcript, timestamp
	          FROM media_analyses ORDER BY timestamp DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &analyses, query, limit); err != nil {
		return nil, err
	}
	return analyses, nil
}

func (r *eventRepository) CountEventsByRiskLevel(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT risk_level, COUNT(*) AS total FROM scored_events GROUP BY risk_level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var level string
		var total int64
		if err := rows.Scan(&level, &total); err != nil {
			r.logger.Error("Failed to scan risk level count", zap.Error(err))
			continue
		}
		counts[level] = total
	}
	return counts, rows.Err()
}
