package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"sentinelshield/internal/models"
)

// UserStateRepository holds the per-user rolling counters.
type UserStateRepository interface {
	// Get returns the user's state, or nil when the user has never been
	// scored.
	Get(ctx context.Context, userID string) (*models.UserState, error)
	// UpdateAtomic runs a serialized read-modify-write for one user: the
	// prior state (nil if absent) is passed to merge while the row is
	// locked, and the returned state is upserted in the same transaction.
	// Concurrent submissions for the same user queue on the row lock;
	// different users proceed in parallel.
	UpdateAtomic(ctx context.Context, userID string, merge func(prior *models.UserState) models.UserState) (models.UserState, error)
}

type userStateRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserStateRepository(db *sqlx.DB, logger *zap.Logger) UserStateRepository {
	return &userStateRepository{db: db, logger: logger}
}

const userStateColumns = `user_id, total_scanned, flagged_count, avg_toxicity, risk_score, risk_level,
	warnings_ignored, last_target_id, repeated_targeting, platform, last_updated`

func (r *userStateRepository) Get(ctx context.Context, userID string) (*models.UserState, error) {
	var state models.UserState
	query := `SELECT ` + userStateColumns + ` FROM user_states WHERE user_id = $1`
	err := r.db.GetContext(ctx, &state, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *userStateRepository) UpdateAtomic(ctx context.Context, userID string, merge func(prior *models.UserState) models.UserState) (models.UserState, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.UserState{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // No-op after commit
	}()

	var prior *models.UserState
	var existing models.UserState
	query := `SELECT ` + userStateColumns + ` FROM user_states WHERE user_id = $1 FOR UPDATE`
	err = tx.GetContext(ctx, &existing, query, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		prior = nil
	case err != nil:
		return models.UserState{}, fmt.Errorf("failed to read user state: %w", err)
	default:
		prior = &existing
	}

	next := merge(prior)
	next.UserID = userID

	upsert := `
		INSERT INTO user_states (` + userStateColumns + `)
		VALUES (:user_id, :total_scanned, :flagged_count, :avg_toxicity, :risk_score, :risk_level,
			:warnings_ignored, :last_target_id, :repeated_targeting, :platform, :last_updated)
		ON CONFLICT (user_id) DO UPDATE SET
			total_scanned = EXCLUDED.total_scanned,
			flagged_count = EXCLUDED.flagged_count,
			avg_toxicity = EXCLUDED.avg_toxicity,
			risk_score = EXCLUDED.risk_score,
			risk_level = EXCLUDED.risk_level,
			warnings_ignored = EXCLUDED.warnings_ignored,
			last_target_id = EXCLUDED.last_target_id,
			repeated_targeting = EXCLUDED.repeated_targeting,
			platform = EXCLUDED.platform,
			last_updated = EXCLUDED.last_updated`
	if _, err := tx.NamedExecContext(ctx, upsert, &next); err != nil {
		return models.UserState{}, fmt.Errorf("failed to upsert user state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.UserState{}, fmt.Errorf("failed to commit user state update: %w", err)
	}

	return next, nil
}
