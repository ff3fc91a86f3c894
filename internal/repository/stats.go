package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sentinelshield/internal/models"
)

const (
	dailyKeyPrefix     = "daily:"
	restrictedWordsKey = "config:restricted_words"
)

// StatsRepository holds the global daily counters and the shared
// restricted-word set. Both live in Redis: the counters because they are
// a hot key written by every concurrent request (HINCRBY is atomic, so
// no increments are lost), the word list because the dashboard edits it
// out of band and this service re-reads it on every call.
type StatsRepository interface {
	// IncrDaily bumps the day's scanned counter, and the flagged counter
	// when flagged is set.
	IncrDaily(ctx context.Context, date string, flagged bool) error
	GetDaily(ctx context.Context, date string) (*models.DailyStat, error)
	// RestrictedWords returns the current shared word list.
	RestrictedWords(ctx context.Context) ([]string, error)
}

type statsRepository struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewStatsRepository(rdb *redis.Client, logger *zap.Logger) StatsRepository {
	return &statsRepository{rdb: rdb, logger: logger}
}

func (r *statsRepository) IncrDaily(ctx context.Context, date string, flagged bool) error {
	key := dailyKeyPrefix + date
	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, key, "scanned", 1)
	if flagged {
		pipe.HIncrBy(ctx, key, "flagged", 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment daily stats for %s: %w", date, err)
	}
	return nil
}

func (r *statsRepository) GetDaily(ctx context.Context, date string) (*models.DailyStat, error) {
	fields, err := r.rdb.HGetAll(ctx, dailyKeyPrefix+date).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read daily stats for %s: %w", date, err)
	}

	stat := &models.DailyStat{Date: date}
	if v, ok := fields["scanned"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			stat.Scanned = n
		}
	}
	if v, ok := fields["flagged"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			stat.Flagged = n
		}
	}
	return stat, nil
}

func (r *statsRepository) RestrictedWords(ctx context.Context) ([]string, error) {
	words, err := r.rdb.SMembers(ctx, restrictedWordsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read restricted word list: %w", err)
	}
	return words, nil
}
