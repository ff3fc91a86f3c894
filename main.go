package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sentinelshield/internal/config"
	"sentinelshield/internal/inference"
	"sentinelshield/internal/notifier"
	"sentinelshield/internal/observability"
	"sentinelshield/internal/repository"
	"sentinelshield/internal/server"
	"sentinelshield/internal/service"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	_ = godotenv.Load()

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Redis connection for daily counters and the shared word set
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable at startup, counters and word set will degrade", zap.Error(err))
	}
	cancelPing()

	// Initialize repositories
	stateRepo := repository.NewUserStateRepository(db, logger)
	eventRepo := repository.NewEventRepository(db, logger)
	statsRepo := repository.NewStatsRepository(rdb, logger)

	// Initialize classifiers
	adapter := buildAdapter(cfg, logger)

	// Telegram notifier for escalation alerts
	alerts, err := notifier.New(cfg.Alerts.Enabled, cfg.Alerts.TelegramBotToken, cfg.Alerts.ChatID, logger)
	if err != nil {
		logger.Warn("Failed to initialize Telegram notifier, continuing without alerts", zap.Error(err))
		alerts = nil
	}

	observability.Register()

	inferenceTimeout := time.Duration(cfg.Inference.TimeoutSeconds) * time.Second
	svc := service.NewService(adapter, stateRepo, eventRepo, statsRepo, alerts, logger,
		inferenceTimeout, cfg.Moderation.DefaultPolicy, cfg.Moderation.RestrictedWords)

	srv := server.NewServer(db, rdb, adapter, svc, logger)
	srv.Run(cfg.Server.Port)
}

// buildAdapter assembles the classifier set from configuration. Remote
// mode points every modality at the model sidecar; local mode runs the
// text model in-process and keeps image and speech on the sidecar when
// a URL is configured.
func buildAdapter(cfg *config.Config, logger *zap.Logger) *inference.Adapter {
	adapter := &inference.Adapter{}
	timeout := time.Duration(cfg.Inference.TimeoutSeconds) * time.Second

	switch cfg.Inference.Mode {
	case "local":
		local, err := inference.NewLocalTextClassifier(cfg.Inference.ModelsDir, cfg.Inference.TextModel)
		if err != nil {
			logger.Error("Failed to load local text model, text scoring degrades to neutral", zap.Error(err))
		} else {
			adapter.Text = local
		}
		if cfg.Inference.URL != "" {
			client := inference.NewClient(cfg.Inference.URL, timeout)
			adapter.Image = client
			adapter.Speech = client
		}
	default:
		if cfg.Inference.URL == "" {
			logger.Warn("No inference URL configured, all scoring degrades to neutral")
			break
		}
		client := inference.NewClient(cfg.Inference.URL, timeout)
		adapter.Text = client
		adapter.Image = client
		adapter.Speech = client
	}

	return adapter
}
