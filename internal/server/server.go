package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sentinelshield/internal/handler"
	"sentinelshield/internal/inference"
	"sentinelshield/internal/repository"
	"sentinelshield/internal/service"
)

type Server struct {
	router  *gin.Engine
	db      *sqlx.DB
	rdb     *redis.Client
	adapter *inference.Adapter
	svc     *service.Service
	logger  *zap.Logger
}

func NewServer(db *sqlx.DB, rdb *redis.Client, adapter *inference.Adapter, svc *service.Service, logger *zap.Logger) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())

	s := &Server{
		router:  router,
		db:      db,
		rdb:     rdb,
		adapter: adapter,
		svc:     svc,
		logger:  logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	eventRepo := repository.NewEventRepository(s.db, s.logger)
	statsRepo := repository.NewStatsRepository(s.rdb, s.logger)

	moderateHandler := handler.NewModerateHandler(s.svc, s.logger)
	mediaHandler := handler.NewMediaHandler(s.svc, s.logger)
	analyticsHandler := handler.NewAnalyticsHandler(eventRepo, statsRepo, s.logger)
	healthHandler := handler.NewHealthHandler(s.adapter, s.db, s.rdb)

	s.router.GET("/", healthHandler.Root)
	s.router.POST("/moderate", moderateHandler.Moderate)
	s.router.POST("/analyze-media", mediaHandler.AnalyzeMedia)

	apiGroup := s.router.Group("/api")
	apiGroup.GET("/health", healthHandler.Health)
	apiGroup.GET("/analytics/dashboard", analyticsHandler.GetDashboard)

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// corsMiddleware allows the moderation dashboard to call the API from
// any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func (s *Server) Run(addr string) {
	s.logger.Info("Server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.logger.Fatal("Server failed to start", zap.Error(err))
	}
}
