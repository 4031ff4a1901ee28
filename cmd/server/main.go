package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arcadehub/backend/config"
	"github.com/arcadehub/backend/internal/appstate"
	"github.com/arcadehub/backend/internal/auth"
	"github.com/arcadehub/backend/internal/cache"
	"github.com/arcadehub/backend/internal/database"
	"github.com/arcadehub/backend/internal/handlers"
	"github.com/arcadehub/backend/internal/logging"
	"github.com/arcadehub/backend/internal/middleware"
	"github.com/arcadehub/backend/internal/moderation"
	"github.com/arcadehub/backend/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(); err != nil {
		log.Fatalf("Failed to init logging: %v", err)
	}
	defer logging.Sync()
	logger := logging.L()

	// Pick the storage backend
	var stores *repository.Stores
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := database.NewPostgresDB(cfg.GetDSN())
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		logger.Info("running database migrations")
		if err := database.RunMigrations(db.DB); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		stores = &repository.Stores{
			Users:      repository.NewUserRepository(db),
			Chat:       repository.NewChatRepository(db),
			ModLogs:    repository.NewModerationLogRepository(db),
			Strikes:    repository.NewStrikeRepository(db),
			Broadcasts: repository.NewBroadcastRepository(db),
			Games:      repository.NewGameRepository(db),
		}
	case "memory":
		logger.Warn("using in-memory storage, state will not survive restarts")
		stores = repository.NewMemoryStores()
	}

	// Connect to Redis
	var redis *cache.RedisClient
	if cfg.Redis.Enabled {
		redis, err = cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("failed to connect to Redis, continuing without caching and pub/sub", zap.Error(err))
			redis = nil
		} else {
			defer redis.Close()
		}
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	engine := moderation.NewEngine()
	state := appstate.New()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(stores.Users, jwtService)
	chatHandler := handlers.NewChatHandler(stores.Chat, stores.Users, stores.ModLogs, stores.Strikes, engine, redis, state, cfg.Moderation.StrikeLimit)
	broadcastHandler := handlers.NewBroadcastHandler(stores.Broadcasts)
	gameHandler := handlers.NewGameHandler(stores.Games, stores.Users, redis)
	adminHandler := handlers.NewAdminHandler(stores.Strikes, stores.ModLogs, state)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitMessagesPerSec)
	rateLimiter.Cleanup()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}
	router.GET("/api/v1/leaderboard/:gameType", gameHandler.Leaderboard)

	// Protected routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		// User routes
		api.GET("/me", authHandler.GetMe)
		api.GET("/lock-status", chatHandler.GetLockStatus)

		// Chat routes
		api.GET("/chat", chatHandler.GetChat)
		api.POST("/chat", middleware.RateLimitMiddleware(rateLimiter), chatHandler.PostChat)
		api.DELETE("/chat/:id", chatHandler.DeleteChat)

		// Broadcast routes
		api.GET("/broadcasts", broadcastHandler.List)
		api.POST("/broadcasts/:id/read", broadcastHandler.MarkRead)

		// Game routes
		api.GET("/games/:gameType", gameHandler.GetGameData)
		api.PUT("/games/:gameType", gameHandler.SaveGameData)

		// Admin routes
		admin := api.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/broadcasts", broadcastHandler.Create)
			admin.DELETE("/broadcasts/:id", broadcastHandler.Delete)

			admin.GET("/moderation/strikes", adminHandler.ListStrikes)
			admin.POST("/moderation/strikes/:userId/reset", adminHandler.ResetStrikes)
			admin.GET("/moderation/logs", adminHandler.ListModerationLogs)
			admin.DELETE("/moderation/logs/:id", adminHandler.DeleteModerationLog)

			admin.POST("/games/cookie-clicker/gift", gameHandler.GiftCookies)

			admin.POST("/admin/lock", adminHandler.LockScreen)
			admin.POST("/admin/unlock", adminHandler.UnlockScreen)
		}
	}

	// Start server
	addr := ":" + cfg.Server.Port
	logger.Info("starting server", zap.String("addr", addr), zap.String("env", cfg.Server.Env), zap.String("storage", cfg.Storage.Backend))
	if err := router.Run(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
