package main

import (
	"os"
	"os/signal"
	"syscall"

	configs "github.com/quillbase/blogserver/config"
	"github.com/quillbase/blogserver/internal/handler"
	"github.com/quillbase/blogserver/internal/middleware"
	"github.com/quillbase/blogserver/internal/repository"
	"github.com/quillbase/blogserver/internal/router"
	"github.com/quillbase/blogserver/internal/service"
	"github.com/quillbase/blogserver/pkg/database"
	"github.com/quillbase/blogserver/pkg/logger"
	"github.com/quillbase/blogserver/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(config.Database)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	// Run auto migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	// Seed initial data
	if err := database.Seed(db); err != nil {
		logger.GetLogger().Error("Failed to seed database", zap.Error(err))
		// Don't fail - seed data may already exist
	} else {
		logger.GetLogger().Info("Database seeded successfully")
	}

	// Redis is optional; without it post listings just skip the cache
	var redisClient *redis.Client
	if config.Cache.Enabled {
		redisClient, err = redis.NewClient(config)
		if err != nil {
			logger.GetLogger().Warn("Redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	tagRepo := repository.NewTagRepository(db)

	// Services
	clock := service.SystemClock()
	jwtService := service.NewJWTService(config.JWT.Secret, config.JWT.ExpirationTime)
	hasher := service.NewBcryptHasher()
	lockout := service.NewLockoutManager(userRepo, clock, config.Auth)
	userService := service.NewUserService(userRepo, refreshTokenRepo, jwtService, hasher, lockout, clock, config.JWT)

	var cache service.PostCache
	if redisClient != nil {
		cache = redisClient
	}
	blogService := service.NewBlogService(blogRepo, tagRepo, userRepo, cache, config.Cache)

	// Handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	blogHandler := handler.NewBlogHandler(blogService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Middleware
	jwtMiddleware := middleware.NewJWTMiddleware(jwtService, userRepo)

	r := router.NewRouter(
		authHandler,
		userHandler,
		blogHandler,
		healthHandler,
		jwtMiddleware,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
