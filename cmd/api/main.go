package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/auth"
	"github.com/sseth345/srilanka-learning-platform/internal/config"
	"github.com/sseth345/srilanka-learning-platform/internal/database"
	"github.com/sseth345/srilanka-learning-platform/internal/events"
	"github.com/sseth345/srilanka-learning-platform/internal/handler"
	"github.com/sseth345/srilanka-learning-platform/internal/middleware"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
	"github.com/sseth345/srilanka-learning-platform/internal/router"
	"github.com/sseth345/srilanka-learning-platform/internal/service"
	cloud "github.com/sseth345/srilanka-learning-platform/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured; analytics caching and redis events disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	publisher := events.NewPublisher(redisClient, natsConn, cfg.EventsChannel, logger)

	var (
		fileStorage  service.FileStorage
		videoStorage service.VideoStorage
	)
	if cfg.CloudinaryEnabled() {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		fileStorage = uploader
		videoStorage = uploader
	} else {
		logger.Warn().Msg("cloudinary credentials missing; media uploads disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	submissionRepo := repository.NewExerciseSubmissionRepository(db)
	contentRepo := repository.NewContentRepository(db)
	bookRepo := repository.NewBookRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	authService := service.NewAuthService(userRepo, tokens, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	exerciseService := service.NewExerciseService(exerciseRepo, submissionRepo, validate, logger)
	submissionService := service.NewExerciseSubmissionService(exerciseRepo, submissionRepo, publisher, validate, logger)
	contentService := service.NewContentService(contentRepo, fileStorage, cfg.MaxFileMB, validate, logger)
	bookService := service.NewBookService(bookRepo, fileStorage, cfg.MaxFileMB, validate, logger)
	videoService := service.NewVideoService(videoRepo, videoStorage, publisher, service.VideoConfig{
		MaxSizeMB:     cfg.MaxVideoMB,
		UploadTimeout: cfg.VideoUploadTimeout,
	}, validate, logger)
	discussionService := service.NewDiscussionService(discussionRepo, validate, logger)
	newsService := service.NewNewsService(newsRepo, validate, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, submissionRepo, redisClient, cfg.AnalyticsCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxVideoMB + 1) * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(logger, cfg.IsDevelopment()),
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
		AccessLog:    cfg.IsDevelopment(),
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, userService, logger),
		UserHandler:       handler.NewUserHandler(userService, logger),
		ExerciseHandler:   handler.NewExerciseHandler(exerciseService, submissionService, logger),
		ContentHandler:    handler.NewContentHandler(contentService, logger),
		BookHandler:       handler.NewBookHandler(bookService, logger),
		VideoHandler:      handler.NewVideoHandler(videoService, logger),
		DiscussionHandler: handler.NewDiscussionHandler(discussionService, logger),
		NewsHandler:       handler.NewNewsHandler(newsService, logger),
		AnalyticsHandler:  handler.NewAnalyticsHandler(analyticsService, logger),
		Authenticate:      middleware.Authenticate(tokens, userRepo),
		RateLimitMax:      cfg.RateLimitMax,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
