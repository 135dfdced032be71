package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubratings/club-ratings/besoccer"
	"github.com/clubratings/club-ratings/config"
	"github.com/clubratings/club-ratings/db"
	"github.com/clubratings/club-ratings/handlers"
	"github.com/clubratings/club-ratings/middleware"
	"github.com/clubratings/club-ratings/realtime"
	"github.com/clubratings/club-ratings/repositories"
	api "github.com/clubratings/club-ratings/routes"
	"github.com/clubratings/club-ratings/scrape"
	"github.com/clubratings/club-ratings/services"
	"github.com/clubratings/club-ratings/sofascore"
	"github.com/clubratings/club-ratings/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Загрузчик аватаров (Cloudflare R2). Без конфигурации работаем без аватаров.
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("Cloudflare R2 is not configured, avatar upload disabled")
	}

	// WebSocket Hub для push-уведомлений
	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Клиенты внешних источников данных о матчах
	fetcher := scrape.NewFetcher(scrape.Config{ScraperAPIKey: cfg.ScraperAPIKey}, logger)
	sofascoreClient := sofascore.NewClient(fetcher, cfg.SofascoreBaseURL)
	besoccerClient := besoccer.NewClient(fetcher, cfg.BesoccerBaseURL)

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	ratingRepo := repositories.NewPostgresRatingRepository(dbConn)
	commentRepo := repositories.NewPostgresCommentRepository(dbConn)
	reactionRepo := repositories.NewPostgresReactionRepository(dbConn)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	notificationService := services.NewNotificationService(notificationRepo, wsHub, logger)
	userService := services.NewUserService(userRepo, ratingRepo, uploader, logger)
	ratingService := services.NewRatingService(ratingRepo, userRepo, friendshipRepo)
	commentService := services.NewCommentService(commentRepo, ratingRepo, userRepo, ratingService, notificationService)
	reactionService := services.NewReactionService(reactionRepo, userRepo, ratingService, notificationService)
	friendService := services.NewFriendService(userRepo, friendshipRepo, notificationService)
	matchService := services.NewMatchService(sofascoreClient, besoccerClient)
	statsService := services.NewStatsService(ratingRepo, userRepo)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		User:         handlers.NewUserHandler(userService),
		Club:         handlers.NewClubHandler(),
		Match:        handlers.NewMatchHandler(matchService, userService),
		Proxy:        handlers.NewProxyHandler(fetcher),
		Rating:       handlers.NewRatingHandler(ratingService),
		Comment:      handlers.NewCommentHandler(commentService),
		Reaction:     handlers.NewReactionHandler(reactionService),
		Friend:       handlers.NewFriendHandler(friendService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Stats:        handlers.NewStatsHandler(statsService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	api.SetupRoutes(router, authenticator, cfg.CORSAllowedOrigins, h)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // скрейпинг внешних источников бывает медленным
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
