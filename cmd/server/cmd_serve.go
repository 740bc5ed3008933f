package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iiuc-platform/interview-service/internal/ai"
	"github.com/iiuc-platform/interview-service/internal/cache"
	"github.com/iiuc-platform/interview-service/internal/config"
	"github.com/iiuc-platform/interview-service/internal/handlers"
	"github.com/iiuc-platform/interview-service/internal/repositories/postgres"
	"github.com/iiuc-platform/interview-service/internal/services"
	"github.com/iiuc-platform/interview-service/internal/storage"
	"github.com/iiuc-platform/interview-service/internal/utils"
	"github.com/iiuc-platform/interview-service/internal/validator"
	"github.com/iiuc-platform/interview-service/pkg"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interview service HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("init event publisher: %w", err)
	}
	defer publisher.Close()

	audioStore, err := storage.NewMinioAudioStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("init audio store: %w", err)
	}
	if err := audioStore.EnsureBucket(context.Background()); err != nil {
		logger.Warn("Audio bucket check failed", "error", err)
	}

	repo := postgres.NewRepository(db)
	sessionCache := cache.NewRedisSessionCache(redisClient, logger)
	provider := ai.NewYandexProvider(cfg.YandexIAMToken, cfg.YandexCatalogID)
	v := validator.New()

	serviceManager := &services.ServiceManager{
		Interview: services.NewInterviewService(repo, logger, v),
		Session:   services.NewSessionService(repo, sessionCache, provider, audioStore, publisher, logger, v),
		Report:    services.NewReportService(repo, logger),
		Repo:      repo,
	}

	handlers.InitAuth(cfg)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, v, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Interview service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
