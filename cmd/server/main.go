package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"educate/internal/cache"
	"educate/internal/config"
	"educate/internal/database"
	"educate/internal/repositories"
	"educate/internal/router"
	"educate/internal/services"
	"educate/internal/utils"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Educate API",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	dbManager, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer dbManager.Close()

	if cfg.Database.AutoMigrate {
		if err := dbManager.Migrate(); err != nil {
			return err
		}
	}

	cacheClient, err := cache.New(&cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer cacheClient.Close()

	storage, err := utils.NewCloudinaryService(&cfg.Cloudinary, logger)
	if err != nil {
		return err
	}

	repos := repositories.NewCollection(dbManager, &cfg.Database, logger)
	serviceCollection := services.NewCollection(repos, storage, cacheClient, cfg, logger)

	handler := router.New(&router.Dependencies{
		Config:   cfg,
		Services: serviceCollection,
		Database: dbManager,
		Cache:    cacheClient,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:           cfg.Server.Addr(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("Graceful shutdown timed out, forcing close", zap.Error(err))
		return server.Close()
	}

	logger.Info("Server stopped cleanly")
	return nil
}

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zap.ParseAtomicLevel(cfg.Logging.Level); err == nil {
		zapCfg.Level = level
	}
	if cfg.Logging.Format == "console" {
		zapCfg.Encoding = "console"
	}
	return zapCfg.Build()
}
