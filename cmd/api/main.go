package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/govichain/engine/internal/api"
	"github.com/govichain/engine/internal/api/handlers"
	"github.com/govichain/engine/internal/repository"
	"github.com/govichain/engine/internal/services"
	"github.com/govichain/engine/pkg/cache"
	"github.com/govichain/engine/pkg/config"
	"github.com/govichain/engine/pkg/database"
	"github.com/govichain/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting govichain engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, cfg.AppEnv)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("database connected")

	// Optional dashboard stats cache
	var statsCache *cache.Cache
	if cfg.RedisAddr != "" {
		statsCache, err = cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.StatsCacheTTL)
		if err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		defer statsCache.Close()
		log.Info("stats cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)

	// Services
	authSvc := services.NewAuthService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL)
	projectSvc := services.NewProjectService(db, projectRepo, milestoneRepo)
	milestoneSvc := services.NewMilestoneService(db, projectRepo, milestoneRepo)
	dashboardSvc := services.NewDashboardService(userRepo, projectRepo, milestoneRepo, statsCache)

	router := api.NewRouter(api.Dependencies{
		TokenResolver:     authSvc,
		AuthHandler:       handlers.NewAuthHandler(authSvc, cfg.TokenTTL),
		UsersHandler:      handlers.NewUsersHandler(userRepo),
		ProjectsHandler:   handlers.NewProjectsHandler(projectSvc),
		MilestonesHandler: handlers.NewMilestonesHandler(milestoneSvc),
		DashboardHandler:  handlers.NewDashboardHandler(dashboardSvc),
		HealthHandler:     handlers.NewHealthHandler(db),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
