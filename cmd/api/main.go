package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-manager-api/configs"
	v1 "task-manager-api/internal/api/v1"
	"task-manager-api/internal/config"
	"task-manager-api/internal/repository"
	"task-manager-api/pkg/database"
	"task-manager-api/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		logger.ErrorLogger.Error("Application failed", zap.Error(err))
		logger.SyncLoggers()
		log.Fatal(err)
	}
}

func run() error {
	cfg := configs.LoadConfig()

	// Inisialisasi logger
	if err := logger.InitLoggers(logger.Options{Dir: cfg.LogDir, Debug: cfg.Debug}); err != nil {
		return err
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.SystemLogger.Info("Database connected", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}

	stores := config.Stores{
		Users: repository.NewUserRepository(db),
		Tasks: repository.NewTaskRepository(db),
	}
	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		stores.Redis = rdb
		logger.SystemLogger.Info("Redis connected, token revocation enabled", zap.String("addr", cfg.RedisAddr()))
	} else {
		logger.SystemLogger.Warn("REDIS_HOST not set, logout will not revoke tokens")
	}

	deps, err := config.NewDependencies(ctx, cfg, stores)
	if err != nil {
		return err
	}

	if cfg.AdminEmail != "" {
		hashed, err := deps.Hasher.Hash(ctx, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		admin, err := repository.EnsureAdmin(ctx, repository.NewUserRepository(db), cfg.AdminEmail, hashed)
		if err != nil {
			return err
		}
		logger.AuditLogger.Info("Admin account ensured", zap.Int64("user_id", admin.ID))
	}

	go deps.Hub.Run(ctx)

	app := v1.NewApp(cfg, deps)
	go func() {
		<-ctx.Done()
		logger.SystemLogger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.ErrorLogger.Error("Shutdown error", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	return app.Listen(addr)
}
