package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blog_backend/internal/app/di"
	"blog_backend/internal/app/router"
	"blog_backend/internal/platform/config"
	platformdb "blog_backend/internal/platform/db"
	"blog_backend/internal/platform/http/handler"
	"blog_backend/internal/platform/logger"
	platformredis "blog_backend/internal/platform/redis"
	"blog_backend/internal/shared/ratelimiter"
)

func main() {
	v, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(config.IsDevelopment(v))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, v, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, v *viper.Viper, zl *zap.Logger) error {
	// db
	db, err := platformdb.OpenDB(platformdb.LoadConfig(v), zl)
	if err != nil {
		return err
	}

	// Redis（OTPストアとキューで共有）
	redisCfg, err := platformredis.LoadConfig(v)
	if err != nil {
		return err
	}
	rdb, err := platformredis.NewRedisClient(ctx, redisCfg, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			zl.Error("failed to close Redis client", zap.Error(err))
		}
	}()

	queue := asynq.NewClient(platformredis.AsynqOpt(redisCfg))
	defer func() { _ = queue.Close() }()

	auth, err := di.NewAuth(v, db, rdb, queue, zl)
	if err != nil {
		return err
	}

	limitCfg, err := ratelimiter.LoadConfig(v)
	if err != nil {
		return err
	}

	health := handler.NewHealthHandler(map[string]handler.Checker{
		"postgres": func(ctx context.Context) error { return platformdb.Ping(ctx, db) },
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	// ルータ生成
	r := router.NewRouter(router.Deps{
		Auth:     auth.Handler,
		Health:   health,
		Verifier: auth.Tokens,
		Limiter:  ratelimiter.NewRateLimiter(limitCfg),
		Logger:   zl,
	})

	srv := &http.Server{
		Addr:              v.GetString("HTTP_ADDR"),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return closeDB(db)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
