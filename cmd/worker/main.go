package main

import (
	"log"

	"go.uber.org/zap"

	"blog_backend/internal/app/di"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/logger"
	platformredis "blog_backend/internal/platform/redis"
)

// worker はOTPメール配信タスクを処理します。
// asynq.Server.Run はSIGINT/SIGTERMを受けると処理中のタスクを待って終了します。
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

	redisCfg, err := platformredis.LoadConfig(v)
	if err != nil {
		zl.Fatal("invalid redis config", zap.Error(err))
	}

	w, err := di.NewEmailWorker(v, redisCfg, zl)
	if err != nil {
		zl.Fatal("failed to build email worker", zap.Error(err))
	}

	zl.Info("email worker starting", zap.String("redis", redisCfg.Addr()))
	if err := w.Server.Run(w.Mux); err != nil {
		zl.Fatal("email worker exited", zap.Error(err))
	}
}
