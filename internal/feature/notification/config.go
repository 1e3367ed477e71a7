package notification

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config はメールキューの設定です。APIとワーカーで共有します。
type Config struct {
	// Queue はタスクを登録するキュー名です。
	Queue string
	// Attempts は初回を含む最大試行回数です。
	Attempts int
	// Retention は完了したタスクを保持する期間です。
	Retention time.Duration
	// Concurrency はワーカーの同時処理数です。
	Concurrency int
}

// LoadConfig は環境変数からキュー設定を読み込みます。
func LoadConfig(v *viper.Viper) (Config, error) {
	v.SetDefault("EMAIL_QUEUE", "email")
	v.SetDefault("EMAIL_QUEUE_ATTEMPTS", 3)
	v.SetDefault("EMAIL_QUEUE_RETENTION", "5m")
	v.SetDefault("WORKER_CONCURRENCY", 10)

	cfg := Config{
		Queue:       v.GetString("EMAIL_QUEUE"),
		Attempts:    v.GetInt("EMAIL_QUEUE_ATTEMPTS"),
		Retention:   v.GetDuration("EMAIL_QUEUE_RETENTION"),
		Concurrency: v.GetInt("WORKER_CONCURRENCY"),
	}
	if cfg.Queue == "" {
		return Config{}, fmt.Errorf("EMAIL_QUEUE must not be empty")
	}
	if cfg.Attempts < 1 {
		return Config{}, fmt.Errorf("EMAIL_QUEUE_ATTEMPTS must be at least 1, got %d", cfg.Attempts)
	}
	if cfg.Concurrency < 1 {
		return Config{}, fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got %d", cfg.Concurrency)
	}
	return cfg, nil
}
