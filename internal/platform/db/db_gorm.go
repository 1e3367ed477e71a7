// Package db はPostgreSQLへのGORM接続を提供します。
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"blog_backend/internal/feature/auth/domain/entity"
)

// retryInterval は接続リトライの間隔です。
var retryInterval = 3 * time.Second

// Config はデータベース接続設定を保持します。
type Config struct {
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQLのインスタンス接続名（Unixソケット接続時に使用）
	// RunMigrations がtrueの場合、起動時にスキーマを自動マイグレーションします。
	RunMigrations bool
	// ConnectTimeout は起動時の接続リトライを打ち切るまでの時間です。
	ConnectTimeout time.Duration
}

// LoadConfig は環境変数からデータベース設定を読み込みます。
func LoadConfig(v *viper.Viper) Config {
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", "60s")

	return Config{
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetString("DB_PORT"),
		SSLMode:        v.GetString("DB_SSLMODE"),
		InstanceName:   v.GetString("INSTANCE_CONNECTION_NAME"),
		RunMigrations:  v.GetBool("RUN_MIGRATIONS"),
		ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
	}
}

// BuildDSN はConfigからkey=value形式のPostgreSQL DSN文字列を生成します。
// InstanceNameが設定されている場合はCloud SQLのUnixソケットに接続します。
func BuildDSN(cfg Config) string {
	host, port := cfg.Host, cfg.Port
	if cfg.InstanceName != "" {
		host, port = "/cloudsql/"+cfg.InstanceName, ""
	}

	parts := []string{
		"host=" + quoteDSNValue(host),
		"user=" + quoteDSNValue(cfg.User),
		"password=" + quoteDSNValue(cfg.Password),
		"dbname=" + quoteDSNValue(cfg.Name),
	}
	if port != "" {
		parts = append(parts, "port="+port)
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts = append(parts, "sslmode="+sslmode, "TimeZone=UTC")
	return strings.Join(parts, " ")
}

// quoteDSNValue は空白や引用符を含む値をlibpqの規則でクォートします。
func quoteDSNValue(s string) string {
	if s != "" && !strings.ContainsAny(s, ` '\`) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

// ConnectWithRetry はDB接続をタイムアウトまでリトライします。
// openerは実際の接続処理を行う関数で、テスト時にモック可能です。
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %v: %w", timeout, err)
		}
		time.Sleep(retryInterval)
	}
}

// Migrate はauthフィーチャーのスキーマを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.User{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// OpenDB はPostgreSQLに接続し、必要に応じてマイグレーションを実行します。
func OpenDB(cfg Config, logger *zap.Logger) (*gorm.DB, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	opener := func(dsn string) (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			logger.Warn("DB connect failed, retrying", zap.Error(err))
		}
		return db, err
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, opener)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logger.Info("database migrated")
	}
	return db, nil
}

// Ping はコネクションプール経由でDBの疎通を確認します。
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
