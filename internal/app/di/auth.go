// Package di はアプリケーションコンポーネントを生成するファクトリを提供します。
package di

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authadapters "blog_backend/internal/feature/auth/adapters"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	"blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/feature/notification"
	"blog_backend/internal/platform/config"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/platform/otp"
	"blog_backend/internal/platform/password"
)

// Auth はauthフィーチャーの組み立て結果です。
type Auth struct {
	Handler *authhandler.AuthHandler
	Tokens  *jwtmw.TokenService
}

// NewAuth は設定を読み込み、authフィーチャーのハンドラーとトークンサービスを生成します。
// queue はOTP配信タスクの登録先です。
func NewAuth(v *viper.Viper, db *gorm.DB, rdb *redis.Client, queue *asynq.Client, logger *zap.Logger) (*Auth, error) {
	jwtCfg, err := jwtmw.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	kdf, err := password.LoadParams(v)
	if err != nil {
		return nil, err
	}
	queueCfg, err := notification.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	ucCfg, err := loadUsecaseConfig(v)
	if err != nil {
		return nil, err
	}

	tokens := jwtmw.NewTokenService(jwtCfg.Secret, jwtCfg.Expiration)
	uc := usecase.NewAuthUsecase(usecase.Deps{
		Users:      authadapters.NewUserPostgres(db),
		Hasher:     password.NewHasher(kdf),
		Tokens:     tokens,
		Otps:       otp.NewRedisStore(rdb),
		Generator:  otp.NewGenerator(),
		Dispatcher: notification.NewDispatcher(queue, queueCfg, logger),
		Logger:     logger,
	}, ucCfg)

	h := authhandler.NewAuthHandler(uc, authhandler.CookieConfig{
		Secure: !config.IsDevelopment(v),
	}, logger)
	return &Auth{Handler: h, Tokens: tokens}, nil
}

func loadUsecaseConfig(v *viper.Viper) (usecase.Config, error) {
	v.SetDefault("OTP_RESET_LIMIT", usecase.DefaultOtpResetLimit)
	cfg := usecase.Config{OtpResetLimit: v.GetInt("OTP_RESET_LIMIT")}
	if cfg.OtpResetLimit <= 0 {
		return usecase.Config{}, fmt.Errorf("OTP_RESET_LIMIT must be positive, got %d", cfg.OtpResetLimit)
	}
	return cfg, nil
}
