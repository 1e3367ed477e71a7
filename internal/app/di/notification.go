package di

import (
	"github.com/hibiken/asynq"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"blog_backend/internal/feature/notification"
	"blog_backend/internal/platform/mail"
	platformredis "blog_backend/internal/platform/redis"
)

// EmailWorker はメール配信ワーカーの組み立て結果です。
type EmailWorker struct {
	Server *asynq.Server
	Mux    *asynq.ServeMux
}

// NewEmailWorker はSMTPメーラーとasynqサーバーを生成し、OTPメールのハンドラーを登録します。
func NewEmailWorker(v *viper.Viper, redisCfg platformredis.Config, logger *zap.Logger) (*EmailWorker, error) {
	mailCfg, err := mail.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	queueCfg, err := notification.LoadConfig(v)
	if err != nil {
		return nil, err
	}

	w := notification.NewWorker(mail.NewSMTPMailer(mailCfg), logger)
	mux := asynq.NewServeMux()
	w.Register(mux)

	srv := asynq.NewServer(platformredis.AsynqOpt(redisCfg), notification.ServerConfig(queueCfg, w))
	return &EmailWorker{Server: srv, Mux: mux}, nil
}
