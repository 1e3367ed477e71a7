package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"blog_backend/internal/platform/mail"
)

// maxBackoffExponent は再試行の待ち時間の上限（1s<<10）を決める指数です。
const maxBackoffExponent = 10

// Mailer はメールを送信します。
type Mailer interface {
	Send(ctx context.Context, m mail.Message) error
}

// Worker はOTPメールタスクを処理します。
type Worker struct {
	mailer Mailer
	logger *zap.Logger
}

// NewWorker はWorkerを生成します。
func NewWorker(mailer Mailer, logger *zap.Logger) *Worker {
	return &Worker{mailer: mailer, logger: logger}
}

// Register はタスク種別ごとのハンドラをmuxに登録します。
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOTPEmail, w.ProcessOTPEmail)
}

// ProcessOTPEmail はペイロードを描画してSMTPで送信します。
// 壊れたペイロードは再試行しても直らないためSkipRetryにします。
func (w *Worker) ProcessOTPEmail(ctx context.Context, t *asynq.Task) error {
	var p OTPEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid otp email payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.Email == "" || p.Otp == "" {
		return fmt.Errorf("otp email payload missing email or otp: %w", asynq.SkipRetry)
	}

	subject, html, err := RenderOTPEmail(p)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.mailer.Send(ctx, mail.Message{To: p.Email, Subject: subject, HTML: html}); err != nil {
		return err
	}

	w.logger.Info("otp email sent", zap.String("purpose", string(p.Purpose)))
	return nil
}

// HandleError は失敗したタスクを記録します。再試行されない失敗はErrorで記録します。
func (w *Worker) HandleError(ctx context.Context, t *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	taskID, _ := asynq.GetTaskID(ctx)

	fields := []zap.Field{
		zap.String("task_id", taskID),
		zap.String("type", t.Type()),
		zap.Int("retried", retried),
		zap.Int("max_retry", maxRetry),
		zap.Error(err),
	}
	if errors.Is(err, asynq.SkipRetry) || retried >= maxRetry {
		w.logger.Error("otp email task failed permanently", fields...)
		return
	}
	w.logger.Warn("otp email task failed, will retry", fields...)
}

// RetryDelay は1秒から倍々に伸びる待ち時間を返します。nはこれまでの再試行回数です。
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 0 {
		n = 0
	}
	if n > maxBackoffExponent {
		n = maxBackoffExponent
	}
	return time.Second << n
}

// ServerConfig はワーカーサーバーの設定を組み立てます。
func ServerConfig(cfg Config, w *Worker) asynq.Config {
	return asynq.Config{
		Concurrency:    cfg.Concurrency,
		Queues:         map[string]int{cfg.Queue: 1},
		RetryDelayFunc: RetryDelay,
		ErrorHandler:   asynq.ErrorHandlerFunc(w.HandleError),
		Logger:         w.logger.Sugar(),
	}
}
