package notification

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
)

// Enqueuer はタスクをキューに登録します。*asynq.Clientが満たします。
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher はOTPメールをキューに登録するNotificationDispatcherの実装です。
type Dispatcher struct {
	client Enqueuer
	cfg    Config
	logger *zap.Logger
}

var _ usecase.NotificationDispatcher = (*Dispatcher)(nil)

// NewDispatcher はDispatcherを生成します。
func NewDispatcher(client Enqueuer, cfg Config, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{client: client, cfg: cfg, logger: logger}
}

// DispatchOtp はタスクが永続化された時点で戻ります。配信結果は待ちません。
// 登録に失敗した場合はdomain.ErrQueueUnavailableを返します。
func (d *Dispatcher) DispatchOtp(ctx context.Context, n entity.OtpNotification) error {
	task, err := NewOTPEmailTask(n)
	if err != nil {
		return err
	}

	info, err := d.client.EnqueueContext(ctx, task, d.options()...)
	if err != nil {
		d.logger.Error("failed to enqueue otp email",
			zap.String("queue", d.cfg.Queue),
			zap.String("purpose", string(n.Purpose)),
			zap.Error(err),
		)
		return domain.Wrap(domain.KindQueueUnavailable, domain.ErrQueueUnavailable.Message, err)
	}

	d.logger.Debug("otp email enqueued",
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
		zap.String("purpose", string(n.Purpose)),
	)
	return nil
}

// options は試行回数・キュー・保持期間をタスクごとに指定します。
// バックオフはワーカー側のRetryDelayで計算されます。
func (d *Dispatcher) options() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(d.cfg.Queue),
		asynq.MaxRetry(d.cfg.Attempts - 1),
		asynq.Retention(d.cfg.Retention),
	}
}
