package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
)

// issueOtp はuserとpurpose向けにOTPを発行し、保存とキュー登録を並行に行います。
//
// 上限・再送間隔のチェックと発行回数の確保は並行処理の前に行うため、
// 拒否されたリクエストがメールを送ることはありません。
func (u *authUsecase) issueOtp(ctx context.Context, user *entity.User, purpose entity.Purpose) error {
	if user.OtpResetCount >= u.cfg.OtpResetLimit {
		return domain.ErrOtpResetLimitExceeded
	}
	if err := u.otps.Throttle(ctx, purpose, user.Email); err != nil {
		return err
	}

	rec, err := u.generator.Generate()
	if err != nil {
		return err
	}

	// 上限はDB側で判定するため、同時発行でも上限を超えません。
	if err := u.users.IncrementOtpResetCount(ctx, user.ID, u.cfg.OtpResetLimit); err != nil {
		if errors.Is(err, ErrOtpResetLimitReached) {
			return domain.ErrOtpResetLimitExceeded
		}
		return fmt.Errorf("failed to increment otp reset count: %w", err)
	}
	user.OtpResetCount++

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return u.otps.Save(gctx, purpose, user.Email, rec)
	})
	g.Go(func() error {
		return u.dispatcher.DispatchOtp(gctx, entity.OtpNotification{
			Identifier: user.Email,
			Otp:        rec.Otp,
			Name:       user.Name,
			Purpose:    purpose,
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	u.logger.Debug("otp issued",
		zap.Uint("user_id", user.ID),
		zap.String("purpose", string(purpose)),
	)
	return nil
}
