// Package notification はOTPメールの非同期配信を扱います。
// APIプロセスはタスクをキューに登録し、ワーカープロセスがSMTPで送信します。
package notification

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"blog_backend/internal/feature/auth/domain/entity"
)

// TypeOTPEmail はOTPメール送信タスクの種別です。
const TypeOTPEmail = "email:send-otp"

// OTPEmailPayload はキューに載せるOTPメールの内容です。
type OTPEmailPayload struct {
	Email   string         `json:"email"`
	Otp     string         `json:"otp"`
	Name    string         `json:"name,omitempty"`
	Purpose entity.Purpose `json:"purpose"`
}

// NewOTPEmailTask はOTP通知からタスクを生成します。
func NewOTPEmailTask(n entity.OtpNotification) (*asynq.Task, error) {
	data, err := json.Marshal(OTPEmailPayload{
		Email:   n.Identifier,
		Otp:     n.Otp,
		Name:    n.Name,
		Purpose: n.Purpose,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal otp email payload: %w", err)
	}
	return asynq.NewTask(TypeOTPEmail, data), nil
}
