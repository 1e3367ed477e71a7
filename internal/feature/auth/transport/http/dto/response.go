package dto

import (
	"time"

	"blog_backend/internal/feature/auth/domain/entity"
)

// UserRes はクライアントに返すユーザー情報です。パスワード関連のフィールドは含みません。
type UserRes struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	IsVerified    bool      `json:"isVerified"`
	IsActive      bool      `json:"isActive"`
	OtpResetCount int       `json:"otpResetCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewUserRes はentity.UserからUserResを生成します。nilの場合はnilを返します。
func NewUserRes(u *entity.User) *UserRes {
	if u == nil {
		return nil
	}
	return &UserRes{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		IsVerified:    u.IsVerified,
		IsActive:      u.IsActive,
		OtpResetCount: u.OtpResetCount,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// RegisterRes は登録成功時のレスポンスです。
type RegisterRes struct {
	Token   string   `json:"token"`
	User    *UserRes `json:"user"`
	Message string   `json:"message"`
}

// MessageRes はメッセージのみのレスポンスです。
type MessageRes struct {
	Message string `json:"message"`
}

// OtpRes はOTP送信・検証のレスポンスです。UserとTokenはLOGIN検証時のみ設定されます。
type OtpRes struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    *UserRes `json:"user,omitempty"`
	Token   string   `json:"token,omitempty"`
}

// ErrorBody はエラーの詳細です。
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// ErrorRes はすべてのエラーレスポンスの共通形式です。
type ErrorRes struct {
	Error ErrorBody `json:"error"`
}
