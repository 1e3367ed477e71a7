// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/transport/http/dto"
	"blog_backend/internal/feature/auth/usecase"
	jwtmw "blog_backend/internal/platform/jwt"
)

// cookieMaxAge は authToken クッキーの有効期間（2日）です。
const cookieMaxAge = 2 * 24 * 60 * 60

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	CreateUser(ctx context.Context, in usecase.CreateUserInput) (*usecase.CreateUserResult, error)
	SignIn(ctx context.Context, in usecase.SignInInput) (*usecase.SignInResult, error)
	SendOtp(ctx context.Context, bearerToken string, in usecase.SendOtpInput) (*usecase.SendOtpResult, error)
	VerifyOtp(ctx context.Context, bearerToken string, in usecase.VerifyOtpInput) (*usecase.VerifyOtpResult, error)
	CurrentUser(ctx context.Context, userID uint) (*entity.User, error)
}

// CookieConfig は authToken クッキーの属性です。
type CookieConfig struct {
	// Secure は本番環境でtrueにします。
	Secure bool
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth   AuthUsecase
	cookie CookieConfig
	logger *zap.Logger
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, cookie CookieConfig, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: auth, cookie: cookie, logger: logger}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 成功時は201とトークンを返し、authTokenクッキーを設定
// - 入力違反はすべてdetailsに列挙して400を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if !h.bind(c, &req) {
		return
	}
	res, err := h.auth.CreateUser(c.Request.Context(), usecase.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.writeError(c, "register", err)
		return
	}
	h.setAuthCookie(c, res.Token)
	h.logger.Info("user registered", zap.Uint("user_id", res.User.ID), zap.String("remote_addr", c.ClientIP()))
	c.JSON(http.StatusCreated, dto.RegisterRes{
		Token:   res.Token,
		User:    dto.NewUserRes(res.User),
		Message: res.Message,
	})
}

// SignIn はサインインAPIエンドポイントを処理します。トークンはOTP検証後に発行されます。
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInReq
	if !h.bind(c, &req) {
		return
	}
	res, err := h.auth.SignIn(c.Request.Context(), usecase.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, "signin", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: res.Message})
}

// SendOtp はOTP再送APIエンドポイントを処理します。
func (h *AuthHandler) SendOtp(c *gin.Context) {
	var req dto.SendOtpReq
	if !h.bind(c, &req) {
		return
	}
	res, err := h.auth.SendOtp(c.Request.Context(), jwtmw.TokenFromRequest(c), usecase.SendOtpInput{
		Identifier: req.Identifier,
		Purpose:    entity.Purpose(req.Purpose),
	})
	if err != nil {
		h.writeError(c, "send otp", err)
		return
	}
	c.JSON(http.StatusOK, dto.OtpRes{Success: res.Success, Message: res.Message})
}

// VerifyOtp はOTP検証APIエンドポイントを処理します。
// LOGINの検証に成功した場合のみトークンを返し、authTokenクッキーを設定します。
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req dto.VerifyOtpReq
	if !h.bind(c, &req) {
		return
	}
	res, err := h.auth.VerifyOtp(c.Request.Context(), jwtmw.TokenFromRequest(c), usecase.VerifyOtpInput{
		Otp:        req.Otp,
		Identifier: req.Identifier,
		Purpose:    entity.Purpose(req.Purpose),
	})
	if err != nil {
		h.writeError(c, "verify otp", err)
		return
	}
	if res.Token != "" {
		h.setAuthCookie(c, res.Token)
	}
	c.JSON(http.StatusOK, dto.OtpRes{
		Success: res.Success,
		Message: res.Message,
		User:    dto.NewUserRes(res.User),
		Token:   res.Token,
	})
}

// Me は認証済みユーザーの情報を返します。jwtmw.AuthRequired の後段で使用します。
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), c.GetUint(jwtmw.ContextUserID))
	if err != nil {
		h.writeError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// bind はJSONボディをdstに読み込みます。失敗時は400を書き込みfalseを返します。
func (h *AuthHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Debug("malformed request body", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		h.writeError(c, "bind", domain.InvalidInput([]string{"Request body must be a valid JSON object"}))
		return false
	}
	return true
}

// writeError はエラーを分類に従ってHTTPレスポンスに変換します。
// 内部エラーの原因はクライアントに公開しません。
func (h *AuthHandler) writeError(c *gin.Context, op string, err error) {
	de := domain.Normalize(err)
	status := de.Kind.Status()
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.String("code", de.Kind.Code()), zap.String("remote_addr", c.ClientIP()))
	} else {
		h.logger.Warn(op+" rejected", zap.String("code", de.Kind.Code()), zap.String("remote_addr", c.ClientIP()))
	}
	c.JSON(status, dto.ErrorRes{Error: dto.ErrorBody{
		Code:    de.Kind.Code(),
		Message: de.Message,
		Details: de.Details,
	}})
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(jwtmw.CookieName, token, cookieMaxAge, "/", "", h.cookie.Secure, true)
}
