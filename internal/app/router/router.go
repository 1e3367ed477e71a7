// Package router はHTTPルートテーブルを定義します。
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authhandler "blog_backend/internal/feature/auth/transport/handler"
	"blog_backend/internal/platform/http/handler"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/shared/ratelimiter"
)

// Deps はルーターが必要とするハンドラーとミドルウェアの依存です。
type Deps struct {
	Auth     *authhandler.AuthHandler
	Health   *handler.HealthHandler
	Verifier jwtmw.Verifier
	Limiter  ratelimiter.Limiter
	Logger   *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog(d.Logger))

	// 認証不要
	// 導通確認用（DB・Redisの疎通を含む）
	r.GET("/healthz", d.Health.Health)
	r.HEAD("/healthz", d.Health.Health)
	r.OPTIONS("/healthz", d.Health.Health)

	// 認証系はクライアントIPごとにレート制限
	auth := r.Group("/auth")
	auth.Use(ratelimiter.Middleware(d.Limiter, d.Logger))
	{
		// 新規ユーザー登録（JWT 発行 + REGISTER OTP）
		auth.POST("/register", d.Auth.Register)
		// サインイン（LOGIN OTP 送信）
		auth.POST("/signin", d.Auth.SignIn)
		// OTP再送。LOGIN以外はBearerトークンが必要
		auth.POST("/otp/send", d.Auth.SendOtp)
		// OTP検証。LOGINの場合はJWT 発行
		auth.POST("/otp/verify", d.Auth.VerifyOtp)
	}

	// 認証必須のルート
	me := r.Group("/")
	me.Use(jwtmw.AuthRequired(d.Verifier))
	{
		me.GET("/me", d.Auth.Me)
	}

	return r
}

// accessLog はリクエストごとにステータスとレイテンシを記録します。
func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote_addr", c.ClientIP()),
		)
	}
}
