package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	"blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/platform/http/handler"
	"blog_backend/internal/shared/ratelimiter"
)

// stubAuth answers every operation with a fixed success.
type stubAuth struct{}

func (stubAuth) CreateUser(context.Context, usecase.CreateUserInput) (*usecase.CreateUserResult, error) {
	return &usecase.CreateUserResult{Token: "t", User: &entity.User{ID: 1}}, nil
}

func (stubAuth) SignIn(context.Context, usecase.SignInInput) (*usecase.SignInResult, error) {
	return &usecase.SignInResult{Message: "ok"}, nil
}

func (stubAuth) SendOtp(context.Context, string, usecase.SendOtpInput) (*usecase.SendOtpResult, error) {
	return &usecase.SendOtpResult{Success: true}, nil
}

func (stubAuth) VerifyOtp(context.Context, string, usecase.VerifyOtpInput) (*usecase.VerifyOtpResult, error) {
	return &usecase.VerifyOtpResult{Success: true}, nil
}

func (stubAuth) CurrentUser(_ context.Context, id uint) (*entity.User, error) {
	return &entity.User{ID: id}, nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*entity.SessionClaims, error) {
	if token != "valid" {
		return nil, domain.ErrUnauthorized
	}
	return &entity.SessionClaims{UserID: 3}, nil
}

func newTestRouter(redisErr error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(Deps{
		Auth: authhandler.NewAuthHandler(stubAuth{}, authhandler.CookieConfig{}, zap.NewNop()),
		Health: handler.NewHealthHandler(map[string]handler.Checker{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return redisErr },
		}),
		Verifier: stubVerifier{},
		Limiter:  ratelimiter.NewRateLimiter(ratelimiter.Config{Limit: 2, Interval: time.Hour}),
		Logger:   zap.NewNop(),
	})
}

func serve(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewRouter_Routes(t *testing.T) {
	r := newTestRouter(nil)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"healthz", http.MethodGet, "/healthz", "", http.StatusOK},
		{"healthz head", http.MethodHead, "/healthz", "", http.StatusOK},
		{"register", http.MethodPost, "/auth/register", "", http.StatusCreated},
		{"me without token", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"me with token", http.MethodGet, "/me", "valid", http.StatusOK},
		{"unknown route", http.MethodGet, "/candles/AAPL", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.method, tt.path, tt.auth)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestNewRouter_HealthReportsDependencyFailure(t *testing.T) {
	r := newTestRouter(errors.New("redis down"))

	w := serve(r, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"down"`)
}

func TestNewRouter_AuthRoutesAreRateLimited(t *testing.T) {
	r := newTestRouter(nil)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/auth/signin", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/auth/otp/send", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/auth/otp/verify", "").Code)

	// Health checks are not limited
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "").Code)
}
