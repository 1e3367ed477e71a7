// Package ratelimiter はクライアントごとのリクエスト頻度を制限します。
package ratelimiter

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter は、キー（クライアントIPなど）ごとの操作頻度を判定するインターフェースです。
type Limiter interface {
	Allow(key string) bool
}

// Config はレート制限の設定です。interval あたり limit 回まで許可します。
type Config struct {
	Limit    int
	Interval time.Duration
}

// LoadConfig は AUTH_RATE_LIMIT と AUTH_RATE_INTERVAL を読み込みます。
func LoadConfig(v *viper.Viper) (Config, error) {
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("AUTH_RATE_INTERVAL", time.Minute)

	cfg := Config{
		Limit:    v.GetInt("AUTH_RATE_LIMIT"),
		Interval: v.GetDuration("AUTH_RATE_INTERVAL"),
	}
	if cfg.Limit <= 0 {
		return Config{}, errors.New("AUTH_RATE_LIMIT must be positive")
	}
	if cfg.Interval <= 0 {
		return Config{}, errors.New("AUTH_RATE_INTERVAL must be positive")
	}
	return cfg, nil
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter はキーごとにトークンバケットを持ちます。
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(cfg Config) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(float64(cfg.Limit) / cfg.Interval.Seconds()),
		burst:    cfg.Limit,
		idleTTL:  cfg.Interval * 3,
		now:      time.Now,
		visitors: make(map[string]*visitor),
		lastGC:   time.Now(),
	}
}

// Allow はkeyのバケットからトークンを1つ消費できればtrueを返します。
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evictIdle(now)

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// evictIdle は一定時間アクセスのないキーを削除します。呼び出し側でロックを保持してください。
func (rl *RateLimiter) evictIdle(now time.Time) {
	if now.Sub(rl.lastGC) < rl.idleTTL {
		return
	}
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= rl.idleTTL {
			delete(rl.visitors, key)
		}
	}
	rl.lastGC = now
}

// Middleware はクライアントIPごとにリクエストを制限するGinミドルウェアを返します。
// 上限を超えたリクエストは429で中断します。
func Middleware(l Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			logger.Warn("rate limit exceeded",
				zap.String("remote_addr", ip),
				zap.String("path", c.FullPath()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "TOO_MANY_REQUESTS",
					"message": "Too many requests, please try again later",
				},
			})
			return
		}
		c.Next()
	}
}
