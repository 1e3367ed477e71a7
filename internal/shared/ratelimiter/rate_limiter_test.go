package ratelimiter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func newTestLimiter(limit int, interval time.Duration) (*RateLimiter, *time.Time) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(Config{Limit: limit, Interval: interval})
	rl.now = func() time.Time { return now }
	rl.lastGC = now
	return rl, &now
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]any
		want    Config
		wantErr bool
	}{
		{
			name: "defaults",
			env:  nil,
			want: Config{Limit: 20, Interval: time.Minute},
		},
		{
			name: "overrides",
			env:  map[string]any{"AUTH_RATE_LIMIT": 5, "AUTH_RATE_INTERVAL": "10s"},
			want: Config{Limit: 5, Interval: 10 * time.Second},
		},
		{
			name:    "zero limit",
			env:     map[string]any{"AUTH_RATE_LIMIT": 0},
			wantErr: true,
		},
		{
			name:    "negative interval",
			env:     map[string]any{"AUTH_RATE_INTERVAL": "-1s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.env {
				v.Set(k, val)
			}
			got, err := LoadConfig(v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d should pass", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"), "burst exhausted")

	// Other keys have their own bucket
	assert.True(t, rl.Allow("5.6.7.8"))

	// One token refills every interval/limit
	*now = now.Add(20 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
}

func TestRateLimiter_SubNanosecondRefill(t *testing.T) {
	// interval/limit is below 1ns here; the bucket must still hold only limit tokens.
	rl, _ := newTestLimiter(1000, time.Microsecond)

	assert.NotEqual(t, rate.Inf, rl.limit)
	for i := 0; i < 1000; i++ {
		require.True(t, rl.Allow("1.2.3.4"), "request %d should pass", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"), "burst exhausted")
}

func TestRateLimiter_EvictsIdleKeys(t *testing.T) {
	rl, now := newTestLimiter(1, time.Minute)

	require.True(t, rl.Allow("1.2.3.4"))
	require.Len(t, rl.visitors, 1)

	*now = now.Add(5 * time.Minute)
	require.True(t, rl.Allow("5.6.7.8"))

	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "5.6.7.8")
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl, _ := newTestLimiter(2, time.Minute)
	router := gin.New()
	router.Use(Middleware(rl, zap.NewNop()))
	router.POST("/auth/signin", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
}
