// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// defaultCheckTimeout は依存先1つあたりの疎通確認の上限時間です。
const defaultCheckTimeout = 2 * time.Second

// Checker は依存先の疎通を確認します。nilを返せば正常です。
type Checker func(ctx context.Context) error

// HealthHandler は /healthz を処理します。
type HealthHandler struct {
	checks  map[string]Checker
	timeout time.Duration
}

// NewHealthHandler は名前付きの依存先チェックを持つHealthHandlerを生成します。
func NewHealthHandler(checks map[string]Checker) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: defaultCheckTimeout}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// すべての依存先が正常なら200、1つでも異常なら503を返します。キャッシュは常に防止します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	results, healthy := h.run(c.Request.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}

	body := gin.H{"status": "ok", "checks": results}
	if !healthy {
		body["status"] = "unavailable"
	}
	c.JSON(status, body)
}

// run は全チェックを並行に実行し、名前ごとの結果を返します。
func (h *HealthHandler) run(ctx context.Context) (map[string]string, bool) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := make([]error, len(names))
	var g errgroup.Group
	for i, name := range names {
		check := h.checks[name]
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()
			errs[i] = check(cctx)
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]string, len(names))
	healthy := true
	for i, name := range names {
		if errs[i] != nil {
			results[name] = "down"
			healthy = false
			continue
		}
		results[name] = "ok"
	}
	return results, healthy
}
