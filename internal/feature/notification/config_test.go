package notification

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig(viper.New())

		require.NoError(t, err)
		assert.Equal(t, Config{Queue: "email", Attempts: 3, Retention: 5 * time.Minute, Concurrency: 10}, cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		v := viper.New()
		v.Set("EMAIL_QUEUE", "mail-high")
		v.Set("EMAIL_QUEUE_ATTEMPTS", "5")
		v.Set("WORKER_CONCURRENCY", "4")

		cfg, err := LoadConfig(v)

		require.NoError(t, err)
		assert.Equal(t, "mail-high", cfg.Queue)
		assert.Equal(t, 5, cfg.Attempts)
		assert.Equal(t, 4, cfg.Concurrency)
	})

	t.Run("zero attempts rejected", func(t *testing.T) {
		v := viper.New()
		v.Set("EMAIL_QUEUE_ATTEMPTS", "0")

		_, err := LoadConfig(v)

		assert.Error(t, err)
	})
}
