package jwtmw

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// EnvKeyJWTSecret is the environment variable holding the signing secret.
const EnvKeyJWTSecret = "JWT_SECRET"

// Config holds the token settings. Secret must never be logged.
type Config struct {
	Secret     string
	Expiration time.Duration
}

// LoadConfig reads JWT_SECRET and JWT_EXPIRATION. The secret has no default.
func LoadConfig(v *viper.Viper) (Config, error) {
	v.SetDefault("JWT_EXPIRATION", DefaultExpiration)

	cfg := Config{
		Secret:     v.GetString(EnvKeyJWTSecret),
		Expiration: v.GetDuration("JWT_EXPIRATION"),
	}
	if cfg.Secret == "" {
		return Config{}, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}
