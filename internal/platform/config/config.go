// Package config loads process configuration from the environment.
//
// A local .env file is read first when present; real environment variables win.
// Each platform package owns a LoadConfig(*viper.Viper) that reads its own keys.
package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the optional .env files and returns a viper instance bound to the environment.
func Load(files ...string) (*viper.Viper, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return New(), nil
}

// New returns a viper instance that resolves keys from environment variables.
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("HTTP_ADDR", ":8080")

	return v
}

// IsDevelopment reports whether APP_ENV is "development".
func IsDevelopment(v *viper.Viper) bool {
	return v.GetString("APP_ENV") == "development"
}
