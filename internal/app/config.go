package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/macedolvs/custodia-backend/internal/platform/envutil"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

type Config struct {
	Port         string        `yaml:"port"`
	LogMode      string        `yaml:"log_mode"`
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"-"`
	TokenTTLSecs int           `yaml:"token_ttl_seconds"`
	AllowOrigins []string      `yaml:"allow_origins"`
	Environment  string        `yaml:"environment"`
	Version      string        `yaml:"version"`
}

// LoadConfig reads the environment, with an optional YAML file (CONFIG_FILE)
// as the base layer. Environment variables win over the file.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:         "8080",
		LogMode:      "development",
		JWTSecretKey: "defaultsecret",
		TokenTTLSecs: 3600,
		Environment:  "development",
		Version:      "dev",
	}

	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
		log.Info("config file loaded", "path", path)
	}

	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.TokenTTLSecs = envutil.Int("ACCESS_TOKEN_TTL", cfg.TokenTTLSecs)
	cfg.Environment = envutil.String("ENVIRONMENT", cfg.Environment)
	cfg.Version = envutil.String("VERSION", cfg.Version)
	cfg.TokenTTL = time.Duration(cfg.TokenTTLSecs) * time.Second

	return cfg, nil
}
