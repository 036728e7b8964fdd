// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full server configuration. GEMINI_API_KEY is optional:
// without it the recommendation pipeline runs in degraded mode and the
// advisor chat is disabled. JWT_SECRET is required.
type Config struct {
	Port         int        `env:"PORT" envDefault:"8080"`
	DBPath       string     `env:"DB_PATH" envDefault:"data/careercompass.db"`
	JWTSecret    string     `env:"JWT_SECRET"`
	GeminiAPIKey string     `env:"GEMINI_API_KEY"`
	GeminiModel  string     `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	LogLevel     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	return cfg, nil
}
