package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds process-wide settings. It is built once at startup and
// handed to the components that need it.
type Config struct {
	SecretKey   string        `env:"QUORUM_SECRET_KEY,required,notEmpty"`
	DatabaseURL string        `env:"QUORUM_DATABASE_URL,required,notEmpty"`
	Port        int           `env:"QUORUM_PORT" envDefault:"8080"`
	TokenTTL    time.Duration `env:"QUORUM_TOKEN_TTL" envDefault:"5h"`
	BcryptCost  int           `env:"QUORUM_BCRYPT_COST" envDefault:"10"`
	LogLevel    string        `env:"QUORUM_LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"QUORUM_LOG_FORMAT" envDefault:"json"`
	GinMode     string        `env:"QUORUM_GIN_MODE" envDefault:"release"`
}

// Load reads an optional .env file from the given paths and then parses the
// environment into a Config.
func Load(envFiles ...string) (Config, error) {
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the env tags cannot express.
func (c Config) Validate() error {
	if c.TokenTTL <= 0 {
		return fmt.Errorf("QUORUM_TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("QUORUM_BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("QUORUM_PORT out of range: %d", c.Port)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("QUORUM_LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("QUORUM_GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
