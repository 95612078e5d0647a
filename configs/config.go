package configs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var ErrMissingSecret = errors.New("SECRET_KEY is not set")

type Config struct {
	Port string `env:"PORT" env-default:"8080"`

	DBURL      string `env:"DB_URL"`
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     int    `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" env-default:"tugas"`
	DBSSLMode  string `env:"DB_SSLMODE" env-default:"disable"`

	SecretKey  string        `env:"SECRET_KEY"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" env-default:"24h"`
	BcryptCost int           `env:"BCRYPT_COST" env-default:"10"`

	// Redis kosong = cache dimatikan
	RedisHost     string        `env:"REDIS_HOST"`
	RedisPort     int           `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" env-default:"1h"`

	TaskEncryptionKey string `env:"TASK_ENCRYPTION_KEY"`

	LogDir      string `env:"LOG_DIR"`
	CORSOrigins string `env:"CORS_ORIGINS" env-default:"*"`
}

// DSN returns the Postgres connection string, preferring DB_URL when set.
func (c Config) DSN() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (Config, error) {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using environment only")
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if cfg.SecretKey == "" {
		return Config{}, ErrMissingSecret
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return cfg, nil
}
