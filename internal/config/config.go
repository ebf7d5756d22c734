package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Limits holds every tunable business rule. The core receives this value at
// construction time; tests inject smaller caps.
type Limits struct {
	MaxPollsPerUser       int
	MaxVotesPerUserPerDay int
	MaxPollOptions        int

	MinTitleLen       int
	MaxTitleLen       int
	MaxDescriptionLen int
	MaxOptionTextLen  int

	MinUsernameLen int
	MaxUsernameLen int
	MaxFullNameLen int

	// Substrings that may not appear in a poll title, matched
	// case-insensitively.
	TitleDenylist []string

	DefaultPageSize int
	MaxPageSize     int

	// Lookback window for the per-user vote cap.
	VoteWindow time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxPollsPerUser:       100,
		MaxVotesPerUserPerDay: 1000,
		MaxPollOptions:        10,
		MinTitleLen:           5,
		MaxTitleLen:           200,
		MaxDescriptionLen:     1000,
		MaxOptionTextLen:      100,
		MinUsernameLen:        3,
		MaxUsernameLen:        50,
		MaxFullNameLen:        100,
		TitleDenylist:         []string{"spam", "<script", "http://", "https://"},
		DefaultPageSize:       10,
		MaxPageSize:           100,
		VoteWindow:            24 * time.Hour,
	}
}

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string
	TokenTTL  time.Duration

	Limits Limits
}

func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:       envOr("PORT", "8080"),
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  envOr("DB_SSLMODE", "disable"),
		JWTSecret:  secret,
		TokenTTL:   30 * time.Minute,
		Limits:     DefaultLimits(),
	}

	if raw := os.Getenv("TOKEN_TTL_MINUTES"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %q", raw)
		}
		cfg.TokenTTL = time.Duration(minutes) * time.Minute
	}

	return cfg, nil
}

// DSN builds the postgres connection string in the form gorm expects.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
