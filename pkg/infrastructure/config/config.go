package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the tracker
type Config struct {
	Input       InputConfig
	Assignments string
	Addresses   string
	DatabaseURL string
	SMTP        SMTPConfig
	Delivery    DeliveryConfig
	HTTP        HTTPConfig
	Log         LogConfig
}

// InputConfig locates the requisition log
type InputConfig struct {
	Path     string
	Sheet    string
	Encoding string
}

// SMTPConfig holds the outbound mail server settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// DeliveryConfig tunes digest delivery
type DeliveryConfig struct {
	Concurrency   int
	RatePerSecond float64
	MaxAttempts   int
	InitialDelay  time.Duration
}

type HTTPConfig struct {
	Addr string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the optional env files (".env" when none is given) and then the environment.
// Variables already set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	config := &Config{
		Input: InputConfig{
			Path:     getEnv("ACOMPREQ_INPUT", "AcompReq.xlsx"),
			Sheet:    getEnv("ACOMPREQ_SHEET", ""),
			Encoding: getEnv("ACOMPREQ_ENCODING", "utf-8"),
		},
		Assignments: getEnv("ACOMPREQ_ASSIGNMENTS", ""),
		Addresses:   getEnv("ACOMPREQ_ADDRESSES", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Delivery: DeliveryConfig{
			Concurrency:   getEnvInt("DELIVERY_CONCURRENCY", 4),
			RatePerSecond: getEnvFloat("DELIVERY_RATE", 2),
			MaxAttempts:   getEnvInt("DELIVERY_MAX_ATTEMPTS", 3),
			InitialDelay:  getEnvDuration("DELIVERY_INITIAL_DELAY", 500*time.Millisecond),
		},
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	return config, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Input.Path) == "" {
		errs = append(errs, errors.New("input path is required"))
	}
	if c.Assignments != "" && c.DatabaseURL != "" {
		errs = append(errs, errors.New("assignments file and database url are mutually exclusive"))
	}
	if c.Delivery.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("delivery concurrency must be positive, got %d", c.Delivery.Concurrency))
	}
	if c.Delivery.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("delivery max attempts must be positive, got %d", c.Delivery.MaxAttempts))
	}
	if c.Delivery.RatePerSecond < 0 {
		errs = append(errs, fmt.Errorf("delivery rate cannot be negative, got %g", c.Delivery.RatePerSecond))
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		errs = append(errs, errors.New("smtp sender address is required when smtp host is set"))
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid smtp port %d", c.SMTP.Port))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Addr returns the host:port of the mail server
func (c SMTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ParseLevel maps a level name to its slog level
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
	return l, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}
