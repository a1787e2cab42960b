package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Notifier backends selectable with NOTIFIER.
const (
	NotifierTwilio  = "twilio"
	NotifierWebhook = "webhook"
	NotifierLog     = "log"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; Validate reports combinations that
// cannot work (e.g. NOTIFIER=twilio without credentials).
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database (empty URL = in-memory stores)
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrationsPath string

	// Data files
	IntakeSchemaPath string
	FacilitiesPath   string

	// Worker pool. RetryMaxAttempts of 0 retries transient failures forever.
	Workers          int
	RetryDelay       time.Duration
	RetryMaxAttempts int

	// Review backlog monitor
	BacklogCheckInterval time.Duration
	BacklogWarnAfter     time.Duration

	// Facility matching
	SearchRadiusKm float64
	MaxFacilities  int

	// Outbound notifications
	Notifier         string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	TwilioBaseURL    string
	WebhookURL       string
	NotifyTimeout    time.Duration
	NotifyRatePerSec int
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxConns:     int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:     int32(getInt("DB_MIN_CONNS", 2)),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),

		IntakeSchemaPath: getEnv("INTAKE_SCHEMA_PATH", "schema.yaml"),
		FacilitiesPath:   getEnv("FACILITIES_PATH", "facilities.yaml"),

		Workers:          getInt("WORKERS", 2),
		RetryDelay:       getDuration("RETRY_DELAY", time.Second),
		RetryMaxAttempts: getInt("RETRY_MAX_ATTEMPTS", 0),

		BacklogCheckInterval: getDuration("BACKLOG_CHECK_INTERVAL", 30*time.Second),
		BacklogWarnAfter:     getDuration("BACKLOG_WARN_AFTER", 15*time.Minute),

		SearchRadiusKm: getFloat("SEARCH_RADIUS_KM", 40),
		MaxFacilities:  getInt("MAX_FACILITIES", 3),

		Notifier:         getEnv("NOTIFIER", NotifierTwilio),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		TwilioBaseURL:    getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),
		NotifyTimeout:    getDuration("NOTIFY_TIMEOUT", 10*time.Second),
		NotifyRatePerSec: getInt("NOTIFY_RATE_LIMIT", 1),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks all configuration fields for correctness and returns every
// problem found joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("WORKERS must be positive, got %d", c.Workers))
	}
	if c.RetryDelay <= 0 {
		errs = append(errs, fmt.Errorf("RETRY_DELAY must be positive, got %s", c.RetryDelay))
	}
	if c.RetryMaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("RETRY_MAX_ATTEMPTS must be >= 0, got %d", c.RetryMaxAttempts))
	}
	if c.BacklogCheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("BACKLOG_CHECK_INTERVAL must be positive, got %s", c.BacklogCheckInterval))
	}
	if c.SearchRadiusKm <= 0 {
		errs = append(errs, fmt.Errorf("SEARCH_RADIUS_KM must be positive, got %g", c.SearchRadiusKm))
	}
	if c.MaxFacilities <= 0 {
		errs = append(errs, fmt.Errorf("MAX_FACILITIES must be positive, got %d", c.MaxFacilities))
	}
	if c.NotifyRatePerSec <= 0 {
		errs = append(errs, fmt.Errorf("NOTIFY_RATE_LIMIT must be positive, got %d", c.NotifyRatePerSec))
	}

	switch c.Notifier {
	case NotifierTwilio:
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioFromNumber == "" {
			errs = append(errs, errors.New("NOTIFIER=twilio requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER"))
		}
	case NotifierWebhook:
		if c.WebhookURL == "" {
			errs = append(errs, errors.New("NOTIFIER=webhook requires WEBHOOK_URL"))
		}
	case NotifierLog:
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFIER %q (want twilio, webhook or log)", c.Notifier))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
