package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Remote document store
	RemoteEndpoint    string
	RemoteContentType string
	RemoteTimeout     time.Duration

	// SQLite
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// AMQP event notifications (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Seed fallback
	SeedYear  int
	SeedMonth int
	SeedCount int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		RemoteEndpoint:    getEnv("REMOTE_ENDPOINT", ""),
		RemoteContentType: getEnv("REMOTE_CONTENT_TYPE", "text"),
		RemoteTimeout:     getEnvDuration("REMOTE_TIMEOUT", 30*time.Second),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/plan.db"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kimono-sim"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "plan_events"),

		SeedYear:  getEnvInt("SEED_YEAR", 2025),
		SeedMonth: getEnvInt("SEED_MONTH", 9),
		SeedCount: getEnvInt("SEED_COUNT", 16),
	}
}

// Validate validates the configuration and returns an error listing
// every problem found.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory", "remote", "sqlite", "sheets":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [memory remote sqlite sheets]", c.DataBackend))
	}

	if c.DataBackend == "remote" {
		if c.RemoteEndpoint == "" {
			errs = append(errs, "REMOTE_ENDPOINT is required when using remote backend")
		} else if u, err := url.Parse(c.RemoteEndpoint); err != nil {
			errs = append(errs, fmt.Sprintf("invalid remote endpoint '%s': %v", c.RemoteEndpoint, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid remote endpoint scheme '%s': must be http or https", u.Scheme))
		}
		if c.RemoteContentType != "text" && c.RemoteContentType != "json" {
			errs = append(errs, fmt.Sprintf("invalid remote content type '%s': must be 'text' or 'json'", c.RemoteContentType))
		}
		if c.RemoteTimeout < time.Second || c.RemoteTimeout > 5*time.Minute {
			errs = append(errs, fmt.Sprintf("invalid remote timeout %v: must be between 1s and 5m", c.RemoteTimeout))
		}
	}

	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLITE_DB_PATH cannot be empty when using sqlite backend")
	}

	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "GOOGLE_SPREADSHEET_ID is required when using sheets backend")
		}
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SeedMonth < 1 || c.SeedMonth > 12 {
		errs = append(errs, fmt.Sprintf("invalid seed month %d: must be between 1 and 12", c.SeedMonth))
	}
	if c.SeedCount < 1 || c.SeedCount > 120 {
		errs = append(errs, fmt.Sprintf("invalid seed count %d: must be between 1 and 120", c.SeedCount))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
