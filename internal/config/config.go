package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Local snapshot database
	SnapshotDBPath string

	// Remote backend selection
	RemoteBackend string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// AMQP (optional; when set, mutations are dispatched through the
	// worker queue instead of calling the remote store directly)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Tracker behavior
	BaseYear   int
	ExtraGroup string

	// Worker
	SyncInterval time.Duration
}

func Load() *Config {
	return &Config{
		SnapshotDBPath: getEnv("SNAPSHOT_DB_PATH", "./data/contas.db"),

		RemoteBackend: getEnv("REMOTE_BACKEND", "memory"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Bills"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "contas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_bills"),

		BaseYear:   getEnvInt("BASE_YEAR", time.Now().Year()),
		ExtraGroup: getEnv("EXTRA_GROUP", "Extra"),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 30*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.SnapshotDBPath == "" {
		errs = append(errs, "snapshot database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SnapshotDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create snapshot directory '%s': %v", dir, err))
				}
			}
		}
	}

	validBackends := []string{"memory", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.RemoteBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid remote backend '%s': must be one of %v", c.RemoteBackend, validBackends))
	}

	if c.RemoteBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errs = append(errs, "Google Sheet name is required when using sheets backend")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.BaseYear < 1970 || c.BaseYear > 2999 {
		errs = append(errs, fmt.Sprintf("invalid base year %d", c.BaseYear))
	}
	if strings.TrimSpace(c.ExtraGroup) == "" {
		errs = append(errs, "extra group name cannot be empty")
	}

	if c.SyncInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
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
