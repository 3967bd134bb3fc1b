package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
)

// Data backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Share targets
const (
	TargetStdout = "stdout"
	TargetFile   = "file"
	TargetAMQP   = "amqp"
	TargetSheets = "sheets"
)

var (
	validBackends = []string{BackendFile, BackendSQLite, BackendS3, BackendMemory}
	validTargets  = []string{TargetStdout, TargetFile, TargetAMQP, TargetSheets}
)

type Config struct {
	// Backend selection
	DataBackend string

	// File backend
	DataFile string

	// SQLite backend
	SQLiteDBPath string
	SQLiteKey    string

	// S3 backend
	S3Bucket   string
	S3Key      string
	S3Region   string
	S3Endpoint string

	// Sharing
	ShareTargets []string
	ExportDir    string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// New month policy
	CarryBalance  bool
	CarryDeferred bool

	Timezone    string
	SaveTimeout time.Duration
	Strict      bool

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	policy := core.DefaultNewMonthPolicy()
	cfg := &Config{
		DataBackend: strings.ToLower(getEnv("DATA_BACKEND", BackendFile)),
		DataFile:    getEnv("DATA_FILE", "./data/expenses_data.json"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budget.db"),
		SQLiteKey:    getEnv("SQLITE_KEY", "months"),

		S3Bucket:   getEnv("S3_BUCKET", ""),
		S3Key:      getEnv("S3_KEY", "expenses_data.json"),
		S3Region:   getEnv("S3_REGION", ""),
		S3Endpoint: getEnv("S3_ENDPOINT", ""),

		ShareTargets: getEnvList("SHARE_TARGETS", []string{TargetStdout}),
		ExportDir:    getEnv("EXPORT_DIR", "./exports"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budget"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_reports"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Reports"),

		CarryBalance:  getEnvBool("CARRY_BALANCE", policy.CarryBalance),
		CarryDeferred: getEnvBool("CARRY_DEFERRED", policy.CarryDeferred),

		Timezone:    getEnv("TIMEZONE", ""),
		SaveTimeout: getEnvDuration("SAVE_TIMEOUT", 10*time.Second),
		Strict:      getEnvBool("STRICT", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate data backend
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendFile:
		if c.DataFile == "" {
			errors = append(errors, "data file path cannot be empty when using file backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
		if c.SQLiteKey == "" {
			errors = append(errors, "SQLite preference key cannot be empty when using sqlite backend")
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errors = append(errors, "S3 bucket is required when using s3 backend")
		}
		if c.S3Key == "" {
			errors = append(errors, "S3 object key cannot be empty when using s3 backend")
		}
		if c.S3Endpoint != "" {
			if u, err := url.Parse(c.S3Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
				errors = append(errors, fmt.Sprintf("invalid S3 endpoint '%s': must be an absolute URL", c.S3Endpoint))
			}
		}
	}

	// Validate share targets
	if len(c.ShareTargets) == 0 {
		errors = append(errors, fmt.Sprintf("at least one share target is required: choose from %v", validTargets))
	}
	for _, target := range c.ShareTargets {
		if !slices.Contains(validTargets, target) {
			errors = append(errors, fmt.Sprintf("invalid share target '%s': must be one of %v", target, validTargets))
		}
	}
	if c.HasShareTarget(TargetFile) && c.ExportDir == "" {
		errors = append(errors, "export directory cannot be empty when sharing to file")
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
	} else if c.HasShareTarget(TargetAMQP) {
		errors = append(errors, "AMQP URL is required when sharing to amqp")
	}

	// Validate AMQP exchange and queue names if AMQP is configured
	if c.AMQPURL != "" {
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate Google Sheets configuration if sharing to sheets
	if c.HasShareTarget(TargetSheets) {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when sharing to sheets")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when sharing to sheets")
		}
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.SaveTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid save timeout %v: must be at least 100ms", c.SaveTimeout))
	} else if c.SaveTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid save timeout %v: must be at most 5 minutes", c.SaveTimeout))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("%v: must be debug, info, warn or error", err))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// HasShareTarget reports whether reports are shared to target.
func (c *Config) HasShareTarget(target string) bool {
	return slices.Contains(c.ShareTargets, target)
}

// Location returns the calendar time zone. An empty Timezone means the
// local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %v", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
