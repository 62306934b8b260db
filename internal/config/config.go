package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kakeibo/internal/core"
)

type Config struct {
	// HTTP server
	Port     string
	LogLevel string

	// Ledger backend
	DataBackend  string // "memory" or "sqlite"
	SQLiteDBPath string

	// Change-notification feed
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	PollInterval time.Duration

	// Google Sheets mirror (optional)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Local identity / participant choice
	SettingsPath string

	// Contest rules
	ParticipantA string
	ParticipantB string
	GoalA        string // decimal string, e.g. "80000"
	GoalB        string
	HandicapNum  int64
	HandicapDen  int64
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8082"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/kakeibo.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kakeibo"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_changes"),
		PollInterval: getEnvDuration("FEED_POLL_INTERVAL", 30*time.Second),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Contest"),

		SettingsPath: getEnv("SETTINGS_PATH", "./data/settings.json"),

		ParticipantA: getEnv("PARTICIPANT_A", "Sota"),
		ParticipantB: getEnv("PARTICIPANT_B", "Renma"),
		GoalA:        getEnv("GOAL_A", "80000"),
		GoalB:        getEnv("GOAL_B", "120000"),
		HandicapNum:  getEnvInt64("HANDICAP_NUM", 3),
		HandicapDen:  getEnvInt64("HANDICAP_DEN", 2),
	}
}

// Rules builds the contest rules from the configured names, goals, and
// handicap ratio. Call Validate first; Rules assumes the goals parse.
func (c *Config) Rules() (core.Rules, error) {
	goalA, err := core.ParseDecimalToCents(c.GoalA)
	if err != nil {
		return core.Rules{}, fmt.Errorf("parse goal A %q: %w", c.GoalA, err)
	}
	goalB, err := core.ParseDecimalToCents(c.GoalB)
	if err != nil {
		return core.Rules{}, fmt.Errorf("parse goal B %q: %w", c.GoalB, err)
	}
	r := core.Rules{
		A:           core.Participant(c.ParticipantA),
		B:           core.Participant(c.ParticipantB),
		GoalA:       core.Money{Cents: goalA},
		GoalB:       core.Money{Cents: goalB},
		HandicapNum: c.HandicapNum,
		HandicapDen: c.HandicapDen,
	}
	if err := r.Validate(); err != nil {
		return core.Rules{}, err
	}
	return r, nil
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite]", c.DataBackend))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.PollInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid feed poll interval %v: must be at least 1 second", c.PollInterval))
	} else if c.PollInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid feed poll interval %v: must be at most 24 hours", c.PollInterval))
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errs = append(errs, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if c.SettingsPath == "" {
		errs = append(errs, "settings path cannot be empty")
	}

	if _, err := c.Rules(); err != nil {
		errs = append(errs, fmt.Sprintf("invalid contest rules: %v", err))
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
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
