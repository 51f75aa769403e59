package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for both binaries.
type AppConfig struct {
	LogLevel    string
	Environment string

	// Reminder automation
	PaymentsSheetPath  string
	CalendarDir        string
	ReminderEmail      string // attendee for email alarms
	DatabaseURL        string // PostgreSQL; SQLite is used when empty
	SQLitePath         string
	RecordsPropertyKey string
	TimeZone           *time.Location
	EventStart         time.Duration // offset from midnight
	EventDuration      time.Duration
	PopupMinutes       int
	EmailMinutes       int
	MaxPerRun          int
	InterCallDelay     time.Duration
	MaxRetries         int
	CronSpecReminders  string

	// Telegram control channel, optional
	TelegramToken     string
	AdminTelegramID   int64
	ManagerTelegramID int64

	// Schedule generator
	StudyFile string
	OutputDir string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.PaymentsSheetPath = envOr("PAYMENTS_SHEET_PATH", "payments.csv")
	cfg.CalendarDir = envOr("CALENDAR_DIR", "calendar")
	cfg.ReminderEmail = os.Getenv("REMINDER_EMAIL")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SQLitePath = envOr("SQLITE_PATH", "field_study_ops.db")
	cfg.RecordsPropertyKey = envOr("RECORDS_PROPERTY_KEY", "DAILY_REMINDER_EVENTS")
	cfg.CronSpecReminders = envOr("CRON_SPEC_REMINDERS", "0 7 * * *") // Default: 07:00 daily

	tz := envOr("TIME_ZONE", "UTC")
	if cfg.TimeZone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", tz, err)
	}

	start := envOr("EVENT_START", "09:00")
	if cfg.EventStart, err = ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("invalid EVENT_START: %w", err)
	}

	if cfg.EventDuration, err = envDuration("EVENT_DURATION", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.InterCallDelay, err = envDuration("INTER_CALL_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.PopupMinutes, err = envInt("POPUP_REMINDER_MINUTES", 10); err != nil {
		return nil, err
	}
	if cfg.EmailMinutes, err = envInt("EMAIL_REMINDER_MINUTES", 24*60); err != nil {
		return nil, err
	}
	if cfg.MaxPerRun, err = envInt("MAX_EVENTS_PER_RUN", 40); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = envInt("MAX_RETRIES", 5); err != nil {
		return nil, err
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}
	if managerIDStr := os.Getenv("MANAGER_TELEGRAM_ID"); managerIDStr != "" {
		cfg.ManagerTelegramID, err = strconv.ParseInt(managerIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MANAGER_TELEGRAM_ID: %w", err)
		}
	}
	if cfg.TelegramToken != "" && cfg.AdminTelegramID == 0 {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}

	cfg.StudyFile = envOr("STUDY_FILE", "study.yaml")
	cfg.OutputDir = envOr("SCHEDULE_OUTPUT_DIR", "schedules")

	return cfg, nil
}

// ParseTimeOfDay turns "HH:MM" into an offset from midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("time of day %q must be HH:MM: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
