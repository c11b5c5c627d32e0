package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"qcdt_reminder_bot/internal/domain/holiday"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	TelegramToken string
	ChatID        int64
	Timezone      string
	LogLevel      string
	Environment   string
	BotName       string

	// Trigger times as standard 5-field cron expressions.
	CronSpecHolidaySummary string
	CronSpecDailyReminder  string
	CronSpecDailyPoll      string
	CronSpecCheckin        string

	DailyReminderText   string
	PollQuestion        string
	PollOptions         []string
	PollMultipleAnswers bool
	CheckinQuestion     string

	// NagUsername empty disables the check-in trigger and the nag reminders.
	NagUsername       string
	NagText           string
	NagCadenceMinutes int
	NagWindowStartMin int // minutes from midnight, local time
	NagWindowEndMin   int

	HolidayCountries []holiday.Country
	HolidayAPIBase   string

	TickInterval time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	chatIDStr := os.Getenv("CHAT_ID")
	if chatIDStr == "" {
		return nil, fmt.Errorf("CHAT_ID is not set")
	}
	cfg.ChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_ID: %w", err)
	}

	cfg.Timezone = envOrDefault("TIMEZONE", "Asia/Singapore")
	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envOrDefault("ENVIRONMENT", "development"))
	cfg.BotName = envOrDefault("BOT_NAME", "QCDT bot")

	// Defaults mirror the production schedule: Monday 14:45 holiday summary,
	// weekday 14:50 reminder, weekday 15:00 poll and check-in.
	cfg.CronSpecHolidaySummary = envOrDefault("CRON_SPEC_HOLIDAY_SUMMARY", "45 14 * * 1")
	cfg.CronSpecDailyReminder = envOrDefault("CRON_SPEC_DAILY_REMINDER", "50 14 * * 1-5")
	cfg.CronSpecDailyPoll = envOrDefault("CRON_SPEC_DAILY_POLL", "0 15 * * 1-5")
	cfg.CronSpecCheckin = envOrDefault("CRON_SPEC_CHECKIN", "0 15 * * 1-5")

	cfg.DailyReminderText = envOrDefault("DAILY_REMINDER_TEXT",
		"📝 Ascent, please remember to update QCDT price on the portal.")
	cfg.PollQuestion = envOrDefault("POLL_QUESTION", "Has QCDT price been updated on portal?")
	cfg.PollOptions = splitTrim(envOrDefault("POLL_OPTIONS", "Yes,No,NA - public holiday"))
	if len(cfg.PollOptions) < 2 {
		return nil, fmt.Errorf("POLL_OPTIONS must contain at least two options")
	}
	cfg.PollMultipleAnswers = envOrDefault("POLL_MULTIPLE_ANSWERS", "false") == "true"
	cfg.CheckinQuestion = envOrDefault("CHECKIN_QUESTION", "Has QCDT price been updated on portal?")

	cfg.NagUsername = strings.TrimPrefix(os.Getenv("NAG_USERNAME"), "@")
	cfg.NagText = envOrDefault("NAG_TEXT", "friendly reminder: please respond to today's check-in.")
	cfg.NagCadenceMinutes, err = envIntOrDefault("NAG_CADENCE_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	if cfg.NagCadenceMinutes <= 0 {
		return nil, fmt.Errorf("NAG_CADENCE_MINUTES must be positive")
	}
	cfg.NagWindowStartMin, err = parseClockMinutes(envOrDefault("NAG_WINDOW_START", "15:15"))
	if err != nil {
		return nil, fmt.Errorf("invalid NAG_WINDOW_START: %w", err)
	}
	cfg.NagWindowEndMin, err = parseClockMinutes(envOrDefault("NAG_WINDOW_END", "18:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid NAG_WINDOW_END: %w", err)
	}
	if cfg.NagWindowEndMin < cfg.NagWindowStartMin {
		return nil, fmt.Errorf("NAG_WINDOW_END is before NAG_WINDOW_START")
	}

	cfg.HolidayCountries, err = parseCountries(envOrDefault("HOLIDAY_COUNTRIES",
		"Singapore:SG,USA:US,Dubai (UAE):AE"))
	if err != nil {
		return nil, err
	}
	cfg.HolidayAPIBase = envOrDefault("HOLIDAY_API_BASE", "https://date.nager.at/api/v3/PublicHolidays")

	tickSeconds, err := envIntOrDefault("TICK_INTERVAL_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	if tickSeconds <= 0 {
		return nil, fmt.Errorf("TICK_INTERVAL_SECONDS must be positive")
	}
	cfg.TickInterval = time.Duration(tickSeconds) * time.Second

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseClockMinutes converts "15:04" to minutes from midnight.
func parseClockMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// parseCountries converts "Singapore:SG,USA:US" into the country list,
// preserving order.
func parseCountries(s string) ([]holiday.Country, error) {
	var out []holiday.Country
	for _, part := range splitTrim(s) {
		i := strings.LastIndex(part, ":")
		if i <= 0 || i == len(part)-1 {
			return nil, fmt.Errorf("invalid HOLIDAY_COUNTRIES entry %q, want Label:CODE", part)
		}
		out = append(out, holiday.Country{
			Label: strings.TrimSpace(part[:i]),
			Code:  strings.TrimSpace(part[i+1:]),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("HOLIDAY_COUNTRIES is empty")
	}
	return out, nil
}
