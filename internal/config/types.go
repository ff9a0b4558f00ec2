package config

import (
	"errors"
	"strings"
	"time"

	"hwbot/internal/practicum"
	"hwbot/internal/schedule"
)

// ErrMissingCredential is returned when a required environment variable is
// absent or empty. The bot refuses to start without it.
var ErrMissingCredential = errors.New("required environment variable missing")

// Env is read from the process environment (after .env is loaded).
type Env struct {
	PracticumToken string `env:"PRACTICUM_TOKEN,required,notEmpty"`
	TelegramToken  string `env:"TELEGRAM_TOKEN,required,notEmpty"`
	// TelegramChatID is a numeric chat id or an @channel username.
	TelegramChatID string `env:"TELEGRAM_CHAT_ID,required,notEmpty"`

	// SettingsPath optionally points at a JSON or YAML settings file.
	SettingsPath string `env:"HWBOT_CONFIG"`
}

// Settings holds the non-secret knobs. Every field has a default, so the
// settings file is optional.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type Settings struct {
	Poll     PollSettings     `json:"poll"`
	Telegram TelegramSettings `json:"telegram"`
	Logging  LoggingSettings  `json:"logging"`
	Storage  StorageSettings  `json:"storage"`
}

type PollSettings struct {
	Endpoint string `json:"endpoint,omitempty" validate:"omitempty,url"`
	// Interval is a duration ("10m"), HH:MM ("00:10") or cron expression ("*/10 * * * *").
	Interval       string `json:"interval,omitempty"`
	RequestTimeout string `json:"request_timeout,omitempty"`
}

type TelegramSettings struct {
	// APIURL overrides the Bot API base URL (local Bot API server).
	APIURL      string `json:"api_url,omitempty" validate:"omitempty,url"`
	ThreadID    int    `json:"thread_id,omitempty" validate:"gte=0"`
	SendTimeout string `json:"send_timeout,omitempty"`
}

type LoggingSettings struct {
	Level    string          `json:"level" validate:"omitempty,oneof=TRACE DEBUG INFO WARN WARNING ERROR"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingTelegram mirrors log records at or above MinLevel into the chat.
type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level" validate:"omitempty,oneof=TRACE DEBUG INFO WARN WARNING ERROR"`
	RatePerSec int    `json:"rate_per_sec" validate:"gte=0"`
}

// StorageSettings controls the optional audit trail.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./hwbot_store" }
type StorageSettings struct {
	Driver      string `json:"driver" validate:"omitempty,oneof=none file sqlite sqlite3"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// Defaults returns the settings used when no file is configured.
func Defaults() *Settings {
	return &Settings{
		Poll: PollSettings{
			Endpoint:       practicum.DefaultEndpoint,
			Interval:       schedule.DefaultInterval.String(),
			RequestTimeout: "30s",
		},
		Telegram: TelegramSettings{SendTimeout: "10s"},
		Logging: LoggingSettings{
			Level:    "INFO",
			Console:  true,
			File:     LoggingFile{Path: "./hwbot.log"},
			Telegram: LoggingTelegram{MinLevel: "ERROR", RatePerSec: 1},
		},
		Storage: StorageSettings{Driver: "none"},
	}
}

func (s *Settings) normalize() {
	s.Poll.Endpoint = strings.TrimSpace(s.Poll.Endpoint)
	if s.Poll.Endpoint == "" {
		s.Poll.Endpoint = practicum.DefaultEndpoint
	}
	s.Logging.Level = strings.ToUpper(strings.TrimSpace(s.Logging.Level))
	s.Logging.Telegram.MinLevel = strings.ToUpper(strings.TrimSpace(s.Logging.Telegram.MinLevel))
	s.Storage.Driver = strings.ToLower(strings.TrimSpace(s.Storage.Driver))
}

// PollSchedule parses Poll.Interval.
func (s *Settings) PollSchedule() (schedule.Schedule, error) {
	return schedule.Parse(s.Poll.Interval)
}

// RequestTimeout is the review API HTTP timeout.
func (s *Settings) RequestTimeout() time.Duration {
	d, _ := ParseDurationOrDefault("poll.request_timeout", s.Poll.RequestTimeout, 30*time.Second)
	return d
}

// SendTimeout bounds a single Telegram delivery.
func (s *Settings) SendTimeout() time.Duration {
	d, _ := ParseDurationOrDefault("telegram.send_timeout", s.Telegram.SendTimeout, 10*time.Second)
	return d
}

// StorageBusyTimeout is the sqlite busy timeout (0 means driver default).
func (s *Settings) StorageBusyTimeout() time.Duration {
	d, _ := ParseDurationField("storage.busy_timeout", s.Storage.BusyTimeout)
	return d
}
