package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hwbot/internal/practicum"
	"hwbot/internal/schedule"
)

func setCredentials(t *testing.T, practicumToken, telegramToken, chatID string) {
	t.Helper()
	t.Setenv("PRACTICUM_TOKEN", practicumToken)
	t.Setenv("TELEGRAM_TOKEN", telegramToken)
	t.Setenv("TELEGRAM_CHAT_ID", chatID)
}

func TestParseEnv(t *testing.T) {
	setCredentials(t, "p", "t", "@chan")
	t.Setenv("HWBOT_CONFIG", "/etc/hwbot.yaml")

	e, err := ParseEnv()
	if err != nil {
		t.Fatalf("ParseEnv error: %v", err)
	}
	if e.PracticumToken != "p" || e.TelegramToken != "t" || e.TelegramChatID != "@chan" {
		t.Fatalf("env = %+v", e)
	}
	if e.SettingsPath != "/etc/hwbot.yaml" {
		t.Fatalf("SettingsPath = %q", e.SettingsPath)
	}
}

func TestParseEnvMissingOrEmpty(t *testing.T) {
	tests := []struct {
		name             string
		practicum, tg, c string
	}{
		{name: "empty practicum token", practicum: "", tg: "t", c: "1"},
		{name: "empty telegram token", practicum: "p", tg: "", c: "1"},
		{name: "empty chat id", practicum: "p", tg: "t", c: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setCredentials(t, tt.practicum, tt.tg, tt.c)
			if _, err := ParseEnv(); !errors.Is(err, ErrMissingCredential) {
				t.Fatalf("err = %v, want ErrMissingCredential", err)
			}
		})
	}
}

func TestParseEnvUnset(t *testing.T) {
	setCredentials(t, "p", "t", "1")
	os.Unsetenv("TELEGRAM_CHAT_ID")
	if _, err := ParseEnv(); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}

func TestLoadDotEnvIgnoresMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HWBOT_TEST_A=file\nHWBOT_TEST_B=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HWBOT_TEST_A", "env")
	t.Setenv("HWBOT_TEST_B", "")
	os.Unsetenv("HWBOT_TEST_B")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}
	if got := os.Getenv("HWBOT_TEST_A"); got != "env" {
		t.Fatalf("HWBOT_TEST_A = %q, want env", got)
	}
	if got := os.Getenv("HWBOT_TEST_B"); got != "file" {
		t.Fatalf("HWBOT_TEST_B = %q, want file", got)
	}
}

func TestManagerDefaultsWithoutFile(t *testing.T) {
	t.Parallel()
	s, err := NewManager("").Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if s.Poll.Endpoint != practicum.DefaultEndpoint {
		t.Fatalf("endpoint = %q", s.Poll.Endpoint)
	}
	sc, err := s.PollSchedule()
	if err != nil || sc.Kind != schedule.KindInterval || sc.Every != 10*time.Minute {
		t.Fatalf("schedule = %+v, %v", sc, err)
	}
	if s.RequestTimeout() != 30*time.Second || s.SendTimeout() != 10*time.Second {
		t.Fatalf("timeouts = %v, %v", s.RequestTimeout(), s.SendTimeout())
	}
	if !s.Logging.Console {
		t.Fatal("console logging should default to on")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestManagerParseYAML(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "hwbot.yaml", `
poll:
  interval: "*/5 * * * *"
  request_timeout: 5s
logging:
  level: debug
  file:
    enabled: true
    path: /tmp/hwbot.log
storage:
  driver: FILE
  path: ./store
`)
	s, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sc, err := s.PollSchedule()
	if err != nil || sc.Kind != schedule.KindCron {
		t.Fatalf("schedule = %+v, %v", sc, err)
	}
	if s.RequestTimeout() != 5*time.Second {
		t.Fatalf("request timeout = %v", s.RequestTimeout())
	}
	if s.Logging.Level != "DEBUG" || !s.Logging.File.Enabled {
		t.Fatalf("logging = %+v", s.Logging)
	}
	// Omitted keys keep their defaults.
	if !s.Logging.Console || s.Poll.Endpoint != practicum.DefaultEndpoint {
		t.Fatalf("defaults lost: %+v", s)
	}
	if s.Storage.Driver != "file" {
		t.Fatalf("driver = %q", s.Storage.Driver)
	}
}

func TestManagerParseJSON(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "hwbot.json", `{"poll": {"interval": "00:15"}, "telegram": {"thread_id": 7}}`)
	s, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sc, _ := s.PollSchedule()
	if sc.Every != 15*time.Minute || s.Telegram.ThreadID != 7 {
		t.Fatalf("settings = %+v", s)
	}
}

func TestManagerParseRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "unknown field", file: "a.json", content: `{"poll": {"timeout": "1s"}}`},
		{name: "trailing data", file: "b.json", content: `{} {}`},
		{name: "bad interval", file: "c.yaml", content: "poll:\n  interval: soon\n"},
		{name: "bad duration", file: "d.yaml", content: "poll:\n  request_timeout: fast\n"},
		{name: "bad endpoint", file: "e.yaml", content: "poll:\n  endpoint: not a url\n"},
		{name: "bad level", file: "f.yaml", content: "logging:\n  level: loud\n"},
		{name: "bad driver", file: "g.yaml", content: "storage:\n  driver: redis\n  path: x\n"},
		{name: "storage without path", file: "h.yaml", content: "storage:\n  driver: file\n"},
		{name: "negative thread", file: "i.yaml", content: "telegram:\n  thread_id: -1\n"},
		{name: "broken yaml", file: "j.yaml", content: "poll: [\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewManager(writeFile(t, tt.file, tt.content)).Parse(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestManagerReloadPublishesChanges(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "hwbot.yaml", "logging:\n  level: info\n")
	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	sub := m.Subscribe(1)
	defer m.Unsubscribe(sub)

	// No change: nothing published.
	m.reload()
	select {
	case s := <-sub:
		t.Fatalf("unexpected publish: %+v", s)
	default:
	}

	if err := os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	m.reload()
	select {
	case s := <-sub:
		if s.Logging.Level != "ERROR" {
			t.Fatalf("level = %q", s.Logging.Level)
		}
	default:
		t.Fatal("expected a published update")
	}
	if m.Get().Logging.Level != "ERROR" {
		t.Fatalf("committed level = %q", m.Get().Logging.Level)
	}

	// Invalid edits are rejected and the previous settings stay.
	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	m.reload()
	if m.Get().Logging.Level != "ERROR" {
		t.Fatalf("committed level = %q after invalid edit", m.Get().Logging.Level)
	}
}

func TestSummarizeChange(t *testing.T) {
	t.Parallel()
	a := Defaults()
	b := Defaults()
	if changed, _, restart := SummarizeChange(a, b); len(changed) != 0 || restart {
		t.Fatalf("changed = %v restart = %v, want none", changed, restart)
	}

	b.Logging.Level = "DEBUG"
	changed, _, restart := SummarizeChange(a, b)
	if len(changed) != 1 || changed[0] != "logging" || restart {
		t.Fatalf("changed = %v restart = %v", changed, restart)
	}

	b.Poll.Interval = "5m"
	changed, _, restart = SummarizeChange(a, b)
	if len(changed) != 2 || !restart {
		t.Fatalf("changed = %v restart = %v", changed, restart)
	}
}
