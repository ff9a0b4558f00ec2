package config

import (
	logx "hwbot/pkg/logx"
)

// SummarizeChange returns the changed top-level sections, safe structured
// fields for logging, and whether any change needs a restart to apply.
// Only the logging section is applied live.
func SummarizeChange(oldS, newS *Settings) ([]string, []logx.Field, bool) {
	if oldS == nil {
		oldS = &Settings{}
	}
	if newS == nil {
		newS = &Settings{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 8)
	restart := false

	if oldS.Poll != newS.Poll {
		changed = append(changed, "poll")
		attrs = append(attrs,
			logx.String("poll.interval", newS.Poll.Interval),
			logx.String("poll.request_timeout", newS.Poll.RequestTimeout),
		)
		restart = true
	}
	if oldS.Telegram != newS.Telegram {
		changed = append(changed, "telegram")
		attrs = append(attrs, logx.Int("telegram.thread_id", newS.Telegram.ThreadID))
		restart = true
	}
	if oldS.Logging != newS.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newS.Logging.Level),
			logx.Bool("logging.console", newS.Logging.Console),
			logx.Bool("logging.file_enabled", newS.Logging.File.Enabled),
			logx.Bool("logging.telegram_enabled", newS.Logging.Telegram.Enabled),
		)
	}
	if oldS.Storage != newS.Storage {
		changed = append(changed, "storage")
		attrs = append(attrs, logx.String("storage.driver", newS.Storage.Driver))
		restart = true
	}
	return changed, attrs, restart
}
