package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags, duration strings, the poll schedule and the
// storage section.
func Validate(s *Settings) error {
	if s == nil {
		return errors.New("settings are nil")
	}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: invalid value %v (rule %s)", fe.Namespace(), fe.Value(), fe.Tag())
		}
		return err
	}
	if _, err := s.PollSchedule(); err != nil {
		return fmt.Errorf("poll.interval: %w", err)
	}
	if _, err := ParseDurationField("poll.request_timeout", s.Poll.RequestTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("telegram.send_timeout", s.Telegram.SendTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("storage.busy_timeout", s.Storage.BusyTimeout); err != nil {
		return err
	}
	switch s.Storage.Driver {
	case "", "none":
	default:
		if strings.TrimSpace(s.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for driver %q", s.Storage.Driver)
		}
	}
	return nil
}
