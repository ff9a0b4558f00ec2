package notifier

import (
	"errors"
	"time"

	kit "hwbot/internal/transport"
)

// ErrDelivery wraps any failure returned by the transport.
var ErrDelivery = errors.New("notification delivery failed")

// Kind classifies a notification for logs and the audit trail.
type Kind string

const (
	KindStatus  Kind = "status"
	KindFailure Kind = "failure"
)

type Config struct {
	Target      kit.ChatTarget
	SendTimeout time.Duration
	HistorySize int
}

type HistoryItem struct {
	At   time.Time
	Kind Kind
	Text string
}
