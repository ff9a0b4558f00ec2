package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hwbot/internal/storage"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

// Service sends notifications synchronously: one call, one delivery attempt.
// It is safe for concurrent use.
type Service struct {
	cfg    Config
	sender kit.Sender
	store  storage.Store
	log    logx.Logger

	hmu     sync.Mutex
	history []HistoryItem
}

// New builds the service. store may be nil.
func New(cfg Config, sender kit.Sender, store storage.Store, log logx.Logger) *Service {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 50
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, sender: sender, store: store, log: log}
}

// Notify delivers text to the configured chat. Transport failures are
// returned wrapped in ErrDelivery; callers decide whether they matter.
func (s *Service) Notify(ctx context.Context, kind Kind, text string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	start := time.Now()
	_, err := s.sender.SendText(callCtx, s.cfg.Target, text, &kit.SendOptions{DisablePreview: true})
	cancel()
	took := time.Since(start)

	s.audit(ctx, kind, text, took, err)

	if err != nil {
		s.log.Error("notification not sent",
			logx.String("kind", string(kind)),
			logx.Duration("took", took),
			logx.Err(err),
		)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	s.appendHistory(kind, text)
	s.log.Info("notification sent",
		logx.String("kind", string(kind)),
		logx.String("text", text),
		logx.Duration("took", took),
	)
	return nil
}

// History returns recently delivered notifications, oldest first.
func (s *Service) History() []HistoryItem {
	s.hmu.Lock()
	out := append([]HistoryItem(nil), s.history...)
	s.hmu.Unlock()
	return out
}

func (s *Service) appendHistory(kind Kind, text string) {
	s.hmu.Lock()
	s.history = append(s.history, HistoryItem{At: time.Now(), Kind: kind, Text: text})
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
	s.hmu.Unlock()
}

func (s *Service) audit(ctx context.Context, kind Kind, text string, took time.Duration, sendErr error) {
	if s.store == nil {
		return
	}
	e := storage.AuditEntry{
		At:     time.Now(),
		ChatID: s.cfg.Target.ChatID,
		Kind:   string(kind),
		Text:   text,
		OK:     sendErr == nil,
		TookMS: took.Milliseconds(),
	}
	if sendErr != nil {
		e.Error = sendErr.Error()
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.store.AppendAudit(actx, e); err != nil {
		s.log.Warn("audit append failed", logx.Err(err))
	}
}
