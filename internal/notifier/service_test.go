package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"hwbot/internal/storage"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []string
	to   []kit.ChatTarget
}

func (f *fakeSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return kit.MessageRef{}, f.err
	}
	f.sent = append(f.sent, text)
	f.to = append(f.to, to)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

type memStore struct {
	mu      sync.Mutex
	entries []storage.AuditEntry
}

func (m *memStore) AppendAudit(ctx context.Context, e storage.AuditEntry) error {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return nil
}

func (m *memStore) Close() error { return nil }

func TestNotifyDelivers(t *testing.T) {
	t.Parallel()
	snd := &fakeSender{}
	st := &memStore{}
	svc := New(Config{Target: kit.ChatTarget{ChatID: "42"}}, snd, st, logx.Nop())

	if err := svc.Notify(context.Background(), KindStatus, "hello"); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if len(snd.sent) != 1 || snd.sent[0] != "hello" || snd.to[0].ChatID != "42" {
		t.Fatalf("sent = %v to %v", snd.sent, snd.to)
	}
	if h := svc.History(); len(h) != 1 || h[0].Kind != KindStatus {
		t.Fatalf("history = %+v", h)
	}
	if len(st.entries) != 1 || !st.entries[0].OK || st.entries[0].ChatID != "42" {
		t.Fatalf("audit = %+v", st.entries)
	}
}

func TestNotifyWrapsDeliveryError(t *testing.T) {
	t.Parallel()
	snd := &fakeSender{err: errors.New("chat not found")}
	st := &memStore{}
	svc := New(Config{Target: kit.ChatTarget{ChatID: "42"}}, snd, st, logx.Nop())

	err := svc.Notify(context.Background(), KindFailure, "boom")
	if !errors.Is(err, ErrDelivery) {
		t.Fatalf("err = %v, want ErrDelivery", err)
	}
	if len(svc.History()) != 0 {
		t.Fatal("failed delivery must not enter history")
	}
	if len(st.entries) != 1 || st.entries[0].OK || st.entries[0].Error != "chat not found" {
		t.Fatalf("audit = %+v", st.entries)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()
	svc := New(Config{HistorySize: 2}, &fakeSender{}, nil, logx.Nop())
	for _, s := range []string{"a", "b", "c"} {
		if err := svc.Notify(context.Background(), KindStatus, s); err != nil {
			t.Fatalf("Notify error: %v", err)
		}
	}
	h := svc.History()
	if len(h) != 2 || h[0].Text != "b" || h[1].Text != "c" {
		t.Fatalf("history = %+v", h)
	}
}
