package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

func TestSplitTelegramTextShort(t *testing.T) {
	t.Parallel()
	got := splitTelegramText("hello", 10)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("unexpected chunks: %q", got)
	}
}

func TestSplitTelegramTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8)
	got := splitTelegramText(text, 10)
	if len(got) != 2 {
		t.Fatalf("chunks = %d, want 2: %q", len(got), got)
	}
	if got[0] != strings.Repeat("a", 8) || got[1] != strings.Repeat("b", 8) {
		t.Fatalf("unexpected chunks: %q", got)
	}
}

func TestSplitTelegramTextHardCut(t *testing.T) {
	t.Parallel()
	got := splitTelegramText(strings.Repeat("x", 25), 10)
	if len(got) != 3 {
		t.Fatalf("chunks = %d, want 3", len(got))
	}
	for i, c := range got[:2] {
		if len([]rune(c)) != 10 {
			t.Fatalf("chunk %d len = %d, want 10", i, len(c))
		}
	}
}

func TestSendTextPostsToBotAPI(t *testing.T) {
	t.Parallel()
	var (
		mu    sync.Mutex
		paths []string
		chats []string
		texts []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		chats = append(chats, body["chat_id"].(string))
		texts = append(texts, body["text"].(string))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42,"date":0,"chat":{"id":100,"type":"private"},"text":"x"}}`))
	}))
	t.Cleanup(srv.Close)

	a, err := New(Config{Token: "123:abc", APIURL: srv.URL, Offline: true}, logx.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	ref, err := a.SendText(context.Background(), kit.ChatTarget{ChatID: "100"}, "hello", nil)
	if err != nil {
		t.Fatalf("SendText error: %v", err)
	}
	if ref.MessageID != 42 || ref.ChatID != "100" {
		t.Fatalf("ref = %+v", ref)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 1 || paths[0] != "/bot123:abc/sendMessage" {
		t.Fatalf("paths = %v", paths)
	}
	if chats[0] != "100" || texts[0] != "hello" {
		t.Fatalf("chat=%q text=%q", chats[0], texts[0])
	}
}

func TestSendTextRejectsEmptyChat(t *testing.T) {
	t.Parallel()
	a, err := New(Config{Token: "123:abc", Offline: true}, logx.Nop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := a.SendText(context.Background(), kit.ChatTarget{}, "hello", nil); err == nil {
		t.Fatal("expected error for empty chat id")
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{Token: "  "}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}
