package homework

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}

func TestCheckResponseValid(t *testing.T) {
	t.Parallel()
	raw := decode(t, `{"current_date": 1000, "homeworks": [{"homework_name":"HW1","status":"approved"}, {"homework_name":"HW0","status":"rejected"}]}`)
	hws, err := CheckResponse(raw)
	if err != nil {
		t.Fatalf("CheckResponse error: %v", err)
	}
	if len(hws) != 2 {
		t.Fatalf("len = %d, want 2", len(hws))
	}
	if got, ok := SubmissionFrom(hws[0]); !ok || got != (Submission{Name: "HW1", Status: StatusApproved}) {
		t.Fatalf("first = %+v, %v", got, ok)
	}
	ts, err := CurrentDate(raw)
	if err != nil || ts != 1000 {
		t.Fatalf("CurrentDate = %d, %v; want 1000", ts, err)
	}
}

func TestCheckResponseEmptyList(t *testing.T) {
	t.Parallel()
	hws, err := CheckResponse(decode(t, `{"current_date": 1, "homeworks": []}`))
	if err != nil {
		t.Fatalf("CheckResponse error: %v", err)
	}
	if len(hws) != 0 {
		t.Fatalf("len = %d, want 0", len(hws))
	}
}

func TestCheckResponseShapeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not an object", raw: `[1, 2]`},
		{name: "missing homeworks", raw: `{"current_date": 1}`},
		{name: "missing current_date", raw: `{"homeworks": []}`},
		{name: "homeworks not a list", raw: `{"current_date": 1, "homeworks": {"a": 1}}`},
		{name: "current_date not integer", raw: `{"current_date": 1.5, "homeworks": []}`},
		{name: "current_date string", raw: `{"current_date": "1", "homeworks": []}`},
		{name: "element not an object", raw: `{"current_date": 1, "homeworks": ["HW1"]}`},
		{name: "null", raw: `null`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := CheckResponse(decode(t, tt.raw))
			if !errors.Is(err, ErrShape) {
				t.Fatalf("err = %v, want ErrShape", err)
			}
		})
	}
}

func TestCurrentDateAcceptsIntegralFloat(t *testing.T) {
	t.Parallel()
	ts, err := CurrentDate(map[string]any{KeyCurrentDate: float64(42)})
	if err != nil || ts != 42 {
		t.Fatalf("CurrentDate = %d, %v; want 42", ts, err)
	}
}

func TestSubmissionFromRejectsMalformedEntries(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		hw   map[string]any
		ok   bool
	}{
		{name: "valid", hw: map[string]any{KeyName: "HW1", KeyStatus: "approved"}, ok: true},
		{name: "unknown status string", hw: map[string]any{KeyName: "HW1", KeyStatus: "lost"}, ok: true},
		{name: "missing name", hw: map[string]any{KeyStatus: "approved"}},
		{name: "empty name", hw: map[string]any{KeyName: "", KeyStatus: "approved"}},
		{name: "missing status", hw: map[string]any{KeyName: "HW1"}},
		{name: "non-string status", hw: map[string]any{KeyName: "HW1", KeyStatus: 7}},
	}
	for _, tt := range tests {
		if _, ok := SubmissionFrom(tt.hw); ok != tt.ok {
			t.Fatalf("%s: ok = %v, want %v", tt.name, ok, tt.ok)
		}
	}
}
