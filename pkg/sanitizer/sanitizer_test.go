package sanitizer

import (
	"testing"
	"time"
)

func TestSlotKey(t *testing.T) {
	start := time.Date(2026, 9, 20, 10, 0, 0, 0, time.UTC)
	if got, want := SlotKey(start), "2026_09_20T10_00_00Z"; got != want {
		t.Errorf("SlotKey = %q, want %q", got, want)
	}
}

func TestSlotKey_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 2*60*60)
	local := time.Date(2026, 9, 20, 12, 0, 0, 0, loc)
	if got, want := SlotKey(local), "2026_09_20T10_00_00Z"; got != want {
		t.Errorf("SlotKey = %q, want %q", got, want)
	}
}

func TestSlotKeyString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "rfc3339", in: "2026-09-20T10:00:00Z", want: "2026_09_20T10_00_00Z"},
		{name: "already sanitized passes through", in: "2026_09_20T10_00_00Z", want: "2026_09_20T10_00_00Z"},
		{name: "whitespace trimmed", in: "  2026-09-20T10:00:00Z  ", want: "2026_09_20T10_00_00Z"},
		{name: "runs of punctuation collapse", in: "2026--09--20", want: "2026_09_20"},
		{name: "no leading or trailing underscores", in: "!2026-09-20!", want: "2026_09_20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlotKeyString(tt.in); got != tt.want {
				t.Errorf("SlotKeyString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPipeline_AppliesInOrder(t *testing.T) {
	p := Pipeline{
		func(s string) string { return s + "a" },
		func(s string) string { return s + "b" },
	}
	if got := p.Apply("x"); got != "xab" {
		t.Errorf("Apply = %q, want %q", got, "xab")
	}
}
