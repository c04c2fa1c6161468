package utils

import "testing"

func TestNilIfEmpty(t *testing.T) {
	if got := NilIfEmpty(""); got != nil {
		t.Fatalf("expected nil for empty string, got %q", *got)
	}
	got := NilIfEmpty("Golden")
	if got == nil || *got != "Golden" {
		t.Fatalf("expected pointer to Golden, got %v", got)
	}
}

func TestParseId(t *testing.T) {
	if id, err := ParseId("42"); err != nil || id != 42 {
		t.Fatalf("ParseId(42) = %d, %v", id, err)
	}
	for _, raw := range []string{"", "0", "-3", "abc"} {
		if _, err := ParseId(raw); err == nil {
			t.Fatalf("ParseId(%q): expected error", raw)
		}
	}
}
