package utils

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	id := NewID("lead")
	if !strings.HasPrefix(id, "lead_") {
		t.Errorf("id = %q, want lead_ prefix", id)
	}
	if len(id) <= len("lead_") {
		t.Errorf("id = %q, want a suffix", id)
	}
	if NewID("lead") == id {
		t.Error("ids should be unique")
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"first non-empty wins", []string{"", "second", "third"}, "second"},
		{"whitespace counts as empty", []string{"  ", "\t", "real"}, "real"},
		{"result is trimmed", []string{"  padded  "}, "padded"},
		{"all empty", []string{"", "  "}, ""},
		{"no values", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coalesce(tt.values...); got != tt.want {
				t.Errorf("Coalesce(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestSafeJSON(t *testing.T) {
	if got := SafeJSON(`{"a":1}`); got == nil || got["a"] != float64(1) {
		t.Errorf("SafeJSON object = %v", got)
	}
	if got := SafeJSON("plain text"); got != nil {
		t.Errorf("SafeJSON non-JSON = %v, want nil", got)
	}
	if got := SafeJSON(""); got != nil {
		t.Errorf("SafeJSON empty = %v, want nil", got)
	}
}
