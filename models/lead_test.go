package models

import (
	"strings"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		lead Lead
		want string
	}{
		{
			name: "full name wins over everything",
			lead: Lead{ID: "lead_abcd1234", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Company: "Analytical Engines", RawMessage: "Need a website"},
			want: "Ada Lovelace",
		},
		{
			name: "first name only",
			lead: Lead{FirstName: "Ada", Email: "ada@example.com"},
			want: "Ada",
		},
		{
			name: "company before email",
			lead: Lead{Company: "Analytical Engines", Email: "ada@example.com"},
			want: "Analytical Engines",
		},
		{
			name: "email before raw message",
			lead: Lead{Email: "ada@example.com", RawMessage: "Need a website"},
			want: "ada@example.com",
		},
		{
			name: "raw message truncated to 48 chars",
			lead: Lead{RawMessage: strings.Repeat("x", 60)},
			want: strings.Repeat("x", 48),
		},
		{
			name: "short raw message kept whole",
			lead: Lead{RawMessage: "Need a website"},
			want: "Need a website",
		},
		{
			name: "id tail fallback",
			lead: Lead{ID: "lead_abcd1234"},
			want: "Lead #1234",
		},
		{
			name: "whitespace-only names are ignored",
			lead: Lead{FirstName: "  ", LastName: " ", Company: "Acme"},
			want: "Acme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lead.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{PriorityP1, PriorityP2, PriorityP3, PriorityP4} {
		if !ValidPriority(p) {
			t.Errorf("ValidPriority(%q) = false, want true", p)
		}
	}
	for _, p := range []string{"", "P5", "p1", "high"} {
		if ValidPriority(p) {
			t.Errorf("ValidPriority(%q) = true, want false", p)
		}
	}
}
