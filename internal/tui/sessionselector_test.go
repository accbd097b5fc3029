package tui

import (
	"testing"
	"time"

	"github.com/pixenhq/pixen/internal/message"
	"github.com/pixenhq/pixen/internal/session"
)

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		str     string
		pattern string
		want    bool
	}{
		{"make the sky orange", "sky", true},
		{"make the sky orange", "mso", true},
		{"make the sky orange", "", true},
		{"make the sky orange", "xyz", false},
		{"", "a", false},
	}

	for _, tt := range tests {
		if got := fuzzyMatch(tt.str, tt.pattern); got != tt.want {
			t.Errorf("fuzzyMatch(%q, %q) = %v, want %v", tt.str, tt.pattern, got, tt.want)
		}
	}
}

func TestSelectorFilterAndNavigation(t *testing.T) {
	sessions := []*session.Session{
		{ID: "s1", Title: "red lighthouse"},
		{ID: "s2", Title: "blue lighthouse"},
		{ID: "s3", Title: "portrait study"},
	}

	var s SessionSelectorState
	s.Enter(80, 24, sessions, "s2")

	if len(s.filtered) != 3 {
		t.Fatalf("filtered = %d, want all sessions", len(s.filtered))
	}

	s.searchQuery = "lighthouse"
	s.updateFilter()
	if len(s.filtered) != 2 {
		t.Fatalf("filtered = %d, want 2 lighthouse sessions", len(s.filtered))
	}

	s.MoveDown()
	if s.selectedIdx != 1 {
		t.Errorf("selectedIdx = %d", s.selectedIdx)
	}
	s.MoveDown()
	if s.selectedIdx != 1 {
		t.Errorf("selection should not run past the end, got %d", s.selectedIdx)
	}

	cmd := s.Select()
	if cmd == nil {
		t.Fatal("Select should produce a command")
	}
	msg, ok := cmd().(SessionSelectedMsg)
	if !ok || msg.SessionID != "s2" {
		t.Errorf("selected %+v, want s2", msg)
	}
	if s.IsActive() {
		t.Error("selection should deactivate the selector")
	}
}

func TestLastUserText(t *testing.T) {
	s := &session.Session{
		Messages: []message.Message{
			message.UserMessage("first prompt", nil),
			message.ModelTextMessage("reply"),
			message.UserMessage("", []message.ImageRef{message.ImageFromParts("image/png", "X")}),
		},
	}

	if got := lastUserText(s); got != "first prompt" {
		t.Errorf("lastUserText = %q, should skip text-less user turns", got)
	}

	if got := lastUserText(&session.Session{}); got != "" {
		t.Errorf("empty session should preview nothing, got %q", got)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-time.Minute), "1 min ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-30 * time.Hour), "yesterday"},
	}

	for _, tt := range tests {
		if got := formatRelativeTime(tt.t); got != tt.want {
			t.Errorf("formatRelativeTime(%v ago) = %q, want %q", time.Since(tt.t), got, tt.want)
		}
	}
}
