package tui

import (
	"strings"
	"testing"

	"github.com/pixenhq/pixen/internal/message"
	"github.com/pixenhq/pixen/internal/session"
)

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in       string
		maxWidth int
		want     string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this one is definitely too long", 10, "this on..."},
	}

	for _, tt := range tests {
		if got := truncateWithEllipsis(tt.in, tt.maxWidth); got != tt.want {
			t.Errorf("truncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.maxWidth, got, tt.want)
		}
	}
}

func TestImageLabel(t *testing.T) {
	// 8 base64 chars decode to 6 bytes
	img := message.ImageFromParts("image/png", "AAAAAAAA")
	label := imageLabel(img)
	if !strings.Contains(label, "image/png") || !strings.Contains(label, "6 B") {
		t.Errorf("label = %q", label)
	}
}

func TestIsActiveImage(t *testing.T) {
	a := message.ImageFromParts("image/png", "A")
	b := message.ImageFromParts("image/png", "B")

	s := &session.Session{ActiveImage: &a}
	if !isActiveImage(s, a) {
		t.Error("matching data URL should be active")
	}
	if isActiveImage(s, b) {
		t.Error("different image should not be active")
	}
	if isActiveImage(&session.Session{}, a) {
		t.Error("no active image set")
	}
}
