// Package session owns conversation threads: the durable per-session file
// store, the in-memory session collection, and title derivation.
package session

import (
	"fmt"
	"time"

	"github.com/pixenhq/pixen/internal/config"
	"github.com/pixenhq/pixen/internal/message"
)

// Session is one conversation thread. The durable schema is
// {id, title, messages[], activeImage|null, lastModified, settings} and
// stays backward-readable with the legacy single-image message field and
// with sessions missing a settings object (hydrated on load, not rejected).
type Session struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Messages []message.Message `json:"messages"`

	// ActiveImage is the image implicitly used as editing input for the
	// next turn when nothing new is attached.
	ActiveImage *message.ImageRef `json:"activeImage"`

	LastModified time.Time          `json:"lastModified"`
	Settings     config.GenSettings `json:"settings"`
}

// New creates an empty session with default settings, selected title, and a
// fresh id.
func New() *Session {
	return &Session{
		ID:           newID(),
		Title:        DefaultTitle,
		Messages:     []message.Message{},
		LastModified: time.Now(),
		Settings:     config.DefaultGenSettings(),
	}
}

// Touch refreshes the modification timestamp. Called on every mutation;
// listings order sessions newest-first by this field.
func (s *Session) Touch() {
	s.LastModified = time.Now()
}

// Clone returns a deep-enough copy safe to hand to another goroutine:
// messages and the active image are copied, image payload strings are
// shared (immutable).
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = make([]message.Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	if s.ActiveImage != nil {
		img := *s.ActiveImage
		c.ActiveImage = &img
	}
	return &c
}

// LastImageInHistory scans messages newest-first for the last one carrying
// an image (modern multi-image field first, then the legacy single field)
// and returns that message's last image. before < 0 scans the whole
// history; otherwise only messages strictly earlier than index before.
func (s *Session) LastImageInHistory(before int) (message.ImageRef, bool) {
	start := len(s.Messages) - 1
	if before >= 0 && before-1 < start {
		start = before - 1
	}
	for i := start; i >= 0; i-- {
		if img, ok := s.Messages[i].LastImage(); ok {
			return img, true
		}
	}
	return message.ImageRef{}, false
}

func newID() string {
	return fmt.Sprintf("session-%d", time.Now().UnixNano())
}
