// Package message defines the canonical conversation types used across the
// codebase. All packages import from here to avoid circular dependencies.
package message

import (
	"fmt"
	"strings"
	"time"
)

// Role represents the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ImageRef is an image carried in three simultaneously valid encodings:
// the self-contained data URL, its MIME type, and its raw base64 payload.
// Invariant: Base64Data is the substring of DataURL after the first comma,
// and MimeType is the substring between "data:" and ";base64".
type ImageRef struct {
	DataURL    string `json:"dataUrl"`
	MimeType   string `json:"mimeType"`
	Base64Data string `json:"base64Data"`
}

// ImageFromParts builds an ImageRef from a MIME type and base64 payload.
func ImageFromParts(mimeType, base64Data string) ImageRef {
	return ImageRef{
		DataURL:    "data:" + mimeType + ";base64," + base64Data,
		MimeType:   mimeType,
		Base64Data: base64Data,
	}
}

// ImageFromDataURL decomposes a data URL into its MIME type and payload by
// string slicing. The payload is never re-encoded: components that receive
// only a data URL (e.g. reconstructed from message history) derive the
// other two fields by this exact decomposition.
func ImageFromDataURL(dataURL string) (ImageRef, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return ImageRef{}, fmt.Errorf("not a data URL: %.32q", dataURL)
	}
	comma := strings.Index(dataURL, ",")
	semi := strings.Index(dataURL, ";base64")
	if comma < 0 || semi < 0 || semi > comma {
		return ImageRef{}, fmt.Errorf("malformed data URL: %.32q", dataURL)
	}
	return ImageRef{
		DataURL:    dataURL,
		MimeType:   dataURL[len("data:"):semi],
		Base64Data: dataURL[comma+1:],
	}, nil
}

// Valid reports whether the ref carries both a payload and a MIME type.
// Entries missing either are dropped when building model requests.
func (r ImageRef) Valid() bool {
	return r.Base64Data != "" && r.MimeType != ""
}

// Message is one turn in a session. Messages are never mutated after
// creation; retries replace them by truncation, not in-place edit.
type Message struct {
	ID     string     `json:"id"`
	Role   Role       `json:"role"`
	Text   string     `json:"text,omitempty"`
	Images []ImageRef `json:"images,omitempty"`
	// Image is the legacy single-image field still present in older
	// persisted data. Read sites treat it as a one-element Images.
	Image     *ImageRef `json:"image,omitempty"`
	IsError   bool      `json:"isError,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AllImages returns the message's images regardless of which field is
// populated: the modern multi-image field wins, then the legacy single
// field. Stored data is normalized here at read time, never migrated.
func (m *Message) AllImages() []ImageRef {
	if len(m.Images) > 0 {
		return m.Images
	}
	if m.Image != nil {
		return []ImageRef{*m.Image}
	}
	return nil
}

// LastImage returns the last image carried by the message, if any.
func (m *Message) LastImage() (ImageRef, bool) {
	imgs := m.AllImages()
	if len(imgs) == 0 {
		return ImageRef{}, false
	}
	return imgs[len(imgs)-1], true
}

// HasContent reports whether the message carries text, an image, or an
// error flag. The engine never constructs a message without any of these;
// the UI suppresses legacy ones that have none.
func (m *Message) HasContent() bool {
	return m.Text != "" || len(m.AllImages()) > 0 || m.IsError
}

// NewID returns a message id unique within a session. Timestamp-based ids
// are monotonic enough to double as a sort tiebreaker.
func NewID() string {
	return fmt.Sprintf("msg-%d", time.Now().UnixNano())
}

// UserMessage creates a user turn with optional attached images.
func UserMessage(text string, images []ImageRef) Message {
	return Message{
		ID:        NewID(),
		Role:      RoleUser,
		Text:      text,
		Images:    images,
		Timestamp: time.Now(),
	}
}

// ModelImageMessage creates a model turn carrying only an image.
func ModelImageMessage(img ImageRef) Message {
	return Message{
		ID:        NewID(),
		Role:      RoleModel,
		Images:    []ImageRef{img},
		Timestamp: time.Now(),
	}
}

// ModelTextMessage creates a text-only model turn.
func ModelTextMessage(text string) Message {
	return Message{
		ID:        NewID(),
		Role:      RoleModel,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// ModelErrorMessage creates a model turn flagged as a failed generation.
func ModelErrorMessage(text string) Message {
	return Message{
		ID:        NewID(),
		Role:      RoleModel,
		Text:      text,
		IsError:   true,
		Timestamp: time.Now(),
	}
}
