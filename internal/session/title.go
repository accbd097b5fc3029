package session

import "strings"

const (
	// DefaultTitle is the label for sessions with no turns yet.
	DefaultTitle = "New chat"

	// ImageOnlyTitle is the label when the first turn has images but no text.
	ImageOnlyTitle = "Image edit"

	// MaxTitleLength is the maximum title length before truncation.
	MaxTitleLength = 30
)

// DeriveTitle derives a session title from the first real exchange: the
// trimmed text truncated to MaxTitleLength runes with an ellipsis appended
// if longer, or a fixed label if the turn was image-only. Titles are set
// once and never overwritten on later turns.
func DeriveTitle(text string, hasImages bool) string {
	text = strings.TrimSpace(text)
	if text == "" {
		if hasImages {
			return ImageOnlyTitle
		}
		return DefaultTitle
	}

	runes := []rune(text)
	if len(runes) <= MaxTitleLength {
		return text
	}
	return string(runes[:MaxTitleLength]) + "..."
}
