package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pixenhq/pixen/internal/message"
	"github.com/pixenhq/pixen/internal/session"
)

// SessionSelectedMsg is sent when a session is selected
type SessionSelectedMsg struct {
	SessionID string
}

// SessionSelectorCancelledMsg is sent when the session selector is cancelled
type SessionSelectorCancelledMsg struct{}

// SessionSelectorState holds the state for the session selector overlay
type SessionSelectorState struct {
	active       bool
	sessions     []*session.Session
	filtered     []*session.Session
	currentID    string
	selectedIdx  int
	searchQuery  string
	scrollOffset int
	maxVisible   int
	width        int
	height       int
}

// NewSessionSelectorState creates a new SessionSelectorState
func NewSessionSelectorState() SessionSelectorState {
	return SessionSelectorState{maxVisible: 6}
}

func clamp(value, minVal, maxVal int) int {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}

// calculateMaxVisible calculates how many sessions fit on screen.
// Each session takes 3 lines (title + preview + blank separator).
func calculateMaxVisible(height int) int {
	const (
		fixedLines      = 7 // title(1) + search(1) + blank(1) + hint(2) + scroll indicators(2)
		linesPerSession = 3
	)
	return clamp((height-fixedLines)/linesPerSession, 3, 20)
}

// Enter activates the selector over a snapshot of the session list.
func (s *SessionSelectorState) Enter(width, height int, sessions []*session.Session, currentID string) {
	*s = SessionSelectorState{
		active:     true,
		sessions:   sessions,
		currentID:  currentID,
		width:      width,
		height:     height,
		maxVisible: calculateMaxVisible(height),
	}
	s.updateFilter()
}

// IsActive returns whether the selector is active
func (s *SessionSelectorState) IsActive() bool {
	return s.active
}

// Cancel cancels the selector
func (s *SessionSelectorState) Cancel() {
	*s = NewSessionSelectorState()
}

// MoveUp moves the selection up
func (s *SessionSelectorState) MoveUp() {
	if s.selectedIdx > 0 {
		s.selectedIdx--
		s.ensureVisible()
	}
}

// MoveDown moves the selection down
func (s *SessionSelectorState) MoveDown() {
	if s.selectedIdx < len(s.filtered)-1 {
		s.selectedIdx++
		s.ensureVisible()
	}
}

func (s *SessionSelectorState) ensureVisible() {
	if s.selectedIdx < s.scrollOffset {
		s.scrollOffset = s.selectedIdx
	}
	if s.selectedIdx >= s.scrollOffset+s.maxVisible {
		s.scrollOffset = s.selectedIdx - s.maxVisible + 1
	}
}

func (s *SessionSelectorState) updateFilter() {
	query := strings.ToLower(s.searchQuery)
	s.filtered = make([]*session.Session, 0, len(s.sessions))

	for _, sess := range s.sessions {
		if query != "" && !fuzzyMatch(strings.ToLower(sess.Title), query) {
			continue
		}
		s.filtered = append(s.filtered, sess)
	}

	s.selectedIdx = 0
	s.scrollOffset = 0
}

// fuzzyMatch reports whether pattern's bytes appear in str in order.
func fuzzyMatch(str, pattern string) bool {
	pi := 0
	for si := 0; si < len(str) && pi < len(pattern); si++ {
		if str[si] == pattern[pi] {
			pi++
		}
	}
	return pi == len(pattern)
}

// Select returns a command carrying the chosen session
func (s *SessionSelectorState) Select() tea.Cmd {
	if len(s.filtered) == 0 || s.selectedIdx >= len(s.filtered) {
		return nil
	}

	selected := s.filtered[s.selectedIdx]
	s.Cancel()

	return func() tea.Msg {
		return SessionSelectedMsg{SessionID: selected.ID}
	}
}

// HandleKeypress handles a keypress and returns a command if selection is made
func (s *SessionSelectorState) HandleKeypress(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyUp, tea.KeyCtrlP:
		s.MoveUp()
	case tea.KeyDown, tea.KeyCtrlN:
		s.MoveDown()
	case tea.KeyEnter:
		return s.Select()
	case tea.KeyEsc:
		if s.searchQuery != "" {
			s.searchQuery = ""
			s.updateFilter()
			return nil
		}
		s.Cancel()
		return func() tea.Msg { return SessionSelectorCancelledMsg{} }
	case tea.KeyBackspace:
		if len(s.searchQuery) > 0 {
			s.searchQuery = s.searchQuery[:len(s.searchQuery)-1]
			s.updateFilter()
		}
	case tea.KeyRunes:
		if s.searchQuery == "" && (key.String() == "j" || key.String() == "k") {
			if key.String() == "j" {
				s.MoveDown()
			} else {
				s.MoveUp()
			}
			return nil
		}
		s.searchQuery += string(key.Runes)
		s.updateFilter()
	}
	return nil
}

// lastUserText finds the newest user message with text, for the preview line.
func lastUserText(sess *session.Session) string {
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		msg := sess.Messages[i]
		if msg.Role == message.RoleUser && msg.Text != "" {
			first, _, _ := strings.Cut(strings.TrimSpace(msg.Text), "\n")
			return first
		}
	}
	return ""
}

func (s *SessionSelectorState) renderSession(sess *session.Session, isSelected bool, sb *strings.Builder) {
	titleStyle, indent := selectorItemStyle, "  "
	if isSelected {
		titleStyle, indent = selectorSelectedStyle, "> "
	}

	marker := ""
	if sess.ID == s.currentID {
		marker = " ●"
	}
	metadata := fmt.Sprintf("%d msgs · %s", len(sess.Messages), formatRelativeTime(sess.LastModified))
	title := truncateWithEllipsis(sess.Title, s.width-len(indent)-len(metadata)-8)
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s%s%s · %s", indent, title, marker, metadata)) + "\n")

	if preview := lastUserText(sess); preview != "" {
		previewStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
		sb.WriteString(previewStyle.Render(fmt.Sprintf("    \"%s\"", truncateWithEllipsis(preview, clamp(s.width-10, 30, 120)))))
	}
	sb.WriteString("\n\n")
}

// Render renders the session selector overlay
func (s *SessionSelectorState) Render() string {
	if !s.active {
		return ""
	}

	var sb strings.Builder

	title := fmt.Sprintf("Sessions (%d/%d)", len(s.filtered), len(s.sessions))
	sb.WriteString(selectorTitleStyle.Render(title) + "\n")

	searchLine := "🔍 Type to filter..."
	searchStyle := selectorHintStyle
	if s.searchQuery != "" {
		searchLine = "> " + s.searchQuery + "_"
		searchStyle = selectorItemStyle
	}
	sb.WriteString(searchStyle.Render(searchLine) + "\n\n")

	if len(s.filtered) == 0 {
		sb.WriteString(selectorHintStyle.Render("  No sessions match the filter") + "\n")
	} else {
		endIdx := min(s.scrollOffset+s.maxVisible, len(s.filtered))
		s.renderScrollIndicator(&sb, s.scrollOffset > 0, "↑ more above")

		for i := s.scrollOffset; i < endIdx; i++ {
			s.renderSession(s.filtered[i], i == s.selectedIdx, &sb)
		}

		s.renderScrollIndicator(&sb, endIdx < len(s.filtered), "↓ more below")
	}

	sb.WriteString("\n" + selectorHintStyle.Render("↑/↓ navigate · Enter select · Esc clear/cancel"))
	return sb.String()
}

func (s *SessionSelectorState) renderScrollIndicator(sb *strings.Builder, show bool, text string) {
	if show {
		sb.WriteString(selectorHintStyle.Render("  "+text) + "\n")
	}
}

// formatRelativeTime formats a time as a relative string (e.g., "2 hours ago")
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "min") + " ago"
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour") + " ago"
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
