package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/pixenhq/pixen/internal/image"
	"github.com/pixenhq/pixen/internal/message"
	"github.com/pixenhq/pixen/internal/session"
)

func createMarkdownRenderer(width int) *glamour.TermRenderer {
	wrapWidth := max(width-4, minWrapWidth)

	var compactStyle ansi.StyleConfig
	if lipgloss.HasDarkBackground() {
		compactStyle = styles.DarkStyleConfig
	} else {
		compactStyle = styles.LightStyleConfig
	}

	uintPtr := func(u uint) *uint { return &u }
	compactStyle.Document.Margin = uintPtr(0)
	compactStyle.Paragraph.Margin = uintPtr(0)
	compactStyle.CodeBlock.Margin = uintPtr(0)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStyles(compactStyle),
		glamour.WithWordWrap(wrapWidth),
	)
	return renderer
}

func truncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return runewidth.Truncate(s, max(maxWidth, 0), "")
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

func (m model) renderWelcome() string {
	gradient := []lipgloss.Color{
		CurrentTheme.Primary,
		CurrentTheme.AI,
		CurrentTheme.Accent,
	}

	logoLines := []string{
		"   ▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄",
		"   █                             █",
		"   █   ╋╋╋╋   ╋  ╋  ╋  ╋╋╋╋      █",
		"   █   ╋   ╋  ╋   ╋╋   ╋         █",
		"   █   ╋╋╋╋   ╋   ╋╋   ╋╋╋       █",
		"   █   ╋      ╋  ╋  ╋  ╋         █",
		"   █   ╋      ╋  ╋  ╋  ╋╋╋╋      █",
		"   █                             █",
		"   ▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀",
	}

	subtitleStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	hintStyle := lipgloss.NewStyle().Foreground(CurrentTheme.TextDisabled)

	var sb strings.Builder
	sb.WriteString("\n")

	for i, line := range logoLines {
		style := lipgloss.NewStyle().Foreground(gradient[i%len(gradient)])
		sb.WriteString(style.Render(line) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString("   " + subtitleStyle.Render("Chat-driven image generation and editing") + "\n")
	sb.WriteString("   " + subtitleStyle.Render("model: "+m.cfg.ImageModel) + "\n")
	sb.WriteString("\n")
	sb.WriteString("   " + hintStyle.Render("Describe an image to start · /attach to edit your own · /help for commands") + "\n")

	return sb.String()
}

func (m model) renderTranscript() string {
	s := m.sessions.Selected()
	if s == nil || len(s.Messages) == 0 {
		return m.renderWelcome()
	}

	var sb strings.Builder
	for _, msg := range s.Messages {
		if !msg.HasContent() {
			continue // legacy records may carry empty turns
		}
		switch {
		case msg.Role == message.RoleUser:
			m.renderUserMessage(&sb, msg)
		case msg.IsError:
			sb.WriteString(errorMsgStyle.Render("✗ "+msg.Text) + "\n\n")
		default:
			m.renderModelMessage(&sb, s, msg)
		}
	}
	return sb.String()
}

func (m model) renderUserMessage(sb *strings.Builder, msg message.Message) {
	if msg.Text != "" {
		sb.WriteString(inputPromptStyle.Render("❯ ") + userMsgStyle.Render(msg.Text) + "\n")
	}
	for _, img := range msg.AllImages() {
		sb.WriteString("  " + pendingImageStyle.Render("🖼 "+imageLabel(img)) + "\n")
	}
	sb.WriteString("\n")
}

func (m model) renderModelMessage(sb *strings.Builder, s *session.Session, msg message.Message) {
	if imgs := msg.AllImages(); len(imgs) > 0 {
		for _, img := range imgs {
			sb.WriteString(m.renderImageCard(img, isActiveImage(s, img)) + "\n\n")
		}
		return
	}

	text := msg.Text
	if m.mdRenderer != nil {
		if rendered, err := m.mdRenderer.Render(text); err == nil {
			text = strings.TrimRight(rendered, "\n")
		}
	}
	sb.WriteString(aiPromptStyle.Render("● ") + text + "\n\n")
}

// renderImageCard draws a framed placeholder for an image message: the
// terminal cannot show pixels, so the card carries the mime type, the
// decoded size, and whether this is the session's active image.
func (m model) renderImageCard(img message.ImageRef, active bool) string {
	label := imageLabelStyle.Render("🖼  " + imageLabel(img))
	if active {
		label += "  " + activeMarkerStyle.Render("● active")
	}
	return imageFrameStyle.Render(label)
}

func imageLabel(img message.ImageRef) string {
	// Raw size from the base64 payload length, close enough for display.
	size := len(img.Base64Data) * 3 / 4
	return fmt.Sprintf("%s · %s", img.MimeType, image.FormatBytes(size))
}

func isActiveImage(s *session.Session, img message.ImageRef) bool {
	return s.ActiveImage != nil && s.ActiveImage.DataURL == img.DataURL
}

func (m model) renderStatus() string {
	var parts []string

	id := m.sessions.SelectedID()
	if m.engine.Busy(id) {
		parts = append(parts, m.spinner.View()+thinkingStyle.Render(" Generating..."))
	}

	if pending := m.engine.Pending(id); len(pending) > 0 {
		parts = append(parts, pendingImageHintStyle.Render(fmt.Sprintf("📎 %d pending", len(pending))))
	}

	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}

	if len(parts) == 0 {
		if s := m.sessions.Selected(); s != nil {
			summary := fmt.Sprintf("%s · %s · temp %g",
				s.Settings.Style, s.Settings.AspectRatio, s.Settings.Temperature)
			if s.Settings.IsFullBody {
				summary += " · full body"
			}
			title := truncateWithEllipsis(s.Title, 40)
			parts = append(parts, selectorHintStyle.Render("  "+title+" │ "+summary))
		}
	}

	return strings.Join(parts, "  ")
}
