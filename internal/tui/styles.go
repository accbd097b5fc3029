package tui

import "github.com/charmbracelet/lipgloss"

// Message styles
var (
	userMsgStyle     lipgloss.Style
	inputPromptStyle lipgloss.Style
	aiPromptStyle    lipgloss.Style
	separatorStyle   lipgloss.Style
	thinkingStyle    lipgloss.Style
	errorMsgStyle    lipgloss.Style
	noticeStyle      lipgloss.Style
)

// Image styles
var (
	imageFrameStyle       lipgloss.Style
	imageLabelStyle       lipgloss.Style
	activeMarkerStyle     lipgloss.Style
	pendingImageStyle     lipgloss.Style
	pendingImageHintStyle lipgloss.Style
)

// Selector styles
var (
	selectorTitleStyle    lipgloss.Style
	selectorItemStyle     lipgloss.Style
	selectorSelectedStyle lipgloss.Style
	selectorHintStyle     lipgloss.Style
)

func init() {
	userMsgStyle = lipgloss.NewStyle()

	inputPromptStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Primary).
		Bold(true)

	aiPromptStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.AI).
		Bold(true)

	separatorStyle = lipgloss.NewStyle().
		Faint(true).
		Foreground(CurrentTheme.Separator)

	thinkingStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Accent)

	errorMsgStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Error)

	noticeStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.TextDim).
		PaddingLeft(2)

	imageFrameStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Border).
		Padding(0, 1)

	imageLabelStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.TextDim)

	activeMarkerStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Success)

	pendingImageStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Primary)

	pendingImageHintStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Muted)

	selectorTitleStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.TextBright).
		Bold(true)

	selectorItemStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Text)

	selectorSelectedStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Primary).
		Bold(true)

	selectorHintStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Muted)
}
