package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pixenhq/pixen/internal/config"
	"github.com/pixenhq/pixen/internal/engine"
	"github.com/pixenhq/pixen/internal/image"
)

// Command represents a slash command.
type Command struct {
	Name        string
	Usage       string
	Description string
	Handler     CommandHandler
}

// CommandHandler mutates the model and returns an optional notice plus an
// optional follow-up command.
type CommandHandler func(m *model, args string) (string, tea.Cmd)

func getCommandRegistry() map[string]Command {
	return map[string]Command{
		"new": {
			Name:        "new",
			Usage:       "/new",
			Description: "Start a new session",
			Handler:     handleNewCommand,
		},
		"sessions": {
			Name:        "sessions",
			Usage:       "/sessions",
			Description: "Switch between sessions",
			Handler:     handleSessionsCommand,
		},
		"delete": {
			Name:        "delete",
			Usage:       "/delete",
			Description: "Delete the current session",
			Handler:     handleDeleteCommand,
		},
		"retry": {
			Name:        "retry",
			Usage:       "/retry [key=value ...] [feedback]",
			Description: "Regenerate the last answer; one-off temp=/style=/ratio=/fullbody= and feedback",
			Handler:     handleRetryCommand,
		},
		"attach": {
			Name:        "attach",
			Usage:       "/attach <glob>",
			Description: "Attach image files for the next turn (or /attach clear)",
			Handler:     handleAttachCommand,
		},
		"style": {
			Name:        "style",
			Usage:       "/style <tag>",
			Description: "Set the style tag (None disables)",
			Handler:     handleStyleCommand,
		},
		"ratio": {
			Name:        "ratio",
			Usage:       "/ratio <w:h>",
			Description: "Set the aspect ratio, e.g. 1:1, 16:9",
			Handler:     handleRatioCommand,
		},
		"temp": {
			Name:        "temp",
			Usage:       "/temp <0..2>",
			Description: "Set the generation temperature",
			Handler:     handleTempCommand,
		},
		"fullbody": {
			Name:        "fullbody",
			Usage:       "/fullbody",
			Description: "Toggle the full-body framing hint",
			Handler:     handleFullBodyCommand,
		},
		"enhance": {
			Name:        "enhance",
			Usage:       "/enhance <prompt>",
			Description: "Rewrite a prompt to be more descriptive, into the composer",
			Handler:     handleEnhanceCommand,
		},
		"help": {
			Name:        "help",
			Usage:       "/help",
			Description: "Show available commands",
			Handler:     handleHelpCommand,
		},
		"quit": {
			Name:        "quit",
			Usage:       "/quit",
			Description: "Exit",
			Handler:     handleQuitCommand,
		},
	}
}

func (m model) dispatchCommand(input string) (tea.Model, tea.Cmd) {
	name, args, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	args = strings.TrimSpace(args)

	cmd, ok := getCommandRegistry()[strings.ToLower(name)]
	if !ok {
		return m, m.setNotice(fmt.Sprintf("Unknown command /%s, try /help", name))
	}

	notice, followUp := cmd.Handler(&m, args)
	if notice != "" {
		return m, tea.Batch(m.setNotice(notice), followUp)
	}
	return m, followUp
}

func handleNewCommand(m *model, _ string) (string, tea.Cmd) {
	m.sessions.Create()
	m.refreshTranscript()
	return "Started a new session", nil
}

func handleSessionsCommand(m *model, _ string) (string, tea.Cmd) {
	m.selector.Enter(m.width, m.height, m.sessions.Sessions(), m.sessions.SelectedID())
	return "", nil
}

func handleDeleteCommand(m *model, _ string) (string, tea.Cmd) {
	id := m.sessions.SelectedID()
	m.sessions.Delete(id)
	m.engine.Forget(id)
	m.refreshTranscript()
	return "Session deleted", nil
}

// parseRetryArgs splits leading key=value settings overrides from the
// feedback text. Overrides apply to the retried call only; the session's
// stored settings stay as they are.
func parseRetryArgs(base config.GenSettings, args string) (config.GenSettings, string) {
	fields := strings.Fields(args)
	i := 0
	for ; i < len(fields); i++ {
		key, value, ok := strings.Cut(fields[i], "=")
		if !ok || value == "" {
			break
		}
		switch strings.ToLower(key) {
		case "temp":
			if t, err := strconv.ParseFloat(value, 64); err == nil && t >= 0 && t <= 2 {
				base.Temperature = t
			}
		case "style":
			base.Style = value
		case "ratio":
			base.AspectRatio = value
		case "fullbody":
			base.IsFullBody = value == "on" || value == "true"
		default:
			// Not an override, the feedback text starts here.
			return base, strings.Join(fields[i:], " ")
		}
	}
	return base, strings.Join(fields[i:], " ")
}

func handleRetryCommand(m *model, args string) (string, tea.Cmd) {
	s := m.sessions.Selected()
	settings, feedback := parseRetryArgs(s.Settings, args)
	call, err := m.engine.BeginRetry(s.ID, feedback, settings)
	switch {
	case errors.Is(err, engine.ErrBusy):
		return "Still generating, hang on", nil
	case errors.Is(err, engine.ErrNoRetryTarget):
		return "Nothing to retry yet", nil
	case err != nil:
		return err.Error(), nil
	}

	m.refreshTranscript()
	return "", tea.Batch(m.runGeneration(call), m.spinner.Tick)
}

func handleAttachCommand(m *model, args string) (string, tea.Cmd) {
	if args == "" {
		return "Usage: /attach <file-or-glob>", nil
	}
	if args == "clear" {
		m.engine.ClearPending(m.sessions.SelectedID())
		return "Pending attachments cleared", nil
	}

	refs, err := image.LoadBatch(args)
	if err != nil {
		return err.Error(), nil
	}
	m.engine.SetPending(m.sessions.SelectedID(), refs)
	if len(refs) == 1 {
		return "Attached 1 image", nil
	}
	return fmt.Sprintf("Attached %d images", len(refs)), nil
}

func handleStyleCommand(m *model, args string) (string, tea.Cmd) {
	s := m.sessions.Selected()
	if args == "" {
		return fmt.Sprintf("Style: %s", s.Settings.Style), nil
	}
	s.Settings.Style = args
	s.Touch()
	m.sessions.Save(s)
	return fmt.Sprintf("Style set to %s", args), nil
}

func handleRatioCommand(m *model, args string) (string, tea.Cmd) {
	s := m.sessions.Selected()
	if args == "" {
		return fmt.Sprintf("Aspect ratio: %s", s.Settings.AspectRatio), nil
	}
	if !strings.Contains(args, ":") {
		return "Aspect ratio looks like 1:1, 16:9, 9:16 ...", nil
	}
	s.Settings.AspectRatio = args
	s.Touch()
	m.sessions.Save(s)
	return fmt.Sprintf("Aspect ratio set to %s", args), nil
}

func handleTempCommand(m *model, args string) (string, tea.Cmd) {
	s := m.sessions.Selected()
	if args == "" {
		return fmt.Sprintf("Temperature: %g", s.Settings.Temperature), nil
	}
	t, err := strconv.ParseFloat(args, 64)
	if err != nil || t < 0 || t > 2 {
		return "Temperature must be a number between 0 and 2", nil
	}
	s.Settings.Temperature = t
	s.Touch()
	m.sessions.Save(s)
	return fmt.Sprintf("Temperature set to %g", t), nil
}

func handleFullBodyCommand(m *model, _ string) (string, tea.Cmd) {
	s := m.sessions.Selected()
	s.Settings.IsFullBody = !s.Settings.IsFullBody
	s.Touch()
	m.sessions.Save(s)
	if s.Settings.IsFullBody {
		return "Full-body framing on", nil
	}
	return "Full-body framing off", nil
}

func handleEnhanceCommand(m *model, args string) (string, tea.Cmd) {
	if args == "" {
		return "Usage: /enhance <prompt>", nil
	}
	eng := m.engine
	return "Enhancing prompt...", func() tea.Msg {
		return enhanceDoneMsg{prompt: eng.EnhancePrompt(context.Background(), args)}
	}
}

func handleHelpCommand(m *model, _ string) (string, tea.Cmd) {
	registry := getCommandRegistry()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, name := range names {
		cmd := registry[name]
		sb.WriteString(fmt.Sprintf("  %-20s %s\n", cmd.Usage, cmd.Description))
	}
	sb.WriteString("\nEnter sends · Alt+Enter newline · Ctrl+C exits")
	return sb.String(), nil
}

func handleQuitCommand(m *model, _ string) (string, tea.Cmd) {
	return "", tea.Quit
}
