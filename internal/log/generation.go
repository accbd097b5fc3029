package log

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// LogGenerate logs an outgoing generation request in human-readable form.
func LogGenerate(providerName, model string, imageCount int, prompt string, temperature float64, aspectRatio string) {
	if !enabled {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, ">>> [%s] %s | images=%d temp=%.1f ratio=%s\n", providerName, model, imageCount, temperature, aspectRatio)
	fmt.Fprintf(&sb, "    Prompt: %s\n", escapeForLog(prompt))
	logger.Info(sb.String())
}

// LogGenerateResult logs the parsed outcome of a generation call.
func LogGenerateResult(providerName string, hasImage bool, text string) {
	if !enabled {
		return
	}
	logger.Info(fmt.Sprintf("<<< [%s] image=%v text=%s", providerName, hasImage, escapeForLog(text)))
}

// LogError logs a provider failure.
func LogError(providerName string, err error) {
	if !enabled {
		return
	}
	logger.Error("provider error", zap.String("provider", providerName), zap.Error(err))
}

// escapeForLog flattens newlines and truncates long strings for single-line
// log entries. Truncation backs up to a rune boundary so the log never
// carries a split multibyte character.
func escapeForLog(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	if len(s) > 300 {
		cut := 300
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
