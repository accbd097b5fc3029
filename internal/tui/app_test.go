package tui

import (
	"testing"

	"github.com/pixenhq/pixen/internal/config"
	"github.com/pixenhq/pixen/internal/engine"
	"github.com/pixenhq/pixen/internal/provider"
	"github.com/pixenhq/pixen/internal/session"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sessions := session.NewManager(store)
	sessions.Initialize()
	t.Cleanup(sessions.Close)

	fake := &provider.FakeGateway{
		Responses: []provider.FakeResponse{
			{Result: &provider.GenerateResult{Text: "a cat"}},
		},
	}
	return newModel(sessions, engine.New(sessions, fake), config.NewConfig())
}

func TestDetachedGenerationAppliesInUpdate(t *testing.T) {
	m := newTestModel(t)
	id := m.sessions.SelectedID()

	call, err := m.engine.BeginSend(id, "draw a cat")
	if err != nil {
		t.Fatal(err)
	}

	msg := m.runGeneration(call)()

	// The detached command only runs the gateway; the session is mutated
	// on the event loop when Update handles the done message.
	if got := len(m.sessions.Selected().Messages); got != 1 {
		t.Fatalf("detached command must not touch the session, got %d messages", got)
	}
	if !m.engine.Busy(id) {
		t.Fatal("session should stay busy until Update applies the completion")
	}

	updated, _ := m.Update(msg)
	m = updated.(model)

	if got := len(m.sessions.Selected().Messages); got != 2 {
		t.Fatalf("Update should apply the reply, got %d messages", got)
	}
	if m.engine.Busy(id) {
		t.Error("busy flag should clear once the completion is applied")
	}
}

func TestParseRetryArgs(t *testing.T) {
	base := config.DefaultGenSettings()

	tests := []struct {
		name         string
		args         string
		wantSettings config.GenSettings
		wantFeedback string
	}{
		{
			name:         "plain feedback",
			args:         "more dramatic",
			wantSettings: base,
			wantFeedback: "more dramatic",
		},
		{
			name:         "overrides then feedback",
			args:         "temp=0.3 style=Anime add a hat",
			wantSettings: config.GenSettings{Temperature: 0.3, Style: "Anime", AspectRatio: base.AspectRatio},
			wantFeedback: "add a hat",
		},
		{
			name:         "ratio and fullbody",
			args:         "ratio=16:9 fullbody=on",
			wantSettings: config.GenSettings{Temperature: base.Temperature, Style: base.Style, AspectRatio: "16:9", IsFullBody: true},
			wantFeedback: "",
		},
		{
			name:         "out-of-range temp ignored",
			args:         "temp=7 wider",
			wantSettings: base,
			wantFeedback: "wider",
		},
		{
			name:         "equals sign inside feedback",
			args:         "make it moody x=y style",
			wantSettings: base,
			wantFeedback: "make it moody x=y style",
		},
		{
			name:         "empty args",
			args:         "",
			wantSettings: base,
			wantFeedback: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, feedback := parseRetryArgs(base, tt.args)
			if settings != tt.wantSettings {
				t.Errorf("settings = %+v, want %+v", settings, tt.wantSettings)
			}
			if feedback != tt.wantFeedback {
				t.Errorf("feedback = %q, want %q", feedback, tt.wantFeedback)
			}
		})
	}
}
