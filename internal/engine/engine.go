// Package engine implements the per-turn state machine: image-context
// resolution, optimistic session mutation, and the retry/rewind flow.
//
// The UI runs gateway calls in detached goroutines, so each turn splits
// into a synchronous begin (mutates the session, persists, returns a
// Call) and a synchronous finish (applies the result under a generation
// token guard).
package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pixenhq/pixen/internal/config"
	"github.com/pixenhq/pixen/internal/log"
	"github.com/pixenhq/pixen/internal/message"
	"github.com/pixenhq/pixen/internal/provider"
	"github.com/pixenhq/pixen/internal/session"
)

var (
	// ErrBusy means a generation is already in flight for the session.
	ErrBusy = errors.New("generation already in flight")

	// ErrEmptyTurn means there is nothing to send: no prompt text and no
	// pending images.
	ErrEmptyTurn = errors.New("nothing to send")

	// ErrNoRetryTarget means the session has no model message with a
	// preceding user message to retry.
	ErrNoRetryTarget = errors.New("no retryable model message")

	// ErrUnknownSession means the session id does not exist.
	ErrUnknownSession = errors.New("unknown session")
)

// FallbackPrompt is sent when a turn carries images but no usable text.
const FallbackPrompt = "Edit this image"

const (
	emptyReplyFallback = "No response from the model. Try rephrasing your prompt."
	failureFallback    = "Image generation failed."
)

// Call is one prepared generation call. Begin methods return it after the
// optimistic session mutation; the caller runs the gateway with it and
// hands the outcome back to Finish.
type Call struct {
	SessionID string
	Token     uint64
	Images    []message.ImageRef
	Prompt    string
	Settings  config.GenSettings
}

// FinishState reports how a completion was applied. Stale completions
// still update the durable record but must not touch UI loading state.
type FinishState struct {
	SessionID string
	Stale     bool
}

// sessionState is the transient, never-persisted per-session state.
type sessionState struct {
	pending []message.ImageRef
	busy    bool
	token   uint64
}

// Engine drives send and retry turns against the session collection.
type Engine struct {
	mu       sync.Mutex
	sessions *session.Manager
	gateway  provider.Gateway
	state    map[string]*sessionState
}

// New creates an engine over the given session collection and gateway.
func New(sessions *session.Manager, gateway provider.Gateway) *Engine {
	return &Engine{
		sessions: sessions,
		gateway:  gateway,
		state:    make(map[string]*sessionState),
	}
}

func (e *Engine) stateLocked(id string) *sessionState {
	st, ok := e.state[id]
	if !ok {
		st = &sessionState{}
		e.state[id] = st
	}
	return st
}

// SetPending replaces the session's pending attachment batch. Attach
// batches are all-or-none; callers load every file before calling this.
func (e *Engine) SetPending(id string, images []message.ImageRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stateLocked(id).pending = append([]message.ImageRef(nil), images...)
}

// Pending returns the session's pending attachments.
func (e *Engine) Pending(id string) []message.ImageRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]message.ImageRef(nil), e.stateLocked(id).pending...)
}

// ClearPending discards the session's pending attachments.
func (e *Engine) ClearPending(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stateLocked(id).pending = nil
}

// Busy reports whether the session has a generation in flight.
func (e *Engine) Busy(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked(id).busy
}

// Forget drops the transient state of a deleted session.
func (e *Engine) Forget(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.state, id)
}

// BeginSend starts a send turn: appends the user message, derives the
// title on the first exchange, resolves the image context, persists
// optimistically, consumes the pending batch, and marks the session busy.
//
// Image-context resolution, strict priority order: pending images (all of
// them, last becomes active), else the active image alone, else the
// newest history message carrying an image. No match means pure
// text-to-image.
func (e *Engine) BeginSend(id, text string) (*Call, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sessions.Get(id)
	if s == nil {
		return nil, ErrUnknownSession
	}
	st := e.stateLocked(id)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" && len(st.pending) == 0 {
		return nil, ErrEmptyTurn
	}
	if st.busy {
		return nil, ErrBusy
	}

	prior := len(s.Messages)
	user := message.UserMessage(trimmed, append([]message.ImageRef(nil), st.pending...))
	s.Messages = append(s.Messages, user)

	// Only the first real exchange names the session.
	if prior <= 1 {
		s.Title = session.DeriveTitle(trimmed, len(st.pending) > 0)
	}

	var images []message.ImageRef
	switch {
	case len(st.pending) > 0:
		images = append(images, st.pending...)
		last := images[len(images)-1]
		s.ActiveImage = &last
	case s.ActiveImage != nil:
		images = []message.ImageRef{*s.ActiveImage}
	default:
		if img, ok := s.LastImageInHistory(-1); ok {
			images = []message.ImageRef{img}
			s.ActiveImage = &img
		}
	}

	s.Touch()
	e.sessions.Save(s)
	st.pending = nil
	st.busy = true
	st.token++

	prompt := trimmed
	if prompt == "" {
		prompt = FallbackPrompt
	}

	log.Logger().Debug("send turn started",
		zap.String("session", id),
		zap.Int("images", len(images)))

	return &Call{
		SessionID: id,
		Token:     st.token,
		Images:    images,
		Prompt:    prompt,
		Settings:  s.Settings,
	}, nil
}

// BeginRetry rewinds the most recent model message and prepares its
// regeneration. Input images come from the preceding user message's own
// attachments, else from strictly earlier history. The effective prompt
// is the original text plus optional feedback. The truncation and the
// active-image rewind are applied and persisted before the gateway call.
//
// Retry settings apply to this call only; the session's stored settings
// are untouched.
func (e *Engine) BeginRetry(id, feedback string, settings config.GenSettings) (*Call, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sessions.Get(id)
	if s == nil {
		return nil, ErrUnknownSession
	}
	st := e.stateLocked(id)
	if st.busy {
		return nil, ErrBusy
	}

	target := -1
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == message.RoleModel {
			target = i
			break
		}
	}
	if target < 0 {
		return nil, ErrNoRetryTarget
	}
	userIdx := -1
	for i := target - 1; i >= 0; i-- {
		if s.Messages[i].Role == message.RoleUser {
			userIdx = i
			break
		}
	}
	if userIdx < 0 {
		return nil, ErrNoRetryTarget
	}
	userMsg := s.Messages[userIdx]

	var images []message.ImageRef
	if own := userMsg.AllImages(); len(own) > 0 {
		images = append([]message.ImageRef(nil), own...)
	} else if img, ok := s.LastImageInHistory(userIdx); ok {
		images = []message.ImageRef{img}
	}

	prompt := strings.TrimSpace(strings.TrimSpace(userMsg.Text) + " " + strings.TrimSpace(feedback))
	if prompt == "" {
		prompt = FallbackPrompt
	}

	// Optimistic rewind: drop the old answer, point the active image at
	// the re-resolved input.
	s.Messages = s.Messages[:target]
	if len(images) > 0 {
		last := images[len(images)-1]
		s.ActiveImage = &last
	} else {
		s.ActiveImage = nil
	}
	s.Touch()
	e.sessions.Save(s)
	st.busy = true
	st.token++

	log.Logger().Debug("retry started",
		zap.String("session", id),
		zap.Int("truncatedTo", target),
		zap.Int("images", len(images)))

	return &Call{
		SessionID: id,
		Token:     st.token,
		Images:    images,
		Prompt:    prompt,
		Settings:  settings,
	}, nil
}

// Generate runs the gateway for a prepared call. Callers typically invoke
// this from a detached goroutine and pass the outcome to Finish.
func (e *Engine) Generate(ctx context.Context, call *Call) (*provider.GenerateResult, error) {
	return e.gateway.Generate(ctx, provider.GenerateRequest{
		Images:   call.Images,
		Prompt:   call.Prompt,
		Settings: call.Settings,
	})
}

// EnhancePrompt rewrites a draft prompt through the gateway. Failures
// return the original prompt unchanged.
func (e *Engine) EnhancePrompt(ctx context.Context, prompt string) string {
	enhanced, err := e.gateway.EnhancePrompt(ctx, prompt)
	if err != nil || strings.TrimSpace(enhanced) == "" {
		return prompt
	}
	return enhanced
}

// Finish applies a completed generation to its session. An image result
// appends an image-only model message and becomes the active image; a
// text-only result appends a text message and leaves the active image
// alone; an error appends an error-flagged message and never rolls back
// the user's turn. The durable record is always updated, even when the
// completion is stale.
func (e *Engine) Finish(call *Call, result *provider.GenerateResult, genErr error) FinishState {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sessions.Get(call.SessionID)
	if s == nil {
		// Session deleted mid-flight; nothing left to update.
		delete(e.state, call.SessionID)
		return FinishState{SessionID: call.SessionID, Stale: true}
	}
	st := e.stateLocked(call.SessionID)

	switch {
	case genErr != nil:
		text := genErr.Error()
		if text == "" {
			text = failureFallback
		}
		s.Messages = append(s.Messages, message.ModelErrorMessage(text))
		log.LogError("engine", genErr)

	case result != nil && result.ImageURL != "":
		img, err := message.ImageFromDataURL(result.ImageURL)
		if err != nil {
			s.Messages = append(s.Messages, message.ModelErrorMessage(failureFallback))
			log.LogError("engine", err)
			break
		}
		s.Messages = append(s.Messages, message.ModelImageMessage(img))
		s.ActiveImage = &img

	default:
		text := ""
		if result != nil {
			text = strings.TrimSpace(result.Text)
		}
		if text == "" {
			text = emptyReplyFallback
		}
		s.Messages = append(s.Messages, message.ModelTextMessage(text))
	}

	s.Touch()
	e.sessions.Save(s)

	// The busy flag and UI loading state belong to the call that holds the
	// current token; a superseded completion leaves them alone.
	stale := call.Token != st.token
	if !stale {
		st.busy = false
	}
	return FinishState{SessionID: call.SessionID, Stale: stale}
}
