package chatclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"promptchat/internal/domain/models/chat"
)

// Status is the lifecycle state of a Session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusStreaming  Status = "streaming"
	// StatusError is reported to the status hook when a turn fails, right
	// before the session returns to idle.
	StatusError Status = "error"
)

// Session is a chat conversation bound to one system message.
// It holds the transcript, runs at most one turn at a time and assembles
// the assistant reply from the stream.
type Session struct {
	id            string
	chatID        string
	systemMessage string
	model         string
	transport     Transport

	deltaHook  func(messageID, delta string)
	statusHook func(Status)

	mu       sync.Mutex
	messages []chat.Message
	status   Status
	lastErr  error
	cancel   context.CancelFunc
	done     chan struct{}
	closed   bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDeltaHook is called for every applied text increment.
func WithDeltaHook(fn func(messageID, delta string)) SessionOption {
	return func(s *Session) { s.deltaHook = fn }
}

// WithStatusHook is called on every status change.
func WithStatusHook(fn func(Status)) SessionOption {
	return func(s *Session) { s.statusHook = fn }
}

// WithSessionModel sets the model sent with each turn.
func WithSessionModel(model string) SessionOption {
	return func(s *Session) { s.model = model }
}

// NewSession creates an idle session with an empty transcript.
func NewSession(chatID, systemMessage string, transport Transport, opts ...SessionOption) *Session {
	s := &Session{
		id:            uuid.NewString(),
		chatID:        chatID,
		systemMessage: systemMessage,
		transport:     transport,
		status:        StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies this session instance. A rebind produces a new ID.
func (s *Session) ID() string { return s.id }

// SystemMessage returns the system message the session is bound to.
func (s *Session) SystemMessage() string { return s.systemMessage }

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastError returns the failure of the most recent turn, or nil.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Messages returns a deep copy of the transcript.
func (s *Session) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return chat.CloneMessages(s.messages)
}

// LastAssistantText returns the text of the last assistant message.
func (s *Session) LastAssistantText() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == chat.RoleAssistant {
			return s.messages[i].Text(), true
		}
	}
	return "", false
}

// Submit appends a user message and starts a turn. It returns false without
// doing anything when text is blank or a turn is already in flight.
func (s *Session) Submit(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.status != StatusIdle {
		return false
	}

	s.messages = append(s.messages, chat.Message{
		ID:    uuid.NewString(),
		Role:  chat.RoleUser,
		Parts: []chat.Part{chat.TextPart(text)},
	})
	s.startLocked(ctx, TriggerSubmit, -1)
	return true
}

// Regenerate asks for a new reply to the last user message. A trailing
// assistant message is replaced once the new reply produces text, so a turn
// that fails before that leaves it in place. It returns false unless
// CanRegenerate reports true.
func (s *Session) Regenerate(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canRegenerateLocked() {
		return false
	}

	replace := -1
	if last := len(s.messages) - 1; s.messages[last].Role == chat.RoleAssistant {
		replace = last
	}
	s.startLocked(ctx, TriggerRegenerate, replace)
	return true
}

// CanRegenerate reports whether Regenerate would start a turn: the session
// is idle and the transcript ends with an assistant reply or with a user
// message whose turn failed.
func (s *Session) CanRegenerate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canRegenerateLocked()
}

func (s *Session) canRegenerateLocked() bool {
	if s.closed || s.status != StatusIdle || len(s.messages) == 0 {
		return false
	}
	switch s.messages[len(s.messages)-1].Role {
	case chat.RoleAssistant:
		return len(s.messages) > 1
	case chat.RoleUser:
		return true
	}
	return false
}

// Wait blocks until no turn is in flight.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Close cancels any in-flight turn and waits for it to stop.
// The session rejects new turns afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// startLocked begins a turn. When replace is a valid index the request
// carries the transcript before it and the reply overwrites that message.
func (s *Session) startLocked(ctx context.Context, trigger Trigger, replace int) {
	turnCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.status = StatusSubmitting
	s.lastErr = nil
	s.cancel = cancel
	s.done = done

	history := s.messages
	if replace >= 0 {
		history = s.messages[:replace]
	}
	req := &Request{
		ChatID:        s.chatID,
		SystemMessage: s.systemMessage,
		Model:         s.model,
		Messages:      chat.CloneMessages(history),
		Trigger:       trigger,
	}

	go s.run(turnCtx, req, replace, done)
}

// turn tracks the assistant message being assembled.
// The message enters the transcript with its first text delta, or on finish
// for an empty reply.
type turn struct {
	messageID    string
	replaceIndex int
	messageIndex int
	partIndex    int
	lastSeq      int
	finished     bool
	err          error
}

func (s *Session) run(ctx context.Context, req *Request, replace int, done chan struct{}) {
	defer close(done)
	s.notifyStatus(StatusSubmitting)

	stream, err := s.transport.Send(ctx, req)
	if err != nil {
		s.endTurn(ctx, err)
		return
	}
	defer stream.Close()

	t := &turn{replaceIndex: replace, messageIndex: -1, partIndex: -1}
	for !t.finished && t.err == nil && stream.Next() {
		chunk := stream.Chunk()
		started, messageID, delta := s.apply(t, chunk)
		if started {
			s.notifyStatus(StatusStreaming)
		}
		if delta != "" && s.deltaHook != nil {
			s.deltaHook(messageID, delta)
		}
	}

	switch {
	case t.err != nil:
		s.endTurn(ctx, t.err)
	case t.finished:
		s.endTurn(ctx, nil)
	default:
		err := stream.Err()
		if err == nil {
			err = ErrIncomplete
		}
		s.endTurn(ctx, err)
	}
}

// apply folds one chunk into the transcript under the session lock.
func (s *Session) apply(t *turn, chunk Chunk) (started bool, messageID, delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitting {
		s.status = StatusStreaming
		started = true
	}

	switch chunk.Type {
	case chat.ChunkStart:
		if chunk.MessageID != "" {
			t.messageID = chunk.MessageID
		}

	case chat.ChunkTextDelta:
		if chunk.Seq != t.lastSeq+1 {
			t.err = fmt.Errorf("%w: got seq %d after %d", ErrOutOfOrder, chunk.Seq, t.lastSeq)
			return started, "", ""
		}
		t.lastSeq = chunk.Seq

		msg := s.ensureAssistantLocked(t)
		if t.partIndex < 0 {
			msg.Parts = append(msg.Parts, chat.TextPart(""))
			t.partIndex = len(msg.Parts) - 1
		}
		msg.Parts[t.partIndex].Text += chunk.Delta
		return started, msg.ID, chunk.Delta

	case chat.ChunkFinish:
		s.ensureAssistantLocked(t)
		t.finished = true

	case chat.ChunkError:
		text := chunk.ErrorText
		if text == "" {
			text = "unknown error"
		}
		t.err = fmt.Errorf("%w: %s", ErrStreamFailed, text)
	}

	return started, "", ""
}

// ensureAssistantLocked returns the in-flight assistant message, creating it
// on first use. A regenerate overwrites the message it replaces.
func (s *Session) ensureAssistantLocked(t *turn) *chat.Message {
	if t.messageIndex < 0 {
		id := t.messageID
		if id == "" {
			id = uuid.NewString()
		}
		msg := chat.Message{ID: id, Role: chat.RoleAssistant}
		if t.replaceIndex >= 0 && t.replaceIndex < len(s.messages) {
			s.messages = append(s.messages[:t.replaceIndex], msg)
		} else {
			s.messages = append(s.messages, msg)
		}
		t.messageIndex = len(s.messages) - 1
	}
	return &s.messages[t.messageIndex]
}

// endTurn records the outcome and returns the session to idle.
func (s *Session) endTurn(ctx context.Context, err error) {
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		err = fmt.Errorf("%w: %v", ctx.Err(), err)
	}

	s.mu.Lock()
	s.cancel()
	if err != nil {
		s.status = StatusError
		s.lastErr = err
	}
	s.mu.Unlock()

	if err != nil {
		s.notifyStatus(StatusError)
	}

	s.mu.Lock()
	s.status = StatusIdle
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	s.notifyStatus(StatusIdle)
}

func (s *Session) notifyStatus(status Status) {
	if s.statusHook != nil {
		s.statusHook(status)
	}
}
