package chatclient

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"promptchat/internal/examples"
	"promptchat/internal/notify"
)

// refetchTimeout bounds the refetch triggered by a change event.
const refetchTimeout = 10 * time.Second

// View is one open conversation: the stored system message plus a Session
// bound to it. When the stored text changes the session is replaced.
type View struct {
	chatID    string
	store     *StoreClient
	transport Transport

	sessionOpts []SessionOption
	onDelta     func(messageID, delta string)
	onRebind    func(*Session)
	logger      *slog.Logger

	mu          sync.Mutex
	record      Record
	session     *Session
	loaded      bool
	unsubscribe func()
	closed      bool
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithSessionOptions applies opts to every session the view creates.
func WithSessionOptions(opts ...SessionOption) ViewOption {
	return func(v *View) { v.sessionOpts = append(v.sessionOpts, opts...) }
}

// WithDeltaHandler receives text increments from the view's current session
// only. Increments a replaced session emits while it shuts down are dropped.
func WithDeltaHandler(fn func(messageID, delta string)) ViewOption {
	return func(v *View) { v.onDelta = fn }
}

// WithRebindHook is called with the new session after every rebind.
func WithRebindHook(fn func(*Session)) ViewOption {
	return func(v *View) { v.onRebind = fn }
}

// WithLogger sets the view's logger.
func WithLogger(logger *slog.Logger) ViewOption {
	return func(v *View) { v.logger = logger }
}

// NewView creates a view for chatID. Call Load before use.
func NewView(chatID string, store *StoreClient, transport Transport, opts ...ViewOption) *View {
	v := &View{
		chatID:    chatID,
		store:     store,
		transport: transport,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ChatID returns the conversation id.
func (v *View) ChatID() string { return v.chatID }

// Load fetches the system message, binds a session to it and starts
// listening for changes. Calling Load again refetches.
func (v *View) Load(ctx context.Context) error {
	if err := v.refresh(ctx); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unsubscribe == nil && !v.closed {
		v.unsubscribe = v.store.Notifier().Subscribe(v.chatID, v.onChange)
	}
	return nil
}

// Session returns the current session, or nil before Load.
func (v *View) Session() *Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session
}

// Record returns the last fetched system message.
func (v *View) Record() Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.record
}

// BaseText returns the stored text without its examples block.
func (v *View) BaseText() string {
	return examples.ExtractBaseText(v.Record().Text)
}

// Examples returns the few-shot pairs of the stored text.
func (v *View) Examples() []examples.Pair {
	return examples.ParseExamples(v.Record().Text)
}

// SaveComposed recombines base text and pairs and saves the result.
// On success the change event rebinds the session.
func (v *View) SaveComposed(ctx context.Context, base string, pairs []examples.Pair) error {
	return v.store.Save(ctx, v.chatID, examples.Compose(base, pairs))
}

// Watch mirrors server change events into the view until ctx is done.
func (v *View) Watch(ctx context.Context) error {
	return v.store.Watch(ctx, v.chatID)
}

// Close stops listening and closes the current session.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	unsubscribe := v.unsubscribe
	session := v.session
	v.unsubscribe = nil
	v.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if session != nil {
		session.Close()
	}
}

func (v *View) onChange(ev notify.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
	defer cancel()

	if err := v.refresh(ctx); err != nil {
		v.logger.Warn("refetch after change failed", "chat_id", v.chatID, "kind", ev.Kind, "error", err)
	}
}

// refresh fetches the record and rebinds when the text changed. The fetch
// that completes last wins.
func (v *View) refresh(ctx context.Context) error {
	rec, err := v.store.Fetch(ctx, v.chatID)
	if err != nil {
		return err
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	if v.loaded && rec.Text == v.record.Text {
		v.record = rec
		v.mu.Unlock()
		return nil
	}

	old := v.session
	next := v.newSession(rec.Text)
	v.record = rec
	v.session = next
	v.loaded = true
	v.mu.Unlock()

	if old != nil {
		old.Close()
		v.logger.Debug("session rebound", "chat_id", v.chatID, "session_id", next.ID())
	}
	if v.onRebind != nil {
		v.onRebind(next)
	}
	return nil
}

func (v *View) newSession(systemMessage string) *Session {
	if v.onDelta == nil {
		return NewSession(v.chatID, systemMessage, v.transport, v.sessionOpts...)
	}

	var session *Session
	opts := append([]SessionOption(nil), v.sessionOpts...)
	opts = append(opts, WithDeltaHook(func(messageID, delta string) {
		if current := v.Session(); current == session {
			v.onDelta(messageID, delta)
		}
	}))
	session = NewSession(v.chatID, systemMessage, v.transport, opts...)
	return session
}
