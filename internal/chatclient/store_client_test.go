package chatclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"promptchat/internal/domain"
	"promptchat/internal/handler"
	"promptchat/internal/handler/sse"
	"promptchat/internal/notify"
	"promptchat/internal/repository/memory"
	"promptchat/internal/service/systemmessage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newStoreServer runs the real system message API over an in-memory store.
func newStoreServer(t *testing.T) (*httptest.Server, *notify.Notifier) {
	t.Helper()
	serverNotifier := notify.New()
	svc := systemmessage.NewService(memory.NewSystemMessageRepository(), serverNotifier, quietLogger())
	h := handler.NewSystemMessageHandler(svc, serverNotifier, sse.NewConfig(time.Second), quietLogger())
	chats := handler.NewChatHandler(nil, nil, quietLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/system-message", h.Get)
	mux.HandleFunc("POST /api/system-message", h.Save)
	mux.HandleFunc("DELETE /api/system-message", h.Clear)
	mux.HandleFunc("GET /api/system-message/events", h.Events)
	mux.HandleFunc("GET /api/chats/new", chats.NewChat)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, serverNotifier
}

type eventLog struct {
	mu     sync.Mutex
	events []notify.Event
}

func (l *eventLog) add(ev notify.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func TestStoreClient_SaveFetchClear(t *testing.T) {
	srv, _ := newStoreServer(t)
	client := NewStoreClient(srv.URL, WithStoreHTTPClient(srv.Client()))
	ctx := context.Background()

	log := &eventLog{}
	unsubscribe := client.Notifier().Subscribe("c1", log.add)
	defer unsubscribe()

	rec, err := client.Fetch(ctx, "c1")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if rec.Text != "" || rec.UpdatedAt != nil {
		t.Errorf("absent record = %+v, want empty", rec)
	}

	if err := client.Save(ctx, "c1", "You are a pirate."); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	rec, err = client.Fetch(ctx, "c1")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if rec.Text != "You are a pirate." || rec.UpdatedAt == nil {
		t.Errorf("record = %+v", rec)
	}

	if err := client.Clear(ctx, "c1"); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	rec, _ = client.Fetch(ctx, "c1")
	if rec.Text != "" {
		t.Errorf("text after clear = %q", rec.Text)
	}

	if log.len() != 2 {
		t.Fatalf("events = %d, want 2", log.len())
	}
	if log.events[0].Kind != notify.KindSaved || log.events[1].Kind != notify.KindCleared {
		t.Errorf("event kinds = %s, %s", log.events[0].Kind, log.events[1].Kind)
	}
}

func TestStoreClient_ValidationFailureDoesNotPublish(t *testing.T) {
	srv, _ := newStoreServer(t)
	client := NewStoreClient(srv.URL, WithStoreHTTPClient(srv.Client()))

	log := &eventLog{}
	unsubscribe := client.Notifier().Subscribe("", log.add)
	defer unsubscribe()

	err := client.Save(context.Background(), "", "text")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if log.len() != 0 {
		t.Error("failed save published an event")
	}
}

func TestStoreClient_ServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"status":500,"error":"Failed to save system message"}`)
	}))
	defer srv.Close()

	client := NewStoreClient(srv.URL, WithStoreHTTPClient(srv.Client()))
	log := &eventLog{}
	unsubscribe := client.Notifier().Subscribe("c1", log.add)
	defer unsubscribe()

	err := client.Save(context.Background(), "c1", "x")
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Failed to save system message" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if log.len() != 0 {
		t.Error("failed save published an event")
	}

	if _, err := client.Fetch(context.Background(), "c1"); !errors.Is(err, domain.ErrPersistence) {
		t.Errorf("Fetch() err = %v, want ErrPersistence", err)
	}
}

func TestStoreClient_NewChatID(t *testing.T) {
	srv, _ := newStoreServer(t)
	client := NewStoreClient(srv.URL, WithStoreHTTPClient(srv.Client()))

	id, err := client.NewChatID(context.Background())
	if err != nil {
		t.Fatalf("NewChatID() error: %v", err)
	}
	if id == "" {
		t.Error("empty chat id")
	}
}

func TestStoreClient_WatchRepublishesServerEvents(t *testing.T) {
	srv, serverNotifier := newStoreServer(t)
	watcher := NewStoreClient(srv.URL, WithStoreHTTPClient(srv.Client()))
	writer := NewStoreClient(srv.URL, WithStoreHTTPClient(srv.Client()))

	received := make(chan notify.Event, 1)
	unsubscribe := watcher.Notifier().Subscribe("c1", func(ev notify.Event) {
		select {
		case received <- ev:
		default:
		}
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	watchDone := make(chan error, 1)
	go func() { watchDone <- watcher.Watch(ctx, "c1") }()

	deadline := time.Now().Add(2 * time.Second)
	for serverNotifier.SubscriberCount("c1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watch never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := writer.Save(context.Background(), "c1", "from another client"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	select {
	case ev := <-received:
		if ev.Kind != notify.KindSaved {
			t.Errorf("kind = %s", ev.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not receive the change")
	}

	cancel()
	if err := <-watchDone; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch() = %v, want context.Canceled", err)
	}
}
