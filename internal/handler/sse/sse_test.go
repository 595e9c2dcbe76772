package sse

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingWriter struct {
	calls  atomic.Int32
	failAt int32
}

func (c *countingWriter) WriteKeepAlive() error {
	n := c.calls.Add(1)
	if c.failAt > 0 && n >= c.failAt {
		return errors.New("broken pipe")
	}
	return nil
}

func TestTickerKeepAlive_StopsOnRequest(t *testing.T) {
	k := NewTickerKeepAlive(5 * time.Millisecond)
	w := &countingWriter{}
	stopped := k.Start(w, discardLogger())

	time.Sleep(30 * time.Millisecond)
	k.Stop()
	k.Stop()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("keep-alive did not stop")
	}
	if w.calls.Load() == 0 {
		t.Error("expected at least one keep-alive")
	}
}

func TestTickerKeepAlive_StopsOnWriteFailure(t *testing.T) {
	k := NewTickerKeepAlive(2 * time.Millisecond)
	w := &countingWriter{failAt: 2}
	stopped := k.Start(w, discardLogger())
	defer k.Stop()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("keep-alive kept running after write failure")
	}
	if got := w.calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestWriter_Frames(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}

	_ = w.WriteFrame("data: {\"type\":\"start\"}\n\n")
	_ = w.WriteKeepAlive()
	_ = w.WriteEvent("system_message_updated", map[string]string{"chatId": "c1"})

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	want := "data: {\"type\":\"start\"}\n\n" +
		": keepalive\n\n" +
		"event: system_message_updated\ndata: {\"chatId\":\"c1\"}\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

type plainWriter struct{ http.ResponseWriter }

func TestNewWriter_RequiresFlusher(t *testing.T) {
	_, err := NewWriter(plainWriter{httptest.NewRecorder()})
	if !errors.Is(err, ErrStreamingUnsupported) {
		t.Errorf("err = %v, want ErrStreamingUnsupported", err)
	}
}

func TestNewConfig(t *testing.T) {
	if got := NewConfig(0).KeepAliveInterval; got != 10*time.Second {
		t.Errorf("default interval = %v", got)
	}
	if got := NewConfig(time.Second).KeepAliveInterval; got != time.Second {
		t.Errorf("interval = %v", got)
	}
}
