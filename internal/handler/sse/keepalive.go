package sse

import (
	"log/slog"
	"sync"
	"time"
)

// KeepAliveStrategy defines how keep-alive pings are sent to maintain SSE connections
type KeepAliveStrategy interface {
	// Start begins sending keep-alive pings using the provided writer.
	// The returned channel closes when the strategy stops, either because
	// Stop was called or because a write failed.
	Start(writer KeepAliveWriter, logger *slog.Logger) <-chan struct{}

	// Stop terminates the keep-alive mechanism and waits for it to exit
	Stop()
}

// KeepAliveWriter abstracts the mechanism for writing keep-alive messages
type KeepAliveWriter interface {
	// WriteKeepAlive writes a keep-alive message (SSE comment)
	WriteKeepAlive() error
}

// TickerKeepAlive implements periodic keep-alive using time.Ticker
type TickerKeepAlive struct {
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewTickerKeepAlive creates a new ticker-based keep-alive strategy
func NewTickerKeepAlive(interval time.Duration) *TickerKeepAlive {
	return &TickerKeepAlive{
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins sending keep-alive pings on the configured interval.
// It must be called at most once.
func (k *TickerKeepAlive) Start(writer KeepAliveWriter, logger *slog.Logger) <-chan struct{} {
	ticker := time.NewTicker(k.interval)

	go func() {
		defer close(k.stopped)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := writer.WriteKeepAlive(); err != nil {
					// Connection dropped
					logger.Debug("keep-alive write failed, stopping", "error", err)
					return
				}
			case <-k.done:
				return
			}
		}
	}()

	return k.stopped
}

// Stop terminates the keep-alive goroutine. Safe to call multiple times,
// and before Start.
func (k *TickerKeepAlive) Stop() {
	k.stopOnce.Do(func() { close(k.done) })
}

// Wait blocks until a started keep-alive goroutine has exited.
func (k *TickerKeepAlive) Wait() {
	<-k.stopped
}
