package sse

import "time"

// Config holds configuration for SSE connections
type Config struct {
	// KeepAliveInterval is how often to send keep-alive pings to prevent timeouts.
	// 10-15 seconds is safe for most proxies.
	KeepAliveInterval time.Duration
}

// DefaultConfig returns the default SSE configuration
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 10 * time.Second,
	}
}

// NewConfig returns a config with the given interval, or the default when
// interval is not positive.
func NewConfig(interval time.Duration) *Config {
	if interval <= 0 {
		return DefaultConfig()
	}
	return &Config{KeepAliveInterval: interval}
}
