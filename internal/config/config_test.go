package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_StoreDriverSelection(t *testing.T) {
	tests := []struct {
		name        string
		storeDriver string
		databaseURL string
		want        string
	}{
		{
			name: "memory when nothing configured",
			want: StoreDriverMemory,
		},
		{
			name:        "postgres when database url set",
			databaseURL: "postgres://localhost:5432/promptchat",
			want:        StoreDriverPostgres,
		},
		{
			name:        "explicit driver wins",
			storeDriver: "Mongo",
			databaseURL: "postgres://localhost:5432/promptchat",
			want:        StoreDriverMongo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORE_DRIVER", tt.storeDriver)
			t.Setenv("DATABASE_URL", tt.databaseURL)

			cfg := Load()
			if cfg.StoreDriver != tt.want {
				t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("CHAT_MAX_DURATION", "")
	t.Setenv("DEFAULT_SYSTEM_MESSAGE", "")
	t.Setenv("DEBUG", "")

	cfg := Load()

	if cfg.TablePrefix != "prod_" {
		t.Errorf("TablePrefix = %q, want prod_", cfg.TablePrefix)
	}
	if cfg.ChatMaxDuration != 30*time.Second {
		t.Errorf("ChatMaxDuration = %v, want 30s", cfg.ChatMaxDuration)
	}
	if cfg.DefaultSystemMessage != "You are a helpful assistant." {
		t.Errorf("DefaultSystemMessage = %q", cfg.DefaultSystemMessage)
	}
	if cfg.Debug {
		t.Error("Debug should default to false in prod")
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("CHAT_MAX_DURATION", "soon")
	t.Setenv("SSE_KEEPALIVE_INTERVAL", "-5s")

	cfg := Load()
	if cfg.ChatMaxDuration != 30*time.Second {
		t.Errorf("ChatMaxDuration = %v, want fallback 30s", cfg.ChatMaxDuration)
	}
	if cfg.KeepAliveInterval != 10*time.Second {
		t.Errorf("KeepAliveInterval = %v, want fallback 10s", cfg.KeepAliveInterval)
	}
}

func TestSetupLogger_WritesRotatedFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "server.log")
	cfg := &Config{LogLevel: "info", LogFormat: "json", LogFile: logPath}

	logger, closer, err := SetupLogger(cfg)
	if err != nil {
		t.Fatalf("SetupLogger() error: %v", err)
	}

	logger.Info("hello", slog.String("component", "test"))
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected log to contain message, got: %s", string(data))
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
