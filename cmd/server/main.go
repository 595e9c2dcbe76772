package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"promptchat/internal/capabilities"
	"promptchat/internal/config"
	"promptchat/internal/handler"
	"promptchat/internal/handler/sse"
	"promptchat/internal/middleware"
	"promptchat/internal/notify"
	"promptchat/internal/repository"
	"promptchat/internal/service/llm"
	"promptchat/internal/service/systemmessage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store_driver", cfg.StoreDriver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// System message store
	repo, closeStore, err := repository.Open(ctx, cfg, logger, repository.OpenOptions{})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	notifier := notify.New()
	systemMessageService := systemmessage.NewService(repo, notifier, logger)

	// Setup LLM providers
	providerRegistry, err := llm.SetupProviders(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}
	streamingService := llm.SetupStreaming(cfg, providerRegistry, logger)

	// Initialize capability registry
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}

	sseConfig := sse.NewConfig(cfg.KeepAliveInterval)
	systemMessageHandler := handler.NewSystemMessageHandler(systemMessageService, notifier, sseConfig, logger)
	chatHandler := handler.NewChatHandler(streamingService, sseConfig, logger)
	modelsHandler := handler.NewModelsHandler(capabilityRegistry, providerRegistry, cfg.DefaultModel, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.Health)

	// System message routes, also served without the /api prefix
	for _, prefix := range []string{"/api", ""} {
		mux.HandleFunc("GET "+prefix+"/system-message", systemMessageHandler.Get)
		mux.HandleFunc("POST "+prefix+"/system-message", systemMessageHandler.Save)
		mux.HandleFunc("DELETE "+prefix+"/system-message", systemMessageHandler.Clear)
		mux.HandleFunc("GET "+prefix+"/system-message/events", systemMessageHandler.Events)
		mux.HandleFunc("POST "+prefix+"/chat", chatHandler.StreamChat)
	}

	// Conversation ids and model catalog
	mux.HandleFunc("GET /api/chats/new", chatHandler.NewChat)
	mux.HandleFunc("GET /api/models", modelsHandler.ListModels)

	// Order: CORS → RequestLogger → Recovery → Routes
	var h http.Handler = middleware.Chain(mux,
		middleware.RequestLogger(logger),
		middleware.Recovery(logger),
	)

	// CORS - outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Last-Event-ID", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
		// Request contexts end on shutdown so open SSE streams close
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			closeStore()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", "error", err)
		}
	}
}
