// Command chatctl is a terminal client for the promptchat server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"promptchat/internal/chatclient"
)

// DefaultServer is used when neither --server nor PROMPTCHAT_SERVER is set.
const DefaultServer = "http://localhost:8080"

// cliOptions holds the global flags
type cliOptions struct {
	server  string
	webURL  string
	model   string
	verbose bool

	// httpClient overrides the HTTP client (tests)
	httpClient *http.Client
}

func (o *cliOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *cliOptions) storeClient() *chatclient.StoreClient {
	var opts []chatclient.StoreOption
	if o.httpClient != nil {
		opts = append(opts, chatclient.WithStoreHTTPClient(o.httpClient))
	}
	return chatclient.NewStoreClient(o.server, opts...)
}

func (o *cliOptions) transport() *chatclient.HTTPTransport {
	opts := []chatclient.HTTPOption{chatclient.WithModel(o.model)}
	if o.httpClient != nil {
		opts = append(opts, chatclient.WithHTTPClient(o.httpClient))
	}
	return chatclient.NewHTTPTransport(o.server, opts...)
}

// newRootCmd builds the command tree
func newRootCmd(opts *cliOptions) *cobra.Command {
	server := os.Getenv("PROMPTCHAT_SERVER")
	if server == "" {
		server = DefaultServer
	}

	rootCmd := &cobra.Command{
		Use:   "chatctl",
		Short: "Chat with an LLM using a per-conversation system message",
		Long: `chatctl talks to a promptchat server.

Each conversation has an id and an optional stored system message, which may
end with a block of few-shot examples. Changing the system message starts a
fresh session for that conversation.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", server, "server base URL (env PROMPTCHAT_SERVER)")
	rootCmd.PersistentFlags().StringVar(&opts.webURL, "web-url", os.Getenv("PROMPTCHAT_WEB_URL"), "base URL for share links (env PROMPTCHAT_WEB_URL, defaults to --server)")
	rootCmd.PersistentFlags().StringVar(&opts.model, "model", "", "model id (server default when empty)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newChatCmd(opts),
		newSystemCmd(opts),
		newExamplesCmd(opts),
		newNewCmd(opts),
		newShareCmd(opts),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&cliOptions{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
