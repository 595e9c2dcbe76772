package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"github.com/spf13/cobra"

	"promptchat/internal/chatclient"
	"promptchat/internal/examples"
)

const chatHelp = `Commands:
  /retry    regenerate the last reply
  /copy     copy the last reply to the clipboard
  /system   show the current system message
  /share    show the web link and QR code of this conversation
  /quit     exit`

func newChatCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [chat-id]",
		Short: "Open an interactive chat",
		Long: `Open an interactive chat for a conversation.

Without a chat id a new conversation is started. The stored system message is
loaded first; when it changes (from this or another client) the transcript
starts over with the new message.

` + chatHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts, args, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runChat(ctx context.Context, opts *cliOptions, args []string, in io.Reader, out, errOut io.Writer) error {
	logger := opts.logger(errOut)
	store := opts.storeClient()

	chatID := ""
	if len(args) > 0 {
		chatID = args[0]
	} else {
		id, err := store.NewChatID(ctx)
		if err != nil {
			return fmt.Errorf("new conversation: %w", err)
		}
		chatID = id
	}

	view := chatclient.NewView(chatID, store, opts.transport(),
		chatclient.WithLogger(logger),
		chatclient.WithSessionOptions(chatclient.WithSessionModel(opts.model)),
		chatclient.WithDeltaHandler(func(_, delta string) { fmt.Fprint(out, delta) }),
		chatclient.WithRebindHook(func(s *chatclient.Session) {
			logger.Debug("session bound", "session_id", s.ID())
		}),
	)
	if err := view.Load(ctx); err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}
	defer view.Close()

	watchCtx, stopWatch := context.WithCancel(ctx)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := view.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
			logger.Debug("change events unavailable", "error", err)
		}
	}()
	defer func() {
		stopWatch()
		<-watchDone
	}()

	fmt.Fprintf(out, "Conversation %s\n", chatID)
	printSystemSummary(out, view.Record().Text)
	fmt.Fprintln(out, "Type /help for commands.")

	lastSystem := view.Record().Text
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		session := view.Session()
		if text := session.SystemMessage(); text != lastSystem {
			fmt.Fprintln(out, "[system message changed, starting a new session]")
			lastSystem = text
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(out, chatHelp)
			continue
		case "/system":
			printSystemSummary(out, view.Record().Text)
			continue
		case "/share":
			link, err := opts.shareLink(chatID)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			printShare(out, link, true)
			continue
		case "/copy":
			text, ok := session.LastAssistantText()
			if !ok {
				fmt.Fprintln(out, "nothing to copy")
				continue
			}
			fmt.Fprint(out, osc52.New(text))
			fmt.Fprintln(out, "copied")
			continue
		case "/retry":
			if !session.Regenerate(ctx) {
				fmt.Fprintln(out, "nothing to regenerate")
				continue
			}
		default:
			if strings.HasPrefix(line, "/") {
				fmt.Fprintf(out, "unknown command %s\n", line)
				continue
			}
			if !session.Submit(ctx, line) {
				fmt.Fprintln(out, "busy, try again")
				continue
			}
		}

		session.Wait()
		fmt.Fprintln(out)
		if err := session.LastError(); err != nil {
			if session.CanRegenerate() {
				fmt.Fprintf(out, "error: %v (use /retry to try again)\n", err)
			} else {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// printSystemSummary shows the base text and how many examples follow it.
func printSystemSummary(out io.Writer, text string) {
	base, pairs := examples.Split(text)
	if base == "" && len(pairs) == 0 {
		fmt.Fprintln(out, "System message: (none, server default applies)")
		return
	}
	fmt.Fprintf(out, "System message: %s\n", base)
	if len(pairs) > 0 {
		fmt.Fprintf(out, "Examples: %d\n", len(pairs))
	}
}
