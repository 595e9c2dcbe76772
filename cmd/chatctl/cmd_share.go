package main

import (
	"fmt"
	"io"
	"net/url"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
)

func newShareCmd(opts *cliOptions) *cobra.Command {
	var withQR bool
	cmd := &cobra.Command{
		Use:   "share <chat-id>",
		Short: "Print a conversation's web link and QR code",
		Long: `Print the web link of a conversation, followed by a QR code of it.

The link is built from --web-url (env PROMPTCHAT_WEB_URL), which defaults to
the server address.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := opts.shareLink(args[0])
			if err != nil {
				return err
			}
			printShare(cmd.OutOrStdout(), link, withQR)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withQR, "qr", true, "render a QR code below the link")
	return cmd
}

// shareLink returns the web address of a conversation.
func (o *cliOptions) shareLink(chatID string) (string, error) {
	base := o.webURL
	if base == "" {
		base = o.server
	}
	link, err := url.JoinPath(base, "chat", chatID)
	if err != nil {
		return "", fmt.Errorf("build share link from %q: %w", base, err)
	}
	return link, nil
}

func printShare(out io.Writer, link string, withQR bool) {
	fmt.Fprintln(out, link)
	if withQR {
		qrterminal.GenerateHalfBlock(link, qrterminal.M, out)
	}
}
