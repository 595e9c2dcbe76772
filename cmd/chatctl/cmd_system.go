package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"promptchat/internal/examples"
)

func newSystemCmd(opts *cliOptions) *cobra.Command {
	systemCmd := &cobra.Command{
		Use:   "system",
		Short: "Read or change a conversation's system message",
	}

	getCmd := &cobra.Command{
		Use:   "get <chat-id>",
		Short: "Print the stored system message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := opts.storeClient().Fetch(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch system message: %w", err)
			}
			if rec.Text == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "(no system message)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.Text)
			return nil
		},
	}

	var raw bool
	setCmd := &cobra.Command{
		Use:   "set <chat-id> <text>...",
		Short: "Replace the base system message",
		Long: `Replace the base text of the system message.

Stored few-shot examples are kept unless --raw is given, in which case the
text is saved exactly as written.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, text := args[0], strings.Join(args[1:], " ")
			store := opts.storeClient()

			if !raw {
				rec, err := store.Fetch(cmd.Context(), chatID)
				if err != nil {
					return fmt.Errorf("fetch system message: %w", err)
				}
				text = examples.Compose(text, examples.ParseExamples(rec.Text))
			}

			if err := store.Save(cmd.Context(), chatID, text); err != nil {
				return fmt.Errorf("save system message (try again): %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "System message saved")
			return nil
		},
	}
	setCmd.Flags().BoolVar(&raw, "raw", false, "save the text verbatim, dropping stored examples")

	clearCmd := &cobra.Command{
		Use:   "clear <chat-id>",
		Short: "Remove the system message and its examples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.storeClient().Clear(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("clear system message (try again): %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "System message cleared")
			return nil
		},
	}

	systemCmd.AddCommand(getCmd, setCmd, clearCmd)
	return systemCmd
}
