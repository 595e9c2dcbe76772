package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"promptchat/internal/examples"
)

func newExamplesCmd(opts *cliOptions) *cobra.Command {
	examplesCmd := &cobra.Command{
		Use:   "examples",
		Short: "Manage few-shot examples in the system message",
	}

	listCmd := &cobra.Command{
		Use:   "list <chat-id>",
		Short: "List stored example pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := opts.storeClient().Fetch(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch system message: %w", err)
			}

			pairs := examples.ParseExamples(rec.Text)
			if len(pairs) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "(no examples)")
				return nil
			}
			out := cmd.OutOrStdout()
			for i, p := range pairs {
				fmt.Fprintf(out, "%d. user: %s\n   assistant: %s\n", i+1, p.User, p.Assistant)
			}
			return nil
		},
	}

	var user, assistant string
	addCmd := &cobra.Command{
		Use:   "add <chat-id> --user <text> --assistant <text>",
		Short: "Append an example pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editExamples(cmd, opts, args[0], func(pairs []examples.Pair) ([]examples.Pair, error) {
				return append(pairs, examples.NewPair(user, assistant)), nil
			})
		},
	}
	addCmd.Flags().StringVar(&user, "user", "", "user turn of the example")
	addCmd.Flags().StringVar(&assistant, "assistant", "", "assistant turn of the example")
	_ = addCmd.MarkFlagRequired("user")

	removeCmd := &cobra.Command{
		Use:   "remove <chat-id> <number>",
		Short: "Remove an example pair by its list number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid example number %q", args[1])
			}
			return editExamples(cmd, opts, args[0], func(pairs []examples.Pair) ([]examples.Pair, error) {
				if n < 1 || n > len(pairs) {
					return nil, fmt.Errorf("example %d does not exist (have %d)", n, len(pairs))
				}
				return append(pairs[:n-1:n-1], pairs[n:]...), nil
			})
		},
	}

	examplesCmd.AddCommand(listCmd, addCmd, removeCmd)
	return examplesCmd
}

// editExamples splits the stored text, applies edit to the pairs and saves
// the recomposed text.
func editExamples(cmd *cobra.Command, opts *cliOptions, chatID string, edit func([]examples.Pair) ([]examples.Pair, error)) error {
	store := opts.storeClient()
	rec, err := store.Fetch(cmd.Context(), chatID)
	if err != nil {
		return fmt.Errorf("fetch system message: %w", err)
	}

	base, pairs := examples.Split(rec.Text)
	pairs, err = edit(pairs)
	if err != nil {
		return err
	}

	if err := store.Save(cmd.Context(), chatID, examples.Compose(base, pairs)); err != nil {
		return fmt.Errorf("save system message (try again): %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d example(s)\n", countKept(pairs))
	return nil
}

// countKept counts pairs that survive composition (non-blank user turn).
func countKept(pairs []examples.Pair) int {
	n := 0
	for _, p := range pairs {
		if strings.TrimSpace(p.User) != "" {
			n++
		}
	}
	return n
}
