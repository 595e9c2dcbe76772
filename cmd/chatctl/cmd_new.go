package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNewCmd(opts *cliOptions) *cobra.Command {
	var share bool
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Print a fresh conversation id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := opts.storeClient().NewChatID(cmd.Context())
			if err != nil {
				return fmt.Errorf("new conversation: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			if !share {
				return nil
			}

			link, err := opts.shareLink(id)
			if err != nil {
				return err
			}
			printShare(cmd.OutOrStdout(), link, true)
			return nil
		},
	}
	cmd.Flags().BoolVar(&share, "share", false, "also print the web link and its QR code")
	return cmd
}
