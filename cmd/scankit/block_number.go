package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var blockNumberCmd = &cobra.Command{
	Use:   "block-number",
	Short: "Print the current chain head from the configured height source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		head, err := s.client.Generators.CurrentBlock(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get block number: %w", err)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), head)
		return err
	},
}
