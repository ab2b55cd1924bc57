package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <run-id>",
	Short: "Discard a suspended run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cleanup, err := newEngine(cmd, true)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := engine.Cancel(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("cancel run: %w", err)
		}
		fmt.Printf("Run %s cancelled.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
