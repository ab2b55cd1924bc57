package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <run-id>",
	Short: "Show a run's status, position, and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cleanup, err := newEngine(cmd, true)
		if err != nil {
			return err
		}
		defer cleanup()

		run, err := engine.Status(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load run: %w", err)
		}

		fmt.Printf("Run:     %s\n", run.ID)
		fmt.Printf("Status:  %s\n", run.Status)
		fmt.Printf("Node:    %s\n", run.Node)
		fmt.Printf("History: %s\n", strings.Join(run.History, " -> "))
		if errs := run.Errors(); len(errs) > 0 {
			fmt.Println("Errors:")
			for _, e := range errs {
				fmt.Println("  -", e)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
