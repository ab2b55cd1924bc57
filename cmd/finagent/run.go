package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finagent-ai/finagent/pkg/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run \"query\"",
	Short: "Start a research run for a query",
	Long: `Starts a research run. Simple lookups answer immediately; complex queries
go through the full pipeline. With --interactive the run suspends before
publishing and waits for "finagent resume" with an approval decision.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interactive, _ := cmd.Flags().GetBool("interactive")

		engine, cleanup, err := newEngine(cmd, interactive)
		if err != nil {
			return err
		}
		defer cleanup()

		query := strings.Join(args, " ")
		run, err := engine.Start(cmd.Context(), pipeline.InitialState(query))
		if err != nil {
			return fmt.Errorf("start run: %w", err)
		}

		printRun(run)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("interactive", "i", false, "Suspend for approval before publishing the report")
}
