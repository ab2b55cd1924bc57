package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finagent-ai/finagent/pkg/pipeline"
	"github.com/finagent-ai/finagent/pkg/stategraph"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <run-id>",
	Short: "Approve or reject a suspended run",
	Long: `Resolves a run suspended at the approval gate. --approve resumes the run
and publishes the report; --reject discards the run without publishing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		approve, _ := cmd.Flags().GetBool("approve")
		reject, _ := cmd.Flags().GetBool("reject")
		if approve == reject {
			return errors.New("pass exactly one of --approve or --reject")
		}

		// The interactive flag only shapes new graphs; resuming reloads the
		// run from the store, and the graph must carry the interrupt point.
		engine, cleanup, err := newEngine(cmd, true)
		if err != nil {
			return err
		}
		defer cleanup()

		runID := args[0]
		if reject {
			if err := engine.Cancel(cmd.Context(), runID); err != nil {
				return fmt.Errorf("reject run: %w", err)
			}
			fmt.Printf("Run %s rejected; the report was not published.\n", runID)
			return nil
		}

		run, err := engine.Resume(cmd.Context(), runID,
			stategraph.State{pipeline.FieldHumanApproved: true})
		if err != nil {
			return fmt.Errorf("resume run: %w", err)
		}

		printRun(run)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)

	resumeCmd.Flags().Bool("approve", false, "Approve the draft and publish the report")
	resumeCmd.Flags().Bool("reject", false, "Reject the draft and cancel the run")
}
