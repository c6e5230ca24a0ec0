package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/surveyor-agent/surveyor/internal/orchestrator"
)

var completeAgent string

var completeCmd = &cobra.Command{
	Use:   "complete <branch>",
	Short: "Merge a finished work branch and release its area",
	Long: `Merge the given feature branch into the integration branch, mark the
area COMPLETED, and delete the work branch.

The merge happens before the store update. If the merge lands but the
area cannot be marked completed, the inconsistency is reported and left
for a later sync rather than unwinding the merge.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func init() {
	completeCmd.Flags().StringVar(&completeAgent, "agent", "", "Agent id (defaults to configured agent.id)")
}

func runComplete(cmd *cobra.Command, args []string) error {
	db, orch, cfg, err := openProject()
	if err != nil {
		return err
	}
	defer db.Close()

	agentID := completeAgent
	if agentID == "" {
		agentID = cfg.Agent.ID
	}

	if err := orch.CompleteWork(args[0], agentID); err != nil {
		if errors.Is(err, orchestrator.ErrPostMergeIncomplete) {
			color.Yellow("Merged, but the area could not be marked completed: %v", err)
			color.Yellow("Run 'surveyor sync' once the store is reachable again.")
			return nil
		}
		return fmt.Errorf("complete work: %w", err)
	}

	color.Green("Merged %s into %s", args[0], cfg.Git.IntegrationBranch)
	return nil
}
