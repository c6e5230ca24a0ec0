package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/surveyor-agent/surveyor/pkg/models"
)

var (
	claimAgent        string
	claimCapabilities []string
	claimPriority     string
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim the next eligible work area",
	Long: `Find the next eligible work area for this agent, create and push its
feature branch, and mark the area as in progress.

Eligibility combines three filters: the area is AVAILABLE, all of its
dependencies are COMPLETED, and its category matches the agent's
capabilities (empty capabilities match everything).

Prints the branch name on success. Exits quietly when no work is
eligible.`,
	Args: cobra.NoArgs,
	RunE: runClaim,
}

func init() {
	claimCmd.Flags().StringVar(&claimAgent, "agent", "", "Agent id (defaults to configured agent.id)")
	claimCmd.Flags().StringSliceVar(&claimCapabilities, "capabilities", nil, "Categories this agent can work on")
	claimCmd.Flags().StringVar(&claimPriority, "priority", "", "Priority to claim at (defaults to configured agent.priority)")
}

func runClaim(cmd *cobra.Command, args []string) error {
	db, orch, cfg, err := openProject()
	if err != nil {
		return err
	}
	defer db.Close()

	agentID := claimAgent
	if agentID == "" {
		agentID = cfg.Agent.ID
	}
	capabilities := claimCapabilities
	if len(capabilities) == 0 {
		capabilities = cfg.Agent.Capabilities
	}
	priority := claimPriority
	if priority == "" {
		priority = cfg.Agent.Priority
	}

	branchName, err := orch.StartWork(agentID, capabilities, models.Priority(strings.ToUpper(priority)))
	if err != nil {
		return fmt.Errorf("claim work: %w", err)
	}
	if branchName == "" {
		fmt.Println("No eligible work areas.")
		return nil
	}

	color.Green("Claimed work on branch %s", branchName)
	return nil
}
