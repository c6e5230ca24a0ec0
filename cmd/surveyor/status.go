package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/surveyor-agent/surveyor/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status [areaId]",
	Short: "Show work area status, including branch evidence",
	Long: `Display the state of work areas, combining the local store with the
branches currently visible in the repository.

With an area id, shows that area only. Without arguments, shows every
known area.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	db, orch, _, err := openProject()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		status, err := orch.Status(args[0])
		if err != nil {
			return fmt.Errorf("status of %s: %w", args[0], err)
		}
		printAreaStatus(status.AreaID, status.Status, status.AssignedAgent, status.BranchName)
		return nil
	}

	rows, err := orch.Board()
	if err != nil {
		return fmt.Errorf("list areas: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("No work areas. Run 'surveyor add' or 'surveyor plan' to create some.")
		return nil
	}

	for _, row := range rows {
		printAreaStatus(row.Area.ID, row.Branch.Status, row.Branch.AssignedAgent, row.Branch.BranchName)
		fmt.Printf("    %s\n", row.Area.Description)
	}
	return nil
}

func printAreaStatus(id string, status models.AreaStatus, agent, branchName string) {
	line := fmt.Sprintf("%-10s %-12s", id, status)
	switch status {
	case models.AreaInProgress:
		color.Green(line)
	case models.AreaCompleted:
		color.HiBlack(line)
	default:
		fmt.Println(line)
	}
	if agent != "" {
		fmt.Printf("    agent:  %s\n", agent)
	}
	if branchName != "" {
		fmt.Printf("    branch: %s\n", branchName)
	}
}
