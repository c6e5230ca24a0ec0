package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/surveyor-agent/surveyor/internal/knowledge"
	"github.com/surveyor-agent/surveyor/internal/orchestrator"
)

var areasHistory string

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "List all work areas",
	Long: `List every registered work area with status, priority, assignment and
dependencies.

With --history, prints the coordination events recorded for one area
instead.`,
	Args: cobra.NoArgs,
	RunE: runAreas,
}

func init() {
	areasCmd.Flags().StringVar(&areasHistory, "history", "", "Show the event history of one area")
}

func runAreas(cmd *cobra.Command, args []string) error {
	db, _, _, err := openProject()
	if err != nil {
		return err
	}
	defer db.Close()

	if areasHistory != "" {
		journal := orchestrator.NewJournal(knowledge.NewStore(db))
		events, err := journal.History(areasHistory)
		if err != nil {
			return fmt.Errorf("history of %s: %w", areasHistory, err)
		}
		if len(events) == 0 {
			fmt.Printf("No recorded events for %s.\n", areasHistory)
			return nil
		}
		for _, event := range events {
			fmt.Printf("%s  %-10s  agent=%s", event.At.Format("2006-01-02 15:04:05"), event.Event, event.AgentID)
			if event.BranchName != "" {
				fmt.Printf("  branch=%s", event.BranchName)
			}
			fmt.Println()
		}
		return nil
	}

	areas, err := db.ListAll()
	if err != nil {
		return fmt.Errorf("list areas: %w", err)
	}
	if len(areas) == 0 {
		fmt.Println("No work areas.")
		return nil
	}

	for _, area := range areas {
		line := fmt.Sprintf("%-10s %-12s %-6s %s", area.ID, area.Status, area.Priority, area.Description)
		switch area.Status {
		case "IN_PROGRESS":
			color.Green(line)
		case "COMPLETED":
			color.HiBlack(line)
		default:
			fmt.Println(line)
		}
		if area.AssignedAgent != "" {
			fmt.Printf("    agent: %s\n", area.AssignedAgent)
		}
		if len(area.Dependencies) > 0 {
			fmt.Printf("    deps:  %s\n", strings.Join(area.Dependencies, ", "))
		}
	}
	return nil
}
