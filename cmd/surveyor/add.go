package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/surveyor-agent/surveyor/pkg/models"
)

var (
	addPriority string
	addDeps     []string
)

var addCmd = &cobra.Command{
	Use:   "add <category> <description>",
	Short: "Register a new work area",
	Long: `Register a new work area in the given category. The area id is
assigned automatically as <CATEGORY>-<sequence>.

Examples:
  surveyor add FEAT "User authentication"
  surveyor add FIX "Session timeout bug" --priority HIGH
  surveyor add FEAT "Password reset" --deps FEAT-001,FEAT-002`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addPriority, "priority", string(models.PriorityMedium), "Priority: HIGH, MEDIUM or LOW")
	addCmd.Flags().StringSliceVar(&addDeps, "deps", nil, "Area ids this work depends on")
}

func runAdd(cmd *cobra.Command, args []string) error {
	db, orch, _, err := openProject()
	if err != nil {
		return err
	}
	defer db.Close()

	category := strings.ToUpper(args[0])
	priority := models.Priority(strings.ToUpper(addPriority))

	id, err := orch.Coordinator().AddArea(category, args[1], priority, addDeps)
	if err != nil {
		return fmt.Errorf("add area: %w", err)
	}

	color.Green("Created %s", id)
	if len(addDeps) > 0 {
		fmt.Printf("  depends on %s\n", strings.Join(addDeps, ", "))
	}
	return nil
}
