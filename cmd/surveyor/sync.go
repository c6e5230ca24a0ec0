package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the area store against visible branches",
	Long: `Scan the local and remote branches of this repository and update the
area store to match the claims they advertise.

Branch evidence wins over a stale AVAILABLE status, and the branch
owner wins an IN_PROGRESS assignment disagreement. COMPLETED areas are
never touched.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	db, orch, _, err := openProject()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := orch.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	color.Green("Area store reconciled against visible branches.")
	return nil
}
