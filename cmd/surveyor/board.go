package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/surveyor-agent/surveyor/internal/orchestrator"
	"github.com/surveyor-agent/surveyor/internal/state"
	"github.com/surveyor-agent/surveyor/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Live status board of all work areas",
	Long: `Open a terminal board showing every work area alongside the branch
evidence for it. The board refreshes automatically when the area store
or the repository's branches change on disk.

Keys: r refreshes manually, q quits.`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

func runBoard(cmd *cobra.Command, args []string) error {
	db, orch, _, err := openProject()
	if err != nil {
		return err
	}
	defer db.Close()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	// Watch the claim inputs: the store directory and the branch refs.
	// A missing .git is fine, the watcher just covers less.
	watcher, err := tui.NewWatcher(
		filepath.Dir(state.ProjectDBPath(cwd)),
		filepath.Join(cwd, ".git", "refs", "heads"),
	)
	if err != nil {
		debugLog("[board] watcher unavailable: %v", err)
		watcher = nil
	}

	board := tui.NewBoard(func() ([]orchestrator.BoardRow, error) {
		return orch.Board()
	}, watcher)

	program := tea.NewProgram(board, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	return nil
}
