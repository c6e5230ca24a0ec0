package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/surveyor-agent/surveyor/internal/config"
	"github.com/surveyor-agent/surveyor/internal/git"
	"github.com/surveyor-agent/surveyor/internal/knowledge"
	"github.com/surveyor-agent/surveyor/internal/orchestrator"
	"github.com/surveyor-agent/surveyor/internal/state"
)

var debugEnabled bool

var rootCmd = &cobra.Command{
	Use:   "surveyor",
	Short: "Work-area coordination for distributed agents",
	Long: `Surveyor coordinates multiple autonomous agents working on a shared
codebase. Work is divided into areas with dependencies; agents claim an
area, work on a dedicated feature branch, and merge when done.

Coordination is decentralized: each agent keeps a local area store and
reconciles it against the branches visible in the git repository, so no
central server is required.

Typical flow:
  surveyor init              # set up the area store in this repo
  surveyor add FEAT "..."    # register work areas (or: surveyor plan)
  surveyor claim             # claim the next eligible area
  surveyor complete <branch> # merge finished work and release the area`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "Print debug logging to stderr")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(areasCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(versionCmd)
}

func debugLog(format string, args ...interface{}) {
	if debugEnabled {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// openProject opens the project database in the current directory and
// wires up the orchestrator. Callers must Close the returned database.
func openProject() (*state.DB, *orchestrator.Orchestrator, *config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	dbPath := state.ProjectDBPath(cwd)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, nil, nil, fmt.Errorf("no area store found. Run 'surveyor init' first")
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	orch := orchestrator.New(db, git.NewRunner(cwd), cfg.Git.IntegrationBranch)
	orch.SetJournal(orchestrator.NewJournal(knowledge.NewStore(db)))
	orch.SetDebugLog(debugLog)

	return db, orch, cfg, nil
}
