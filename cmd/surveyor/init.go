package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/surveyor-agent/surveyor/internal/coord"
	"github.com/surveyor-agent/surveyor/internal/state"
	"github.com/surveyor-agent/surveyor/pkg/models"
)

var (
	initForce bool
	initSeed  string
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize the area store for a project",
	Long: `Initialize a directory for use with Surveyor.

Creates the .surveyor directory and the area store database. With
--seed, registers an initial set of work areas from a YAML file:

  areas:
    - category: FEAT
      description: User authentication
      priority: HIGH
    - category: FEAT
      description: Session storage
      priority: MEDIUM
      dependencies: [FEAT-001]

The directory argument is optional and defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if already set up")
	initCmd.Flags().StringVar(&initSeed, "seed", "", "YAML file of initial work areas")
}

// seedArea is one entry in a --seed file.
type seedArea struct {
	Category     string   `yaml:"category"`
	Description  string   `yaml:"description"`
	Priority     string   `yaml:"priority"`
	Dependencies []string `yaml:"dependencies"`
}

type seedFile struct {
	Areas []seedArea `yaml:"areas"`
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	dbPath := state.ProjectDBPath(absPath)
	if _, err := os.Stat(dbPath); err == nil && !initForce {
		color.Yellow("Already initialized: %s", dbPath)
		color.Yellow("Use --force to reinitialize.")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("creating .surveyor directory: %w", err)
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	color.Green("Initialized area store at %s", dbPath)

	if initSeed != "" {
		ids, err := seedAreas(db, initSeed)
		if err != nil {
			return err
		}
		color.Green("Registered %d work areas:", len(ids))
		for _, id := range ids {
			fmt.Printf("  %s\n", id)
		}
	}

	return nil
}

// seedAreas registers the areas listed in a YAML seed file, in file
// order so later entries may depend on earlier ones.
func seedAreas(db *state.DB, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(seed.Areas) == 0 {
		return nil, fmt.Errorf("seed file %s contains no areas", path)
	}

	coordinator := coord.New(db)
	ids := make([]string, 0, len(seed.Areas))
	for i, area := range seed.Areas {
		priority := models.Priority(area.Priority)
		if area.Priority == "" {
			priority = models.PriorityMedium
		}
		id, err := coordinator.AddArea(area.Category, area.Description, priority, area.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("seed area %d (%s): %w", i+1, area.Category, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
