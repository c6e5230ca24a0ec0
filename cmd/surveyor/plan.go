package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/surveyor-agent/surveyor/internal/llm"
	"github.com/surveyor-agent/surveyor/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan <goal>",
	Short: "Ask the model to propose work areas for a goal",
	Long: `Send the goal to Claude and register the proposed work areas, with
dependencies, in the area store.

Existing areas are included in the prompt so new proposals can depend
on them. Requires ANTHROPIC_API_KEY (or AWS credentials with
anthropic.use_bedrock set).`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	db, orch, cfg, err := openProject()
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
		Limiter:       llm.NewRateLimiter(cfg.RateLimit.MaxRequestsPerMinute, cfg.RateLimit.Cooldown),
	})
	if err != nil {
		return fmt.Errorf("create API client: %w", err)
	}

	existing, err := db.ListAll()
	if err != nil {
		return fmt.Errorf("list existing areas: %w", err)
	}

	fmt.Println("Planning work areas...")
	ids, err := plan.New(client, orch.Coordinator()).Plan(cmd.Context(), args[0], existing)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	color.Green("Created %d work areas:", len(ids))
	for _, id := range ids {
		area, err := db.GetArea(id)
		if err != nil {
			fmt.Printf("  %s\n", id)
			continue
		}
		fmt.Printf("  %-10s [%s] %s\n", area.ID, area.Priority, area.Description)
	}
	return nil
}
