// Package plan asks an LLM to propose work areas for a goal and
// registers them through the coordinator.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/surveyor-agent/surveyor/internal/coord"
	"github.com/surveyor-agent/surveyor/internal/llm"
	"github.com/surveyor-agent/surveyor/pkg/models"
)

const systemPrompt = "You are a planning assistant for a multi-agent development team. You split goals into well-bounded work areas."

// proposedArea is the JSON structure returned by the model for a single area.
type proposedArea struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Priority     string   `json:"priority"`
	Dependencies []string `json:"dependencies"`
}

// Planner turns a goal into registered work areas.
type Planner struct {
	generator   llm.Generator
	coordinator *coord.Coordinator
}

// New creates a Planner.
func New(generator llm.Generator, coordinator *coord.Coordinator) *Planner {
	return &Planner{generator: generator, coordinator: coordinator}
}

// Plan proposes areas for the goal and inserts them in dependency
// order. Returns the ids of the created areas.
func (p *Planner) Plan(ctx context.Context, goal string, existing []models.WorkArea) ([]string, error) {
	prompt := fmt.Sprintf(planningPrompt, goal, summarizeExisting(existing))

	response, err := p.generator.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	proposals, err := parseProposals(response)
	if err != nil {
		return nil, fmt.Errorf("parse plan response: %w", err)
	}

	ordered, err := orderByDependencies(proposals)
	if err != nil {
		return nil, err
	}

	nameToID := make(map[string]string)
	ids := make([]string, 0, len(ordered))
	for _, proposal := range ordered {
		deps, err := resolveDependencies(proposal, nameToID)
		if err != nil {
			return nil, err
		}

		id, err := p.coordinator.AddArea(proposal.Category, proposal.Description, parsePriority(proposal.Priority), deps)
		if err != nil {
			return nil, fmt.Errorf("add area %q: %w", proposal.Name, err)
		}
		nameToID[proposal.Name] = id
		ids = append(ids, id)
	}

	return ids, nil
}

// parseProposals extracts the JSON array of proposed areas from a
// model response, tolerating surrounding prose.
func parseProposals(response string) ([]proposedArea, error) {
	jsonStart := strings.Index(response, "[")
	jsonEnd := strings.LastIndex(response, "]")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		preview := response
		if len(preview) > 500 {
			preview = preview[:500] + "... (truncated)"
		}
		return nil, fmt.Errorf("no JSON array found in response (got %d chars): %q", len(response), preview)
	}

	var proposals []proposedArea
	if err := json.Unmarshal([]byte(response[jsonStart:jsonEnd+1]), &proposals); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if len(proposals) == 0 {
		return nil, fmt.Errorf("empty area list returned")
	}

	seen := make(map[string]bool)
	for _, proposal := range proposals {
		if proposal.Name == "" {
			return nil, fmt.Errorf("proposal missing name: %q", proposal.Description)
		}
		if seen[proposal.Name] {
			return nil, fmt.Errorf("duplicate proposal name %q", proposal.Name)
		}
		seen[proposal.Name] = true
		if !models.ValidCategory(proposal.Category) {
			return nil, fmt.Errorf("proposal %q has invalid category %q", proposal.Name, proposal.Category)
		}
	}

	return proposals, nil
}

// orderByDependencies sorts proposals so each appears after the
// proposals it depends on. Detects cycles.
func orderByDependencies(proposals []proposedArea) ([]proposedArea, error) {
	byName := make(map[string]proposedArea, len(proposals))
	for _, proposal := range proposals {
		byName[proposal.Name] = proposal
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(proposals))
	var ordered []proposedArea

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("dependency cycle through %q", name)
		}
		state[name] = visiting

		proposal := byName[name]
		for _, dep := range proposal.Dependencies {
			if _, ok := byName[dep]; ok {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[name] = done
		ordered = append(ordered, proposal)
		return nil
	}

	for _, proposal := range proposals {
		if err := visit(proposal.Name); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// resolveDependencies maps proposal names to their assigned ids,
// passing existing area ids through unchanged.
func resolveDependencies(proposal proposedArea, nameToID map[string]string) ([]string, error) {
	var deps []string
	for _, dep := range proposal.Dependencies {
		if id, ok := nameToID[dep]; ok {
			deps = append(deps, id)
			continue
		}
		if _, _, err := models.SplitAreaID(dep); err == nil {
			deps = append(deps, dep)
			continue
		}
		return nil, fmt.Errorf("proposal %q depends on unknown %q", proposal.Name, dep)
	}
	return deps, nil
}

func parsePriority(s string) models.Priority {
	switch strings.ToUpper(s) {
	case string(models.PriorityHigh):
		return models.PriorityHigh
	case string(models.PriorityLow):
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

func summarizeExisting(areas []models.WorkArea) string {
	if len(areas) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, area := range areas {
		fmt.Fprintf(&b, "- %s [%s, %s]: %s\n", area.ID, area.Status, area.Priority, area.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
