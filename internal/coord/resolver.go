package coord

import (
	"errors"
	"fmt"

	"github.com/surveyor-agent/surveyor/internal/state"
	"github.com/surveyor-agent/surveyor/pkg/models"
)

// UnmetDependencies returns the subset of the area's dependencies whose
// current status is not COMPLETED, in declaration order. An empty result
// means the area is eligible to claim.
//
// Dependency ids that reference no stored area are treated as permanently
// unmet rather than an error: a dangling reference must block the claim,
// never pass it silently.
func UnmetDependencies(area *models.WorkArea, store state.AreaReader) ([]string, error) {
	var unmet []string
	for _, depID := range area.Dependencies {
		dep, err := store.GetArea(depID)
		if errors.Is(err, state.ErrNotFound) {
			unmet = append(unmet, depID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("check dependency %s: %w", depID, err)
		}
		if dep.Status != models.AreaCompleted {
			unmet = append(unmet, depID)
		}
	}
	return unmet, nil
}
