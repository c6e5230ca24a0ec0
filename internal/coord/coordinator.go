// Package coord implements the local work-area coordinator: claim,
// complete, and add operations against the area store, enforcing the
// AVAILABLE -> IN_PROGRESS -> COMPLETED state machine and the
// dependency gate.
package coord

import (
	"errors"
	"fmt"
	"time"

	"github.com/surveyor-agent/surveyor/internal/state"
	"github.com/surveyor-agent/surveyor/pkg/models"
)

// defaultConflictRetries is how many times a claim re-attempts the
// transition after losing an optimistic-concurrency race, before
// surfacing ErrAlreadyClaimed.
const defaultConflictRetries = 1

// Coordinator exposes claim/complete/add operations over an AreaStore.
// It is safe for concurrent use to the extent the underlying store is:
// all mutations go through the store's atomic Transition.
type Coordinator struct {
	store           state.AreaStore
	conflictRetries int
	debugLog        func(format string, args ...interface{})
}

// New creates a Coordinator over the given store.
func New(store state.AreaStore) *Coordinator {
	return &Coordinator{
		store:           store,
		conflictRetries: defaultConflictRetries,
		debugLog:        func(format string, args ...interface{}) {},
	}
}

// SetDebugLog sets the debug logging function.
func (c *Coordinator) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		c.debugLog = fn
	}
}

// NextEligibleArea returns the first AVAILABLE area matching the exact
// priority, whose category is in the agent's capability set, and whose
// dependencies are all COMPLETED. An empty capability set matches every
// category. Candidates are considered in ascending id order, so repeated
// calls with unchanged state return the same area. Returns nil when
// nothing qualifies.
func (c *Coordinator) NextEligibleArea(capabilities []string, priority models.Priority) (*models.WorkArea, error) {
	caps := make(map[string]bool, len(capabilities))
	for _, cap := range capabilities {
		caps[cap] = true
	}

	available, err := c.store.ListAvailable(state.AreaFilter{Priority: priority})
	if err != nil {
		return nil, fmt.Errorf("list available areas: %w", err)
	}

	for i := range available {
		area := &available[i]
		if len(caps) > 0 && !caps[models.Category(area.ID)] {
			continue
		}
		unmet, err := UnmetDependencies(area, c.store)
		if err != nil {
			return nil, err
		}
		if len(unmet) > 0 {
			c.debugLog("[coord] %s skipped: unmet deps %v", area.ID, unmet)
			continue
		}
		return area, nil
	}
	return nil, nil
}

// Claim takes exclusive ownership of an AVAILABLE area for the agent.
// It checks the dependency gate, then performs the optimistic
// AVAILABLE -> IN_PROGRESS transition. A lost race is retried a bounded
// number of times before surfacing ErrAlreadyClaimed.
func (c *Coordinator) Claim(id, agentID string) error {
	for attempt := 0; ; attempt++ {
		area, err := c.store.GetArea(id)
		if err != nil {
			return err
		}

		if area.Status != models.AreaAvailable {
			return fmt.Errorf("claim %s: held by %s: %w", id, area.AssignedAgent, ErrAlreadyClaimed)
		}

		unmet, err := UnmetDependencies(area, c.store)
		if err != nil {
			return err
		}
		if len(unmet) > 0 {
			return &UnmetDependenciesError{AreaID: id, Unmet: unmet}
		}

		err = c.store.Transition(id, models.AreaAvailable, models.AreaInProgress, agentID)
		if err == nil {
			c.debugLog("[coord] %s claimed by %s", id, agentID)
			return nil
		}
		if errors.Is(err, state.ErrConflict) && attempt < c.conflictRetries {
			c.debugLog("[coord] %s claim conflict, retrying (attempt %d)", id, attempt+1)
			continue
		}
		if errors.Is(err, state.ErrConflict) {
			return fmt.Errorf("claim %s: %w", id, ErrAlreadyClaimed)
		}
		return err
	}
}

// Complete marks an IN_PROGRESS area held by the agent as COMPLETED.
// The holding agent stays on the record for audit. Business-rule
// rejections (ErrNotOwner, ErrNotInProgress) are never retried.
func (c *Coordinator) Complete(id, agentID string) error {
	area, err := c.store.GetArea(id)
	if err != nil {
		return err
	}

	if area.Status != models.AreaInProgress {
		return fmt.Errorf("complete %s: status is %s: %w", id, area.Status, ErrNotInProgress)
	}
	if area.AssignedAgent != agentID {
		return fmt.Errorf("complete %s: held by %s, not %s: %w", id, area.AssignedAgent, agentID, ErrNotOwner)
	}

	err = c.store.Transition(id, models.AreaInProgress, models.AreaCompleted, agentID)
	if errors.Is(err, state.ErrConflict) {
		// Status changed under us; the claim is no longer completable.
		return fmt.Errorf("complete %s: %w", id, ErrNotInProgress)
	}
	if err != nil {
		return err
	}
	c.debugLog("[coord] %s completed by %s", id, agentID)
	return nil
}

// AddArea inserts a new AVAILABLE area in the given category. The id
// sequence is max(existing)+1, starting at 1 for a fresh category, so
// ids are never reused even when earlier areas are long completed.
// Every dependency must already exist in the store.
func (c *Coordinator) AddArea(category, description string, priority models.Priority, dependencies []string) (string, error) {
	if !models.ValidCategory(category) {
		return "", fmt.Errorf("add area: %q: %w", category, ErrInvalidCategory)
	}
	if !priority.Valid() {
		return "", fmt.Errorf("add area: %q: %w", priority, ErrInvalidPriority)
	}

	for _, depID := range dependencies {
		if _, err := c.store.GetArea(depID); err != nil {
			if errors.Is(err, state.ErrNotFound) {
				return "", fmt.Errorf("add area: %s: %w", depID, ErrInvalidDependency)
			}
			return "", err
		}
	}

	max, err := c.store.MaxSequence(category)
	if err != nil {
		return "", err
	}
	id := models.AreaID(category, max+1)

	area := &models.WorkArea{
		ID:           id,
		Description:  description,
		Priority:     priority,
		Dependencies: dependencies,
		Status:       models.AreaAvailable,
		LastUpdated:  time.Now(),
	}
	if err := c.store.InsertArea(area); err != nil {
		return "", err
	}
	c.debugLog("[coord] added area %s (%s)", id, priority)
	return id, nil
}
