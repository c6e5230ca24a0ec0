package branch

import (
	"errors"
	"fmt"

	"github.com/surveyor-agent/surveyor/internal/state"
	"github.com/surveyor-agent/surveyor/pkg/models"
)

// Reconciler keeps the area store's belief about ownership consistent
// with observed branch names. Branch existence is treated as stronger
// evidence than a stale store record: a partitioned agent may have
// pushed its claim branch without the local store ever seeing the
// claim. This favors liveness over strict ordering and never touches
// COMPLETED areas.
type Reconciler struct {
	store    state.AreaStore
	debugLog func(format string, args ...interface{})
}

// NewReconciler creates a Reconciler over the given store.
func NewReconciler(store state.AreaStore) *Reconciler {
	return &Reconciler{
		store:    store,
		debugLog: func(format string, args ...interface{}) {},
	}
}

// SetDebugLog sets the debug logging function.
func (r *Reconciler) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		r.debugLog = fn
	}
}

// Reconcile walks the given branch names (local and remote mixed) and
// updates the store wherever a branch contradicts it:
//
//   - area AVAILABLE but a claim branch exists: the claim was lost or
//     never synchronized; promote to IN_PROGRESS under the branch agent.
//   - area IN_PROGRESS under a different agent: the branch is
//     authoritative for the current owner; reassign.
//   - area COMPLETED: terminal, never regressed.
//
// Unparseable names and branches referencing unknown areas are skipped.
// Individual update conflicts are skipped too: a racing writer means the
// store is already moving, and the next reconcile pass will observe the
// settled state.
func (r *Reconciler) Reconcile(branches []string) error {
	for _, name := range branches {
		areaID, agentID, ok := Parse(name)
		if !ok {
			continue
		}

		area, err := r.store.GetArea(areaID)
		if errors.Is(err, state.ErrNotFound) {
			r.debugLog("[reconcile] branch %s references unknown area %s, skipping", name, areaID)
			continue
		}
		if err != nil {
			return fmt.Errorf("reconcile %s: %w", areaID, err)
		}

		switch area.Status {
		case models.AreaAvailable:
			r.debugLog("[reconcile] %s AVAILABLE but branch %s exists, promoting to IN_PROGRESS/%s", areaID, name, agentID)
			err = r.store.Transition(areaID, models.AreaAvailable, models.AreaInProgress, agentID)
		case models.AreaInProgress:
			if area.AssignedAgent == agentID {
				continue
			}
			r.debugLog("[reconcile] %s owner %s disagrees with branch %s, reassigning to %s", areaID, area.AssignedAgent, name, agentID)
			err = r.store.Transition(areaID, models.AreaInProgress, models.AreaInProgress, agentID)
		case models.AreaCompleted:
			continue
		}

		if errors.Is(err, state.ErrConflict) {
			r.debugLog("[reconcile] %s transition conflict, deferring to next pass", areaID)
			continue
		}
		if err != nil {
			return fmt.Errorf("reconcile %s: %w", areaID, err)
		}
	}
	return nil
}

// AreaBranchStatus is a read-only projection of an area's state combined
// with the most recent matching branch. Used for diagnostics.
type AreaBranchStatus struct {
	AreaID        string            `json:"area_id"`
	BranchExists  bool              `json:"branch_exists"`
	BranchName    string            `json:"branch_name,omitempty"`
	AssignedAgent string            `json:"assigned_agent,omitempty"`
	Status        models.AreaStatus `json:"status"`
}

// StatusAcrossBranches reports where an area stands given the observed
// branch list. The store is consulted when it knows the area; otherwise
// the branch signal alone decides between AVAILABLE and IN_PROGRESS.
// Never mutates anything.
func (r *Reconciler) StatusAcrossBranches(areaID string, branches []string) (*AreaBranchStatus, error) {
	st := &AreaBranchStatus{
		AreaID: areaID,
		Status: models.AreaAvailable,
	}

	// Last match wins: remote listings put the freshest refs last.
	for _, name := range branches {
		branchAreaID, agentID, ok := Parse(name)
		if !ok || branchAreaID != areaID {
			continue
		}
		st.BranchExists = true
		st.BranchName = name
		st.AssignedAgent = agentID
		st.Status = models.AreaInProgress
	}

	area, err := r.store.GetArea(areaID)
	if errors.Is(err, state.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("status across branches %s: %w", areaID, err)
	}

	st.Status = area.Status
	if st.AssignedAgent == "" {
		st.AssignedAgent = area.AssignedAgent
	}
	return st, nil
}
