// Package orchestrator composes the local coordinator, the branch
// reconciler, and git side effects into the claim-work/complete-work
// lifecycle used by distributed agents.
package orchestrator

import (
	"errors"
	"fmt"

	"github.com/surveyor-agent/surveyor/internal/branch"
	"github.com/surveyor-agent/surveyor/internal/coord"
	"github.com/surveyor-agent/surveyor/internal/git"
	"github.com/surveyor-agent/surveyor/internal/merge"
	"github.com/surveyor-agent/surveyor/internal/state"
	"github.com/surveyor-agent/surveyor/pkg/models"
)

var (
	// ErrBadBranchName indicates a completion request whose branch name
	// does not match feature/<areaId>-<agentId>.
	ErrBadBranchName = errors.New("branch name does not match feature/<areaId>-<agentId>")
	// ErrPostMergeIncomplete flags the recoverable inconsistency where
	// the merge landed but the area status update failed. Merges are not
	// easily reversible, so this is surfaced for a human or a later
	// reconciliation pass instead of being rolled back.
	ErrPostMergeIncomplete = errors.New("branch merged but area not marked completed")
)

// Orchestrator drives the distributed work lifecycle for one agent
// process. The area store is the local belief; branches on the
// version-control remote are the shared commitment mechanism.
type Orchestrator struct {
	store             state.AreaStore
	coordinator       *coord.Coordinator
	reconciler        *branch.Reconciler
	git               git.Runner
	checkpoints       *merge.Manager
	journal           *Journal
	integrationBranch string
	debugLog          func(format string, args ...interface{})
}

// New creates an Orchestrator over the given store and git runner.
// integrationBranch is where completed work is merged (typically main).
func New(store state.AreaStore, runner git.Runner, integrationBranch string) *Orchestrator {
	return &Orchestrator{
		store:             store,
		coordinator:       coord.New(store),
		reconciler:        branch.NewReconciler(store),
		git:               runner,
		checkpoints:       merge.NewManager(runner),
		integrationBranch: integrationBranch,
		debugLog:          func(format string, args ...interface{}) {},
	}
}

// SetJournal attaches an audit journal. Without one, lifecycle events
// are simply not recorded.
func (o *Orchestrator) SetJournal(j *Journal) {
	o.journal = j
}

// SetDebugLog sets the debug logging function, propagating it to the
// composed coordinator and reconciler.
func (o *Orchestrator) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		o.debugLog = fn
		o.coordinator.SetDebugLog(fn)
		o.reconciler.SetDebugLog(fn)
	}
}

// Coordinator exposes the local coordinator for direct claim/complete/add
// operations that bypass git side effects.
func (o *Orchestrator) Coordinator() *coord.Coordinator {
	return o.coordinator
}

// listBranches returns every observable branch name, local and remote.
// Listing failures degrade to whatever could be observed: reconciliation
// is best-effort by design and must not abort the caller's operation.
func (o *Orchestrator) listBranches() []string {
	var branches []string

	local, err := o.git.ListLocalBranches()
	if err != nil {
		o.debugLog("[orchestrator] list local branches: %v", err)
	} else {
		branches = append(branches, local...)
	}

	remote, err := o.git.ListRemoteBranches()
	if err != nil {
		o.debugLog("[orchestrator] list remote branches: %v", err)
	} else {
		branches = append(branches, remote...)
	}

	return branches
}

// Sync reconciles the area store against the currently observable
// branches.
func (o *Orchestrator) Sync() error {
	return o.reconciler.Reconcile(o.listBranches())
}

// Status reports where an area stands, combining store state with the
// observable branches.
func (o *Orchestrator) Status(areaID string) (*branch.AreaBranchStatus, error) {
	return o.reconciler.StatusAcrossBranches(areaID, o.listBranches())
}

// BoardRow pairs an area with its branch overlay for display.
type BoardRow struct {
	Area   models.WorkArea
	Branch branch.AreaBranchStatus
}

// Board reports every known area combined with the observable branch
// evidence, in id order.
func (o *Orchestrator) Board() ([]BoardRow, error) {
	areas, err := o.store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}

	branches := o.listBranches()
	rows := make([]BoardRow, 0, len(areas))
	for _, area := range areas {
		status, err := o.reconciler.StatusAcrossBranches(area.ID, branches)
		if err != nil {
			return nil, err
		}
		rows = append(rows, BoardRow{Area: area, Branch: *status})
	}
	return rows, nil
}

// StartWork finds the next eligible area for the agent, advertises the
// claim by creating (and pushing) the work branch, and records the claim
// in the store. Returns the branch name, or "" when no eligible work
// exists or another agent's branch already covers the chosen area.
//
// A claim failure after branch creation triggers the compensating
// rollback: switch back to the prior branch and delete the orphan.
func (o *Orchestrator) StartWork(agentID string, capabilities []string, priority models.Priority) (string, error) {
	// Best-effort: stale beliefs are corrected where possible, but a
	// failing remote must not prevent claiming local work.
	branches := o.listBranches()
	if err := o.reconciler.Reconcile(branches); err != nil {
		o.debugLog("[orchestrator] reconcile before claim: %v", err)
	}

	area, err := o.coordinator.NextEligibleArea(capabilities, priority)
	if err != nil {
		return "", err
	}
	if area == nil {
		o.debugLog("[orchestrator] no eligible %s area for %s", priority, agentID)
		return "", nil
	}

	name := branch.Name(area.ID, agentID)
	if o.branchExists(name, branches) {
		o.debugLog("[orchestrator] branch %s already exists, not claiming", name)
		return "", nil
	}

	prior, err := o.git.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("determine current branch: %w", err)
	}

	if err := o.git.CreateAndCheckoutBranch(name); err != nil {
		return "", fmt.Errorf("create work branch %s: %w", name, err)
	}

	if err := o.coordinator.Claim(area.ID, agentID); err != nil {
		// The branch must not outlive the failed claim.
		if coErr := o.git.CheckoutBranch(prior); coErr != nil {
			o.debugLog("[orchestrator] rollback checkout %s: %v", prior, coErr)
		}
		if delErr := o.git.DeleteBranch(name); delErr != nil {
			o.debugLog("[orchestrator] ORPHAN BRANCH %s: rollback delete failed: %v", name, delErr)
		}
		return "", fmt.Errorf("claim %s: %w", area.ID, err)
	}

	// Advertise the claim. Push failures leave a purely local branch;
	// other agents will see it once connectivity returns.
	if err := o.git.Push(name); err != nil {
		o.debugLog("[orchestrator] push %s: %v", name, err)
	}

	o.journal.Record(EventClaimed, area.ID, agentID, name)
	o.debugLog("[orchestrator] %s claimed %s on %s", agentID, area.ID, name)
	return name, nil
}

// CompleteWork merges the work branch into the integration branch and
// marks the area COMPLETED. Any version-control failure before the store
// update aborts the whole operation without mutating the area. A store
// failure after the merge is flagged as ErrPostMergeIncomplete rather
// than rolled back.
func (o *Orchestrator) CompleteWork(branchName, agentID string) error {
	areaID, _, ok := branch.Parse(branchName)
	if !ok {
		return fmt.Errorf("complete %q: %w", branchName, ErrBadBranchName)
	}

	if err := o.git.CheckoutBranch(o.integrationBranch); err != nil {
		return fmt.Errorf("checkout %s: %w", o.integrationBranch, err)
	}
	if err := o.git.Pull(); err != nil {
		return fmt.Errorf("pull %s: %w", o.integrationBranch, err)
	}
	// Checkpoint the integration branch so a failed merge can be
	// unwound to a clean commit. Checkpointing itself is best-effort.
	_, cpErr := o.checkpoints.Create(areaID, agentID)
	if cpErr != nil {
		o.debugLog("[orchestrator] checkpoint %s: %v", areaID, cpErr)
	}

	if err := o.git.Merge(branchName); err != nil {
		if cpErr == nil {
			if rbErr := o.checkpoints.Rollback(areaID); rbErr != nil {
				o.debugLog("[orchestrator] rollback %s after failed merge: %v", areaID, rbErr)
			}
		}
		return fmt.Errorf("merge %s: %w", branchName, err)
	}

	if cpErr == nil {
		if err := o.checkpoints.Resolve(areaID); err != nil {
			o.debugLog("[orchestrator] resolve checkpoint %s: %v", areaID, err)
		}
	}

	if err := o.coordinator.Complete(areaID, agentID); err != nil {
		o.journal.Record(EventInconsistent, areaID, agentID, branchName)
		return fmt.Errorf("%w: %s: %v", ErrPostMergeIncomplete, areaID, err)
	}

	// The branch has served its purpose. A failed delete is an orphan
	// to flag, not a failed completion.
	if err := o.git.DeleteBranch(branchName); err != nil {
		o.debugLog("[orchestrator] ORPHAN BRANCH %s: delete after merge failed: %v", branchName, err)
	}

	o.journal.Record(EventCompleted, areaID, agentID, branchName)
	o.debugLog("[orchestrator] %s completed %s via %s", agentID, areaID, branchName)
	return nil
}

// branchExists checks the duplicate-branch guard: the exact name already
// known locally, or any observed branch (local or remote) parsing to the
// same name.
func (o *Orchestrator) branchExists(name string, observed []string) bool {
	exists, err := o.git.BranchExists(name)
	if err != nil {
		o.debugLog("[orchestrator] branch exists check %s: %v", name, err)
	}
	if exists {
		return true
	}

	wantArea, wantAgent, _ := branch.Parse(name)
	for _, b := range observed {
		areaID, agentID, ok := branch.Parse(b)
		if ok && areaID == wantArea && agentID == wantAgent {
			return true
		}
	}
	return false
}
