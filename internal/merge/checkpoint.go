// Package merge provides git merge checkpoints for rollback. A
// lightweight tag is created on the integration branch before each
// merge so a failed merge can be unwound to a known-good commit.
package merge

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/surveyor-agent/surveyor/internal/git"
)

// CheckpointStatus represents the status of a checkpoint.
type CheckpointStatus int

const (
	// CheckpointPending indicates the merge has not resolved yet.
	CheckpointPending CheckpointStatus = iota
	// CheckpointGood indicates the merge succeeded at this checkpoint.
	CheckpointGood
	// CheckpointRolledBack indicates the merge failed and was unwound.
	CheckpointRolledBack
)

// Checkpoint marks the integration branch commit before an area merge.
type Checkpoint struct {
	AreaID    string
	AgentID   string
	CommitSHA string
	TagName   string
	CreatedAt time.Time
	Status    CheckpointStatus
}

// Manager creates and resolves merge checkpoints. One checkpoint is
// tracked per area; completing the same area again replaces it.
type Manager struct {
	repo git.Runner

	mu          sync.RWMutex
	checkpoints map[string]*Checkpoint
}

// NewManager creates a checkpoint manager over the given repository.
func NewManager(repo git.Runner) *Manager {
	return &Manager{
		repo:        repo,
		checkpoints: make(map[string]*Checkpoint),
	}
}

// Create tags the current HEAD as the pre-merge checkpoint for an area.
func (m *Manager) Create(areaID, agentID string) (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sha, err := m.repo.Run("rev-parse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("get HEAD sha: %w", err)
	}
	sha = strings.TrimSpace(sha)

	tagName := fmt.Sprintf("surveyor-checkpoint-%s", areaID)

	// -f replaces a leftover tag from an earlier attempt on this area.
	if _, err := m.repo.Run("tag", "-f", tagName, sha); err != nil {
		return nil, fmt.Errorf("create checkpoint tag: %w", err)
	}

	cp := &Checkpoint{
		AreaID:    areaID,
		AgentID:   agentID,
		CommitSHA: sha,
		TagName:   tagName,
		CreatedAt: time.Now(),
		Status:    CheckpointPending,
	}
	m.checkpoints[areaID] = cp
	return cp, nil
}

// Resolve marks the area's merge as successful and drops the tag.
func (m *Manager) Resolve(areaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp, exists := m.checkpoints[areaID]
	if !exists {
		return fmt.Errorf("no checkpoint for area %s", areaID)
	}

	cp.Status = CheckpointGood
	if _, err := m.repo.Run("tag", "-d", cp.TagName); err != nil {
		return fmt.Errorf("delete checkpoint tag %s: %w", cp.TagName, err)
	}
	return nil
}

// Rollback resets the working tree to the checkpoint commit, unwinding
// a failed or conflicted merge, and drops the tag.
func (m *Manager) Rollback(areaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp, exists := m.checkpoints[areaID]
	if !exists {
		return fmt.Errorf("no checkpoint for area %s", areaID)
	}

	if _, err := m.repo.Run("reset", "--hard", cp.CommitSHA); err != nil {
		return fmt.Errorf("reset to checkpoint %s: %w", cp.CommitSHA, err)
	}
	cp.Status = CheckpointRolledBack
	if _, err := m.repo.Run("tag", "-d", cp.TagName); err != nil {
		return fmt.Errorf("delete checkpoint tag %s: %w", cp.TagName, err)
	}
	return nil
}

// Get retrieves the checkpoint recorded for an area, or nil.
func (m *Manager) Get(areaID string) *Checkpoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.checkpoints[areaID]
}
