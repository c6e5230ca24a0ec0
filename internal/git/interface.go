// Package git provides an interface for git operations.
package git

// BranchOperations defines the interface for git branch operations.
type BranchOperations interface {
	// CurrentBranch returns the name of the current branch.
	CurrentBranch() (string, error)
	// CreateBranch creates a new branch with the given name.
	CreateBranch(name string) error
	// CreateAndCheckoutBranch creates and switches to a new branch (git checkout -b).
	CreateAndCheckoutBranch(name string) error
	// CheckoutBranch switches to the specified branch.
	CheckoutBranch(name string) error
	// BranchExists returns true if the branch exists locally.
	BranchExists(name string) (bool, error)
	// DeleteBranch deletes the specified branch (force delete).
	DeleteBranch(name string) error
}

// ListOperations defines the interface for enumerating branches.
// Listings are the availability signal the reconciler works from.
type ListOperations interface {
	// ListLocalBranches returns all local branch names, without the
	// current-branch marker.
	ListLocalBranches() ([]string, error)
	// ListRemoteBranches returns all remote-tracking branch names
	// (e.g. origin/feature/FEAT-001-agent-a).
	ListRemoteBranches() ([]string, error)
}

// MergeOperations defines the interface for git merge operations.
type MergeOperations interface {
	// Merge merges the specified branch into the current branch.
	Merge(branch string) error
	// MergeAbort aborts an in-progress merge.
	MergeAbort() error
	// HasConflicts returns true if there are merge conflicts.
	HasConflicts() (bool, error)
}

// RemoteOperations defines the interface for git remote operations.
type RemoteOperations interface {
	// Pull pulls the current branch from its remote.
	// Returns nil if no remote is configured.
	Pull() error
	// Push pushes a branch to the remote, setting upstream.
	// Returns nil if no remote is configured.
	Push(branch string) error
}

// Runner defines the complete interface for git operations.
// This interface embeds all focused interfaces for full functionality.
// Consumers should prefer using focused interfaces when possible.
type Runner interface {
	BranchOperations
	ListOperations
	MergeOperations
	RemoteOperations
	// Run executes an arbitrary git command with the given arguments.
	// Returns the command output and an error if the command fails.
	Run(args ...string) (string, error)
}
