package merge

import (
	"fmt"
	"strings"
	"testing"
)

// tagRunner fakes just enough of git for checkpoint bookkeeping.
type tagRunner struct {
	head     string
	tags     map[string]string
	resets   []string
	failNext string
}

func newTagRunner() *tagRunner {
	return &tagRunner{head: "abc123", tags: make(map[string]string)}
}

func (r *tagRunner) Run(args ...string) (string, error) {
	cmd := strings.Join(args, " ")
	if r.failNext != "" && strings.HasPrefix(cmd, r.failNext) {
		r.failNext = ""
		return "", fmt.Errorf("git %s failed", cmd)
	}

	switch args[0] {
	case "rev-parse":
		return r.head + "\n", nil
	case "tag":
		if args[1] == "-d" {
			if _, ok := r.tags[args[2]]; !ok {
				return "", fmt.Errorf("tag %s not found", args[2])
			}
			delete(r.tags, args[2])
			return "", nil
		}
		// tag -f <name> <sha>
		r.tags[args[2]] = args[3]
		return "", nil
	case "reset":
		r.resets = append(r.resets, args[2])
		return "", nil
	}
	return "", fmt.Errorf("unexpected git %s", cmd)
}

func (r *tagRunner) CurrentBranch() (string, error)              { return "main", nil }
func (r *tagRunner) CreateBranch(string) error                   { return nil }
func (r *tagRunner) CreateAndCheckoutBranch(string) error        { return nil }
func (r *tagRunner) CheckoutBranch(string) error                 { return nil }
func (r *tagRunner) BranchExists(string) (bool, error)           { return false, nil }
func (r *tagRunner) DeleteBranch(string) error                   { return nil }
func (r *tagRunner) ListLocalBranches() ([]string, error)        { return nil, nil }
func (r *tagRunner) ListRemoteBranches() ([]string, error)       { return nil, nil }
func (r *tagRunner) Merge(string) error                          { return nil }
func (r *tagRunner) MergeAbort() error                           { return nil }
func (r *tagRunner) HasConflicts() (bool, error)                 { return false, nil }
func (r *tagRunner) Pull() error                                 { return nil }
func (r *tagRunner) Push(string) error                           { return nil }

func TestCreateTagsHead(t *testing.T) {
	repo := newTagRunner()
	m := NewManager(repo)

	cp, err := m.Create("FEAT-001", "agent-a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if cp.CommitSHA != "abc123" {
		t.Errorf("sha = %q, want abc123", cp.CommitSHA)
	}
	if cp.TagName != "surveyor-checkpoint-FEAT-001" {
		t.Errorf("tag = %q", cp.TagName)
	}
	if got := repo.tags[cp.TagName]; got != "abc123" {
		t.Errorf("tag points at %q, want abc123", got)
	}
	if cp.Status != CheckpointPending {
		t.Errorf("status = %v, want pending", cp.Status)
	}
}

func TestResolveDropsTag(t *testing.T) {
	repo := newTagRunner()
	m := NewManager(repo)

	cp, err := m.Create("FEAT-001", "agent-a")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Resolve("FEAT-001"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, ok := repo.tags[cp.TagName]; ok {
		t.Error("tag still present after resolve")
	}
	if m.Get("FEAT-001").Status != CheckpointGood {
		t.Errorf("status = %v, want good", m.Get("FEAT-001").Status)
	}
}

func TestRollbackResetsToCheckpoint(t *testing.T) {
	repo := newTagRunner()
	m := NewManager(repo)

	if _, err := m.Create("FEAT-001", "agent-a"); err != nil {
		t.Fatal(err)
	}
	repo.head = "def456" // merge moved HEAD

	if err := m.Rollback("FEAT-001"); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if len(repo.resets) != 1 || repo.resets[0] != "abc123" {
		t.Errorf("resets = %v, want [abc123]", repo.resets)
	}
	if m.Get("FEAT-001").Status != CheckpointRolledBack {
		t.Errorf("status = %v, want rolled back", m.Get("FEAT-001").Status)
	}
}

func TestRollbackUnknownArea(t *testing.T) {
	m := NewManager(newTagRunner())
	if err := m.Rollback("FEAT-404"); err == nil {
		t.Fatal("expected error for unknown area")
	}
}

func TestCreateReplacesEarlierCheckpoint(t *testing.T) {
	repo := newTagRunner()
	m := NewManager(repo)

	if _, err := m.Create("FEAT-001", "agent-a"); err != nil {
		t.Fatal(err)
	}
	repo.head = "def456"
	cp, err := m.Create("FEAT-001", "agent-a")
	if err != nil {
		t.Fatal(err)
	}

	if cp.CommitSHA != "def456" {
		t.Errorf("sha = %q, want def456", cp.CommitSHA)
	}
	if got := repo.tags[cp.TagName]; got != "def456" {
		t.Errorf("tag points at %q, want def456", got)
	}
}
