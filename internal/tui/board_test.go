package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/surveyor-agent/surveyor/internal/branch"
	"github.com/surveyor-agent/surveyor/internal/orchestrator"
	"github.com/surveyor-agent/surveyor/pkg/models"
)

func sampleRows() []orchestrator.BoardRow {
	return []orchestrator.BoardRow{
		{
			Area: models.WorkArea{
				ID:          "FEAT-001",
				Description: "User authentication",
				Priority:    models.PriorityHigh,
				Status:      models.AreaInProgress,
				AssignedAgent: "agent-a",
			},
			Branch: branch.AreaBranchStatus{
				AreaID:        "FEAT-001",
				BranchExists:  true,
				BranchName:    "feature/FEAT-001-agent-a",
				AssignedAgent: "agent-a",
				Status:        models.AreaInProgress,
			},
		},
		{
			Area: models.WorkArea{
				ID:          "FEAT-002",
				Description: "Session storage",
				Priority:    models.PriorityMedium,
				Status:      models.AreaAvailable,
			},
			Branch: branch.AreaBranchStatus{
				AreaID: "FEAT-002",
				Status: models.AreaAvailable,
			},
		},
	}
}

func TestBoardShowsLoadingUntilFetched(t *testing.T) {
	b := NewBoard(func() ([]orchestrator.BoardRow, error) { return nil, nil }, nil)

	if !strings.Contains(b.View(), "Loading") {
		t.Errorf("initial view = %q, want loading indicator", b.View())
	}
}

func TestBoardRendersRows(t *testing.T) {
	b := NewBoard(func() ([]orchestrator.BoardRow, error) { return sampleRows(), nil }, nil)

	model, _ := b.Update(rowsLoadedMsg{rows: sampleRows()})
	view := model.View()

	for _, want := range []string{"FEAT-001", "feature/FEAT-001-agent-a", "FEAT-002", "Session storage"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBoardRendersEmptyState(t *testing.T) {
	b := NewBoard(func() ([]orchestrator.BoardRow, error) { return nil, nil }, nil)

	model, _ := b.Update(rowsLoadedMsg{})
	if !strings.Contains(model.View(), "No work areas") {
		t.Errorf("view = %q, want empty state message", model.View())
	}
}

func TestBoardRendersLoadError(t *testing.T) {
	b := NewBoard(func() ([]orchestrator.BoardRow, error) { return nil, nil }, nil)

	model, _ := b.Update(loadErrMsg{err: errors.New("db locked")})
	if !strings.Contains(model.View(), "db locked") {
		t.Errorf("view = %q, want error message", model.View())
	}
}

func TestBoardLoadCommandFetches(t *testing.T) {
	fetched := false
	b := NewBoard(func() ([]orchestrator.BoardRow, error) {
		fetched = true
		return sampleRows(), nil
	}, nil)

	msg := b.load()()
	if !fetched {
		t.Fatal("load command did not invoke the fetcher")
	}
	loaded, ok := msg.(rowsLoadedMsg)
	if !ok {
		t.Fatalf("load returned %T, want rowsLoadedMsg", msg)
	}
	if len(loaded.rows) != 2 {
		t.Errorf("loaded %d rows, want 2", len(loaded.rows))
	}
}

func TestBoardQuitKey(t *testing.T) {
	b := NewBoard(func() ([]orchestrator.BoardRow, error) { return nil, nil }, nil)

	model, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if view := model.View(); view != "" {
		t.Errorf("view after quit = %q, want empty", view)
	}
}

func TestBoardFileChangeTriggersReload(t *testing.T) {
	b := NewBoard(func() ([]orchestrator.BoardRow, error) { return sampleRows(), nil }, nil)

	_, cmd := b.Update(fileChangedMsg{})
	if cmd == nil {
		t.Fatal("expected a reload command after a file change")
	}
}
