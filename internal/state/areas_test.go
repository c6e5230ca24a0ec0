package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/surveyor-agent/surveyor/pkg/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newArea(id string, priority models.Priority, deps ...string) *models.WorkArea {
	return &models.WorkArea{
		ID:           id,
		Description:  "test area " + id,
		Priority:     priority,
		Dependencies: deps,
		Status:       models.AreaAvailable,
		LastUpdated:  time.Now(),
	}
}

func TestInsertAndGetArea(t *testing.T) {
	db := testDB(t)

	area := newArea("FEAT-001", models.PriorityHigh, "CORE-001")
	if err := db.InsertArea(area); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := db.GetArea("FEAT-001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != area.Description {
		t.Errorf("description = %q, want %q", got.Description, area.Description)
	}
	if got.Priority != models.PriorityHigh {
		t.Errorf("priority = %q, want HIGH", got.Priority)
	}
	if got.Status != models.AreaAvailable {
		t.Errorf("status = %q, want AVAILABLE", got.Status)
	}
	if len(got.Dependencies) != 1 || got.Dependencies[0] != "CORE-001" {
		t.Errorf("dependencies = %v, want [CORE-001]", got.Dependencies)
	}
	if got.AssignedAgent != "" {
		t.Errorf("assigned agent = %q, want empty", got.AssignedAgent)
	}
}

func TestGetAreaNotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetArea("FEAT-999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertDuplicateID(t *testing.T) {
	db := testDB(t)

	if err := db.InsertArea(newArea("FEAT-001", models.PriorityHigh)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := db.InsertArea(newArea("FEAT-001", models.PriorityLow))
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestListAvailableFiltersAndOrder(t *testing.T) {
	db := testDB(t)

	for _, a := range []*models.WorkArea{
		newArea("FEAT-002", models.PriorityHigh),
		newArea("FEAT-001", models.PriorityHigh),
		newArea("FIX-001", models.PriorityHigh),
		newArea("FEAT-003", models.PriorityLow),
	} {
		if err := db.InsertArea(a); err != nil {
			t.Fatalf("insert %s: %v", a.ID, err)
		}
	}

	// Claimed areas must not show up as available.
	if err := db.Transition("FIX-001", models.AreaAvailable, models.AreaInProgress, "agent-x"); err != nil {
		t.Fatalf("transition: %v", err)
	}

	got, err := db.ListAvailable(AreaFilter{Priority: models.PriorityHigh, Category: "FEAT"})
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(got))
	}
	if got[0].ID != "FEAT-001" || got[1].ID != "FEAT-002" {
		t.Errorf("expected [FEAT-001 FEAT-002] in order, got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestListActive(t *testing.T) {
	db := testDB(t)

	if err := db.InsertArea(newArea("FEAT-001", models.PriorityHigh)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.InsertArea(newArea("FEAT-002", models.PriorityHigh)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.Transition("FEAT-002", models.AreaAvailable, models.AreaInProgress, "agent-a"); err != nil {
		t.Fatalf("transition: %v", err)
	}

	active, err := db.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != "FEAT-002" {
		t.Fatalf("expected [FEAT-002], got %v", active)
	}
	if active[0].AssignedAgent != "agent-a" {
		t.Errorf("assigned agent = %q, want agent-a", active[0].AssignedAgent)
	}
}

func TestTransitionUpdatesLastUpdated(t *testing.T) {
	db := testDB(t)

	area := newArea("FEAT-001", models.PriorityHigh)
	area.LastUpdated = time.Now().Add(-time.Hour)
	if err := db.InsertArea(area); err != nil {
		t.Fatalf("insert: %v", err)
	}

	before, _ := db.GetArea("FEAT-001")
	if err := db.Transition("FEAT-001", models.AreaAvailable, models.AreaInProgress, "agent-a"); err != nil {
		t.Fatalf("transition: %v", err)
	}
	after, _ := db.GetArea("FEAT-001")

	if !after.LastUpdated.After(before.LastUpdated) {
		t.Errorf("last_updated not advanced: before=%v after=%v", before.LastUpdated, after.LastUpdated)
	}
}

func TestTransitionConflict(t *testing.T) {
	db := testDB(t)

	if err := db.InsertArea(newArea("FEAT-001", models.PriorityHigh)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// First claim wins.
	if err := db.Transition("FEAT-001", models.AreaAvailable, models.AreaInProgress, "agent-a"); err != nil {
		t.Fatalf("first transition: %v", err)
	}

	// Second claim loses the race: status is no longer AVAILABLE.
	err := db.Transition("FEAT-001", models.AreaAvailable, models.AreaInProgress, "agent-b")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// Loser must not have overwritten the owner.
	got, _ := db.GetArea("FEAT-001")
	if got.AssignedAgent != "agent-a" {
		t.Errorf("assigned agent = %q, want agent-a", got.AssignedAgent)
	}
}

func TestTransitionNotFound(t *testing.T) {
	db := testDB(t)

	err := db.Transition("FEAT-404", models.AreaAvailable, models.AreaInProgress, "agent-a")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMaxSequence(t *testing.T) {
	db := testDB(t)

	if got, err := db.MaxSequence("FEAT"); err != nil || got != 0 {
		t.Errorf("empty category: got %d, %v; want 0, nil", got, err)
	}

	// Gaps don't matter, max does.
	for _, id := range []string{"FEAT-001", "FEAT-003", "FIX-010"} {
		if err := db.InsertArea(newArea(id, models.PriorityMedium)); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	got, err := db.MaxSequence("FEAT")
	if err != nil {
		t.Fatalf("max sequence: %v", err)
	}
	if got != 3 {
		t.Errorf("max sequence = %d, want 3", got)
	}
}
