package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/surveyor-agent/surveyor/pkg/models"
)

var (
	// ErrNotFound indicates the referenced area id does not exist.
	ErrNotFound = errors.New("area not found")
	// ErrConflict indicates the stored status did not match the expected
	// status at the time of a transition (lost race).
	ErrConflict = errors.New("area status conflict")
	// ErrDuplicateID indicates an insert with an id that already exists.
	ErrDuplicateID = errors.New("duplicate area id")
)

// AreaFilter narrows ListAvailable results. Zero values match everything.
type AreaFilter struct {
	Priority models.Priority
	Category string
}

// InsertArea adds a new work area record.
// Returns ErrDuplicateID if the id is already taken.
func (db *DB) InsertArea(a *models.WorkArea) error {
	deps, err := encodeDeps(a.Dependencies)
	if err != nil {
		return fmt.Errorf("encode dependencies: %w", err)
	}

	var exists int
	row := db.QueryRow("SELECT COUNT(*) FROM areas WHERE id = ?", a.ID)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("check area id: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("insert area %s: %w", a.ID, ErrDuplicateID)
	}

	_, err = db.Exec(`
		INSERT INTO areas (id, description, priority, dependencies, status, assigned_agent, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Description, string(a.Priority), deps, string(a.Status), nullableString(a.AssignedAgent), formatTime(a.LastUpdated))
	if err != nil {
		return fmt.Errorf("insert area %s: %w", a.ID, err)
	}
	return nil
}

// GetArea retrieves an area by id. Returns ErrNotFound if it does not exist.
func (db *DB) GetArea(id string) (*models.WorkArea, error) {
	row := db.QueryRow(`
		SELECT id, description, priority, dependencies, status, assigned_agent, last_updated
		FROM areas WHERE id = ?
	`, id)

	a, err := scanArea(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get area %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get area %s: %w", id, err)
	}
	return a, nil
}

// ListAvailable returns AVAILABLE areas matching the filter,
// ordered by ascending id for deterministic selection.
func (db *DB) ListAvailable(filter AreaFilter) ([]models.WorkArea, error) {
	return db.listByStatus(models.AreaAvailable, filter)
}

// ListActive returns all IN_PROGRESS areas ordered by ascending id.
func (db *DB) ListActive() ([]models.WorkArea, error) {
	return db.listByStatus(models.AreaInProgress, AreaFilter{})
}

// ListAll returns every area ordered by ascending id.
func (db *DB) ListAll() ([]models.WorkArea, error) {
	return db.listByStatus("", AreaFilter{})
}

func (db *DB) listByStatus(status models.AreaStatus, filter AreaFilter) ([]models.WorkArea, error) {
	query := `
		SELECT id, description, priority, dependencies, status, assigned_agent, last_updated
		FROM areas WHERE 1=1`
	var args []any

	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	if filter.Priority != "" {
		query += " AND priority = ?"
		args = append(args, string(filter.Priority))
	}
	if filter.Category != "" {
		query += " AND id LIKE ?"
		args = append(args, filter.Category+"-%")
	}
	query += " ORDER BY id ASC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	var areas []models.WorkArea
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		areas = append(areas, *a)
	}
	return areas, rows.Err()
}

// Transition atomically moves an area from expectedStatus to newStatus,
// recording the assigned agent (empty clears the live assignment view but
// the last holder is retained for audit on completion).
//
// The expected-status predicate in the UPDATE is the optimistic-concurrency
// guard: if another writer changed the status first, zero rows are affected
// and ErrConflict is returned. Callers must re-fetch and retry or fail fast.
func (db *DB) Transition(id string, expectedStatus, newStatus models.AreaStatus, agentID string) error {
	res, err := db.Exec(`
		UPDATE areas
		SET status = ?, assigned_agent = ?, last_updated = ?
		WHERE id = ? AND status = ?
	`, string(newStatus), nullableString(agentID), formatTime(time.Now()), id, string(expectedStatus))
	if err != nil {
		return fmt.Errorf("transition area %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition area %s: rows affected: %w", id, err)
	}
	if n > 0 {
		return nil
	}

	// Distinguish a lost race from a missing area.
	var exists int
	row := db.QueryRow("SELECT COUNT(*) FROM areas WHERE id = ?", id)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("transition area %s: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("transition area %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("transition area %s (%s -> %s): %w", id, expectedStatus, newStatus, ErrConflict)
}

// MaxSequence returns the highest sequence number in use for a category,
// across all statuses. Returns 0 when the category has no areas.
func (db *DB) MaxSequence(category string) (int, error) {
	rows, err := db.Query("SELECT id FROM areas WHERE id LIKE ?", category+"-%")
	if err != nil {
		return 0, fmt.Errorf("max sequence for %s: %w", category, err)
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("max sequence for %s: %w", category, err)
		}
		cat, seq, err := models.SplitAreaID(id)
		if err != nil || cat != category {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArea(row rowScanner) (*models.WorkArea, error) {
	var a models.WorkArea
	var deps, agent sql.NullString
	var updated string

	err := row.Scan(&a.ID, &a.Description, &a.Priority, &deps, &a.Status, &agent, &updated)
	if err != nil {
		return nil, err
	}

	a.Dependencies, err = decodeDeps(deps)
	if err != nil {
		return nil, err
	}
	a.AssignedAgent = agent.String
	a.LastUpdated, _ = parseTime(updated)
	return &a, nil
}

func encodeDeps(deps []string) (string, error) {
	if len(deps) == 0 {
		return "", nil
	}
	b, err := json.Marshal(deps)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeDeps(s sql.NullString) ([]string, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var deps []string
	if err := json.Unmarshal([]byte(s.String), &deps); err != nil {
		return nil, fmt.Errorf("decode dependencies: %w", err)
	}
	return deps, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
