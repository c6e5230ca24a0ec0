package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// AreaStatus represents the current state of a work area.
type AreaStatus string

const (
	// AreaAvailable indicates the area is unclaimed and open for work.
	AreaAvailable AreaStatus = "AVAILABLE"
	// AreaInProgress indicates an agent holds the area.
	AreaInProgress AreaStatus = "IN_PROGRESS"
	// AreaCompleted indicates the work is done. Terminal.
	AreaCompleted AreaStatus = "COMPLETED"
)

// Valid returns true if the status is a known value.
func (s AreaStatus) Valid() bool {
	switch s {
	case AreaAvailable, AreaInProgress, AreaCompleted:
		return true
	default:
		return false
	}
}

// Priority represents the urgency of a work area.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// WorkArea represents a discrete, independently assignable unit of work.
type WorkArea struct {
	// ID is the unique identifier, format <CATEGORY>-<sequence> (e.g. FEAT-003).
	ID string `json:"id"`
	// Description is a free-text summary of the work.
	Description string `json:"description"`
	// Priority is the urgency level for selection.
	Priority Priority `json:"priority"`
	// Dependencies lists area IDs that must be COMPLETED before this
	// area may be claimed.
	Dependencies []string `json:"dependencies,omitempty"`
	// Status is the current state of the area.
	Status AreaStatus `json:"status"`
	// AssignedAgent is the agent holding the area; empty iff AVAILABLE.
	AssignedAgent string `json:"assigned_agent,omitempty"`
	// LastUpdated is the time of the last status transition.
	LastUpdated time.Time `json:"last_updated"`
}

// areaIDPattern matches <CATEGORY>-<sequence> ids such as FEAT-003.
var areaIDPattern = regexp.MustCompile(`^([A-Z][A-Z0-9]*)-(\d+)$`)

// AreaID builds an area id from a category and sequence number.
// Sequence numbers are zero-padded to three digits.
func AreaID(category string, sequence int) string {
	return fmt.Sprintf("%s-%03d", category, sequence)
}

// SplitAreaID splits an area id into its category and sequence parts.
func SplitAreaID(id string) (category string, sequence int, err error) {
	m := areaIDPattern.FindStringSubmatch(id)
	if m == nil {
		return "", 0, fmt.Errorf("invalid area id %q", id)
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("invalid area id %q: %w", id, err)
	}
	return m[1], seq, nil
}

// Category returns the category prefix of an area id, or "" if the id
// is malformed.
func Category(id string) string {
	cat, _, err := SplitAreaID(id)
	if err != nil {
		return ""
	}
	return cat
}

// ValidCategory returns true if the category is a usable capability tag:
// uppercase alphanumeric starting with a letter.
func ValidCategory(category string) bool {
	if category == "" {
		return false
	}
	for i, r := range category {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// String returns a one-line human-readable summary of the area.
func (a *WorkArea) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s/%s]", a.ID, a.Priority, a.Status)
	if a.AssignedAgent != "" {
		fmt.Fprintf(&b, " @%s", a.AssignedAgent)
	}
	if len(a.Dependencies) > 0 {
		fmt.Fprintf(&b, " deps=%s", strings.Join(a.Dependencies, ","))
	}
	return b.String()
}
