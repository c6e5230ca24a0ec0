// Package state provides SQLite-based persistence for Surveyor.
package state

import (
	"io"

	"github.com/surveyor-agent/surveyor/pkg/models"
)

// AreaReader handles read-only area queries.
type AreaReader interface {
	GetArea(id string) (*models.WorkArea, error)
	ListAvailable(filter AreaFilter) ([]models.WorkArea, error)
	ListActive() ([]models.WorkArea, error)
	ListAll() ([]models.WorkArea, error)
	MaxSequence(category string) (int, error)
}

// AreaWriter handles area mutations.
type AreaWriter interface {
	InsertArea(a *models.WorkArea) error
	Transition(id string, expectedStatus, newStatus models.AreaStatus, agentID string) error
}

// AreaStore is the authoritative table of work areas. The coordinator
// layers work against this interface so any backend with atomic
// per-record transitions qualifies.
type AreaStore interface {
	AreaReader
	AreaWriter
}

// Migrator handles database schema migrations.
type Migrator interface {
	Migrate() error
}

// Store defines the full persistence interface.
type Store interface {
	io.Closer
	Migrator
	AreaStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store      = (*DB)(nil)
	_ AreaStore  = (*DB)(nil)
	_ AreaReader = (*DB)(nil)
	_ AreaWriter = (*DB)(nil)
	_ Migrator   = (*DB)(nil)
)
