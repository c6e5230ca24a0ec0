// Package knowledge provides a content-addressable node/edge store used
// as the coordination audit trail. Nodes hold opaque content with a type
// tag and metadata; edges connect them. It shares the Surveyor SQLite
// database and is queried only by opaque identifiers.
package knowledge

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/surveyor-agent/surveyor/internal/state"
)

// ErrNodeNotFound indicates the referenced node id does not exist.
var ErrNodeNotFound = errors.New("knowledge node not found")

// Node is a single knowledge entry.
type Node struct {
	ID          string            `json:"id"`
	Content     string            `json:"content"`
	ContentType string            `json:"content_type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Store persists knowledge nodes and edges.
type Store struct {
	db *state.DB
}

// NewStore creates a Store over an opened (and migrated) database.
func NewStore(db *state.DB) *Store {
	return &Store{db: db}
}

// AddNode inserts a new node and returns its generated id.
func (s *Store) AddNode(content, contentType string, metadata map[string]string) (string, error) {
	id := uuid.NewString()
	meta, err := encodeMetadata(metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(`
		INSERT INTO knowledge_nodes (id, content, content_type, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, content, contentType, meta, now, now)
	if err != nil {
		return "", fmt.Errorf("add knowledge node: %w", err)
	}
	return id, nil
}

// GetNode retrieves a node by id.
func (s *Store) GetNode(id string) (*Node, error) {
	row := s.db.QueryRow(`
		SELECT id, content, content_type, metadata, created_at, updated_at
		FROM knowledge_nodes WHERE id = ?
	`, id)

	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get node %s: %w", id, ErrNodeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	return n, nil
}

// FindNode returns the first node with the given type and content, or
// ErrNodeNotFound. Used for stable anchor nodes (one per work area).
func (s *Store) FindNode(contentType, content string) (*Node, error) {
	row := s.db.QueryRow(`
		SELECT id, content, content_type, metadata, created_at, updated_at
		FROM knowledge_nodes WHERE content_type = ? AND content = ?
		ORDER BY rowid ASC LIMIT 1
	`, contentType, content)

	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, ErrNodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find node: %w", err)
	}
	return n, nil
}

// ListNodesByType returns all nodes of a content type, oldest first.
func (s *Store) ListNodesByType(contentType string) ([]Node, error) {
	rows, err := s.db.Query(`
		SELECT id, content, content_type, metadata, created_at, updated_at
		FROM knowledge_nodes WHERE content_type = ?
		ORDER BY rowid ASC
	`, contentType)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()
	return collectNodes(rows)
}

// AddEdge connects two existing nodes.
func (s *Store) AddEdge(sourceID, targetID, edgeType string, properties map[string]string) error {
	props, err := encodeMetadata(properties)
	if err != nil {
		return fmt.Errorf("encode edge properties: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO knowledge_edges (source_id, target_id, edge_type, properties, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sourceID, targetID, edgeType, props, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add edge %s -> %s: %w", sourceID, targetID, err)
	}
	return nil
}

// SourcesFor returns the nodes that point at the target via the given
// edge type, oldest first.
func (s *Store) SourcesFor(targetID, edgeType string) ([]Node, error) {
	rows, err := s.db.Query(`
		SELECT n.id, n.content, n.content_type, n.metadata, n.created_at, n.updated_at
		FROM knowledge_nodes n
		JOIN knowledge_edges e ON e.source_id = n.id
		WHERE e.target_id = ? AND e.edge_type = ?
		ORDER BY n.rowid ASC
	`, targetID, edgeType)
	if err != nil {
		return nil, fmt.Errorf("sources for %s: %w", targetID, err)
	}
	defer rows.Close()
	return collectNodes(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*Node, error) {
	var n Node
	var meta sql.NullString
	var created, updated string

	err := row.Scan(&n.ID, &n.Content, &n.ContentType, &meta, &created, &updated)
	if err != nil {
		return nil, err
	}

	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &n.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	n.CreatedAt, _ = time.Parse(time.RFC3339, created)
	n.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &n, nil
}

func collectNodes(rows *sql.Rows) ([]Node, error) {
	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, *n)
	}
	return nodes, rows.Err()
}

func encodeMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
