package orchestrator

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/surveyor-agent/surveyor/internal/knowledge"
)

// Lifecycle event names recorded in the knowledge store.
const (
	EventClaimed      = "claimed"
	EventCompleted    = "completed"
	EventInconsistent = "post_merge_inconsistency"
)

// Node and edge types used by the journal.
const (
	nodeTypeArea  = "area"
	nodeTypeEvent = "coordination_event"
	edgeRecords   = "records"
)

// Event is one recorded lifecycle step for a work area.
type Event struct {
	Event      string    `json:"event"`
	AreaID     string    `json:"area_id"`
	AgentID    string    `json:"agent_id"`
	BranchName string    `json:"branch_name,omitempty"`
	At         time.Time `json:"at"`
}

// Journal writes coordination lifecycle events into the knowledge store,
// one event node per step, linked to a stable anchor node per area.
// Recording is best-effort: a failed write is logged, never allowed to
// fail the lifecycle operation it describes.
type Journal struct {
	nodes *knowledge.Store
}

// NewJournal creates a Journal over the knowledge store.
func NewJournal(nodes *knowledge.Store) *Journal {
	return &Journal{nodes: nodes}
}

// Record stores a lifecycle event. Safe to call on a nil Journal.
func (j *Journal) Record(event, areaID, agentID, branchName string) {
	if j == nil {
		return
	}

	ev := Event{
		Event:      event,
		AreaID:     areaID,
		AgentID:    agentID,
		BranchName: branchName,
		At:         time.Now().UTC(),
	}
	content, err := json.Marshal(ev)
	if err != nil {
		log.Printf("journal: encode %s event for %s: %v", event, areaID, err)
		return
	}

	anchorID, err := j.anchor(areaID)
	if err != nil {
		log.Printf("journal: anchor node for %s: %v", areaID, err)
		return
	}

	eventID, err := j.nodes.AddNode(string(content), nodeTypeEvent, map[string]string{
		"event": event,
		"area":  areaID,
		"agent": agentID,
	})
	if err != nil {
		log.Printf("journal: record %s event for %s: %v", event, areaID, err)
		return
	}

	if err := j.nodes.AddEdge(eventID, anchorID, edgeRecords, nil); err != nil {
		log.Printf("journal: link %s event for %s: %v", event, areaID, err)
	}
}

// History returns the recorded events for an area, oldest first.
func (j *Journal) History(areaID string) ([]Event, error) {
	if j == nil {
		return nil, nil
	}

	anchor, err := j.nodes.FindNode(nodeTypeArea, areaID)
	if errors.Is(err, knowledge.ErrNodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	nodes, err := j.nodes.SourcesFor(anchor.ID, edgeRecords)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(nodes))
	for _, n := range nodes {
		var ev Event
		if err := json.Unmarshal([]byte(n.Content), &ev); err != nil {
			// Skip malformed entries rather than losing the rest.
			log.Printf("journal: decode event node %s: %v", n.ID, err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// anchor returns the stable node id for an area, creating it on first use.
func (j *Journal) anchor(areaID string) (string, error) {
	n, err := j.nodes.FindNode(nodeTypeArea, areaID)
	if err == nil {
		return n.ID, nil
	}
	if !errors.Is(err, knowledge.ErrNodeNotFound) {
		return "", err
	}
	return j.nodes.AddNode(areaID, nodeTypeArea, nil)
}
