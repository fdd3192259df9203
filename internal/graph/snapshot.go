package graph

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// SnapshotNode is the immutable per-node view carried by a Snapshot.
// Weight fields are filled in by the decay pass at emission time.
type SnapshotNode struct {
	ID            string   `json:"id"`
	Label         string   `json:"label"`
	Type          string   `json:"type"`
	MentionCount  int      `json:"mention_count"`
	FirstSeenMS   int64    `json:"first_seen_ms"`
	LastSeenMS    int64    `json:"last_seen_ms"`
	Sources       []string `json:"sources"`
	DisplayWeight float64  `json:"display_weight"`
	SourceBonus   float64  `json:"source_bonus"`
	DecayFactor   float64  `json:"decay_factor"`
	AgeMS         int64    `json:"age_ms"`
}

// SnapshotEdge is the immutable per-edge view carried by a Snapshot.
// Endpoints are canonically ordered (lexicographic on id).
type SnapshotEdge struct {
	SourceID          string  `json:"source_id"`
	TargetID          string  `json:"target_id"`
	CoOccurrenceCount int     `json:"co_occurrence_count"`
	LastSeenMS        int64   `json:"last_seen_ms"`
	DisplayWeight     float64 `json:"display_weight"`
	DecayFactor       float64 `json:"decay_factor"`
}

// Snapshot is a deep-copied, read-only view of the graph. Consumers may
// traverse it concurrently without synchronization.
type Snapshot struct {
	Generation   uint64         `json:"generation"`
	ProducedAtMS int64          `json:"produced_at_ms"`
	Nodes        []SnapshotNode `json:"nodes"`
	Edges        []SnapshotEdge `json:"edges"`
}

// Snapshot produces a deep copy of the store with nodes and edges in
// sorted id order and source sets materialized as ordered sequences.
// Generation and weights are assigned by the emitter.
func (s *Store) Snapshot() *Snapshot {
	snap := &Snapshot{
		Nodes: make([]SnapshotNode, 0, len(s.nodes)),
		Edges: make([]SnapshotEdge, 0, len(s.edges)),
	}
	for _, n := range s.nodes {
		sources := make([]string, 0, len(n.Sources))
		for src := range n.Sources {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		snap.Nodes = append(snap.Nodes, SnapshotNode{
			ID:           n.ID,
			Label:        n.Label,
			Type:         n.Type,
			MentionCount: n.Mentions,
			FirstSeenMS:  n.FirstSeen.UnixMilli(),
			LastSeenMS:   n.LastSeen.UnixMilli(),
			Sources:      sources,
		})
	}
	sort.Slice(snap.Nodes, func(i, j int) bool { return snap.Nodes[i].ID < snap.Nodes[j].ID })

	for _, e := range s.edges {
		snap.Edges = append(snap.Edges, SnapshotEdge{
			SourceID:          e.A,
			TargetID:          e.B,
			CoOccurrenceCount: e.Count,
			LastSeenMS:        e.LastSeen.UnixMilli(),
		})
	}
	sort.Slice(snap.Edges, func(i, j int) bool {
		if snap.Edges[i].SourceID != snap.Edges[j].SourceID {
			return snap.Edges[i].SourceID < snap.Edges[j].SourceID
		}
		return snap.Edges[i].TargetID < snap.Edges[j].TargetID
	})
	return snap
}

// Validate re-checks the snapshot invariants before publication. A
// failure here is a defect, not a runtime condition.
func (snap *Snapshot) Validate() error {
	ids := make(map[string]bool, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if n.MentionCount < 1 {
			return fmt.Errorf("node %s: mention count %d", n.ID, n.MentionCount)
		}
		if n.FirstSeenMS > n.LastSeenMS {
			return fmt.Errorf("node %s: first seen after last seen", n.ID)
		}
		if len(n.Sources) == 0 {
			return fmt.Errorf("node %s: empty source set", n.ID)
		}
		if n.DisplayWeight < 0 {
			return fmt.Errorf("node %s: negative display weight", n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range snap.Edges {
		if e.SourceID >= e.TargetID {
			return fmt.Errorf("edge %s|%s: endpoints not canonical", e.SourceID, e.TargetID)
		}
		if !ids[e.SourceID] || !ids[e.TargetID] {
			return fmt.Errorf("edge %s|%s: dangling endpoint", e.SourceID, e.TargetID)
		}
		if e.DisplayWeight < 0 {
			return fmt.Errorf("edge %s|%s: negative display weight", e.SourceID, e.TargetID)
		}
	}
	return nil
}

// Node returns the snapshot node with the given id, or nil.
func (snap *Snapshot) Node(id string) *SnapshotNode {
	i := sort.Search(len(snap.Nodes), func(i int) bool { return snap.Nodes[i].ID >= id })
	if i < len(snap.Nodes) && snap.Nodes[i].ID == id {
		return &snap.Nodes[i]
	}
	return nil
}

// ProducedAt returns the production stamp as a time.Time.
func (snap *Snapshot) ProducedAt() time.Time {
	return time.UnixMilli(snap.ProducedAtMS)
}

// KeyNodes ranks the snapshot's nodes by mentions × √(degree+1) and
// returns the top n.
func (snap *Snapshot) KeyNodes(n int) []KeyNode {
	degrees := make(map[string]int, len(snap.Nodes))
	for i := range snap.Edges {
		degrees[snap.Edges[i].SourceID]++
		degrees[snap.Edges[i].TargetID]++
	}
	out := make([]KeyNode, 0, len(snap.Nodes))
	for i := range snap.Nodes {
		node := &snap.Nodes[i]
		out = append(out, KeyNode{
			ID:    node.ID,
			Label: node.Label,
			Type:  node.Type,
			Score: float64(node.MentionCount) * math.Sqrt(float64(degrees[node.ID]+1)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
