// Package graph maintains the in-memory co-occurrence graph derived
// from memory documents.
//
// A Store is owned by exactly one goroutine; consumers only ever see
// deep-copied Snapshots.
package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lazypower/mindcity/internal/extract"
)

// Node is one entity in the graph, merged across all documents that
// mention it.
type Node struct {
	ID        string
	Label     string
	Type      string
	Mentions  int
	FirstSeen time.Time
	LastSeen  time.Time
	Sources   map[string]bool
}

// Edge is an undirected co-occurrence link between two nodes. A and B
// are kept in canonical (lexicographic) order.
type Edge struct {
	A        string
	B        string
	Count    int
	LastSeen time.Time
}

// EdgeID returns the order-independent edge identifier for two node ids.
func EdgeID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Store is the mutable co-occurrence graph.
type Store struct {
	nodes map[string]*Node
	edges map[string]*Edge
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// UpsertNode records one mention of the identified entity in the given
// document. The node is created on first sight; afterwards the mention
// count grows and last-seen refreshes. Malformed ids are a programmer
// error and panic.
func (s *Store) UpsertNode(id, label, typ, document string, now time.Time) *Node {
	mustValidID(id)
	n, ok := s.nodes[id]
	if !ok {
		n = &Node{
			ID:        id,
			Label:     label,
			Type:      typ,
			FirstSeen: now,
			Sources:   make(map[string]bool),
		}
		s.nodes[id] = n
	}
	n.Mentions++
	n.LastSeen = now
	if document != "" {
		n.Sources[document] = true
	}
	return n
}

// UpsertEdge records one co-occurrence between two existing nodes. The
// pair is canonicalized, so argument order never matters.
func (s *Store) UpsertEdge(a, b string, now time.Time) *Edge {
	mustValidID(a)
	mustValidID(b)
	if a == b {
		panic("graph: self edge " + a)
	}
	id := EdgeID(a, b)
	e, ok := s.edges[id]
	if !ok {
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		e = &Edge{A: lo, B: hi}
		s.edges[id] = e
	}
	e.Count++
	e.LastSeen = now
	return e
}

// AddDocument folds one extracted document into the graph: every
// occurrence becomes a node mention, and every unordered pair of
// distinct ids within a paragraph becomes a co-occurrence. Edges are
// paragraph-scoped; entities in different paragraphs of the same
// document never link through this path.
func (s *Store) AddDocument(document string, paragraphs []extract.Paragraph, now time.Time) {
	for _, para := range paragraphs {
		ids := make([]string, 0, len(para.Occurrences))
		for _, occ := range para.Occurrences {
			id := occ.ID()
			s.UpsertNode(id, occ.Label, occ.Type, document, now)
			ids = append(ids, id)
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if ids[i] == ids[j] {
					continue
				}
				s.UpsertEdge(ids[i], ids[j], now)
			}
		}
	}
}

// Merge folds other into s additively: mention and co-occurrence counts
// sum, first-seen takes the earlier, last-seen the later, source sets
// union.
func (s *Store) Merge(other *Store) {
	for id, on := range other.nodes {
		n, ok := s.nodes[id]
		if !ok {
			clone := *on
			clone.Sources = make(map[string]bool, len(on.Sources))
			for src := range on.Sources {
				clone.Sources[src] = true
			}
			s.nodes[id] = &clone
			continue
		}
		n.Mentions += on.Mentions
		if on.FirstSeen.Before(n.FirstSeen) {
			n.FirstSeen = on.FirstSeen
		}
		if on.LastSeen.After(n.LastSeen) {
			n.LastSeen = on.LastSeen
		}
		for src := range on.Sources {
			n.Sources[src] = true
		}
	}
	for id, oe := range other.edges {
		e, ok := s.edges[id]
		if !ok {
			clone := *oe
			s.edges[id] = &clone
			continue
		}
		e.Count += oe.Count
		if oe.LastSeen.After(e.LastSeen) {
			e.LastSeen = oe.LastSeen
		}
	}
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

// KeyNode is one entry in the key-node ranking.
type KeyNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

// KeyNodes ranks nodes by mentions × √(degree+1) and returns the top n.
func (s *Store) KeyNodes(n int) []KeyNode {
	degrees := make(map[string]int, len(s.nodes))
	for _, e := range s.edges {
		degrees[e.A]++
		degrees[e.B]++
	}

	out := make([]KeyNode, 0, len(s.nodes))
	for id, node := range s.nodes {
		out = append(out, KeyNode{
			ID:    id,
			Label: node.Label,
			Type:  node.Type,
			Score: float64(node.Mentions) * math.Sqrt(float64(degrees[id]+1)),
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

func mustValidID(id string) {
	typ, rest, ok := strings.Cut(id, ":")
	if !ok || typ == "" || rest == "" {
		panic(fmt.Sprintf("graph: malformed node id %q", id))
	}
}
