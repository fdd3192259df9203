// Package decay derives display weights from raw counts, provenance,
// entity type, and elapsed time.
//
// Everything here is pure: no I/O and no clock access beyond the
// caller-supplied now.
package decay

import (
	"math"
	"strings"
	"time"

	"github.com/lazypower/mindcity/internal/graph"
)

// fallbackHalfLife applies when a Params table has no entry at all for
// a type and carries no "default" row.
const fallbackHalfLife = 30 * 24 * time.Hour

// SourceWeight is one path-pattern → multiplier entry. Matching is
// substring containment, in declaration order, first match wins.
type SourceWeight struct {
	Pattern    string
	Multiplier float64
}

// Params drives the decay model: half-lives per entity type and the
// ordered source-weight pattern list.
type Params struct {
	HalfLives     map[string]time.Duration
	SourceWeights []SourceWeight
}

// HalfLife returns the half-life for an entity type, falling back to
// the "default" row.
func (p Params) HalfLife(typ string) time.Duration {
	if h, ok := p.HalfLives[typ]; ok {
		return h
	}
	if h, ok := p.HalfLives["default"]; ok {
		return h
	}
	return fallbackHalfLife
}

// SourceWeight returns the multiplier for a document path. Patterns are
// tried in order; the first containment match wins; unmatched paths
// weigh 1.0.
func (p Params) SourceWeight(path string) float64 {
	for _, sw := range p.SourceWeights {
		if strings.Contains(path, sw.Pattern) {
			return sw.Multiplier
		}
	}
	return 1.0
}

// SourceBonus returns the max source weight across a node's sources,
// or 1.0 for an empty set.
func (p Params) SourceBonus(sources []string) float64 {
	bonus := 1.0
	for _, src := range sources {
		if w := p.SourceWeight(src); w > bonus {
			bonus = w
		}
	}
	return bonus
}

// Freshness is the pure decay factor 2^(−age/H) for something of the
// given type last seen at lastSeen. Age clamps to zero for clocks that
// run ahead.
func (p Params) Freshness(lastSeen, now time.Time, typ string) float64 {
	age := now.Sub(lastSeen)
	if age < 0 {
		age = 0
	}
	h := p.HalfLife(typ)
	return math.Exp2(-float64(age) / float64(h))
}

// NodeWeight computes the display weight for a node:
// mentions × 2^(−age/H(type)) × max source weight.
func (p Params) NodeWeight(n *graph.SnapshotNode, now time.Time) (weight, bonus, factor float64) {
	factor = p.Freshness(time.UnixMilli(n.LastSeenMS), now, n.Type)
	bonus = p.SourceBonus(n.Sources)
	weight = float64(n.MentionCount) * factor * bonus
	return weight, bonus, factor
}

// EdgeWeight computes the display weight for an edge using the default
// half-life and no source bonus.
func (p Params) EdgeWeight(e *graph.SnapshotEdge, now time.Time) (weight, factor float64) {
	factor = p.Freshness(time.UnixMilli(e.LastSeenMS), now, "default")
	weight = float64(e.CoOccurrenceCount) * factor
	return weight, factor
}

// Annotate fills the weight fields of every node and edge in the
// snapshot as of now.
func (p Params) Annotate(snap *graph.Snapshot, now time.Time) {
	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		age := now.Sub(time.UnixMilli(n.LastSeenMS))
		if age < 0 {
			age = 0
		}
		n.AgeMS = age.Milliseconds()
		n.DisplayWeight, n.SourceBonus, n.DecayFactor = p.NodeWeight(n, now)
	}
	for i := range snap.Edges {
		e := &snap.Edges[i]
		e.DisplayWeight, e.DecayFactor = p.EdgeWeight(e, now)
	}
}

// TimeUntil reports how long until a node's display weight falls to
// threshold. Defined only while the node currently exceeds it; the
// second return is false otherwise.
func (p Params) TimeUntil(n *graph.SnapshotNode, now time.Time, threshold float64) (time.Duration, bool) {
	weight, _, _ := p.NodeWeight(n, now)
	if threshold <= 0 || weight <= threshold {
		return 0, false
	}
	h := p.HalfLife(n.Type)
	t := float64(h) * math.Log2(weight/threshold)
	return time.Duration(t), true
}

// Bucket classifies a display weight: strong above 0.7, stable in
// [0.3, 0.7], fading below.
func Bucket(weight float64) string {
	switch {
	case weight > 0.7:
		return "strong"
	case weight >= 0.3:
		return "stable"
	default:
		return "fading"
	}
}
