// Package layout projects a graph snapshot into a deterministic city
// layout: buildings, districts, and a pruned connection set.
package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/lazypower/mindcity/internal/decay"
	"github.com/lazypower/mindcity/internal/graph"
)

// Algorithm tags the layout frames we produce.
const Algorithm = "brain-optimized-v2"

// Config drives a projection run. Projection is pure: identical
// snapshot and config produce a bit-identical frame.
type Config struct {
	Districts      []District
	Iterations     int
	Bounds         float64
	MaxConnections int
	Decay          decay.Params
	// Recent holds the three most-recently-modified documents, used by
	// the active-district heuristic.
	Recent []RecentDoc
}

// RecentDoc is one recently modified document's path and content.
type RecentDoc struct {
	Path    string
	Content string
}

// DefaultConfig returns a Config with the stock districts and tuning.
func DefaultConfig() Config {
	return Config{
		Districts:      DefaultDistricts(),
		Iterations:     150,
		Bounds:         80,
		MaxConnections: 150,
	}
}

// Building is one placed node in the city.
type Building struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Label        string   `json:"label"`
	District     string   `json:"district"`
	X            float64  `json:"x"`
	Z            float64  `json:"z"`
	Height       float64  `json:"height"`
	Width        float64  `json:"width"`
	Depth        float64  `json:"depth"`
	Importance   float64  `json:"importance"`
	Frequency    int      `json:"frequency"`
	RecencyScore float64  `json:"recency_score"`
	SourceScore  float64  `json:"source_score"`
	Sources      []string `json:"sources"`
}

// Connection is one surviving co-occurrence link.
type Connection struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Strength float64 `json:"strength"`
	Count    int     `json:"count"`
	Type     string  `json:"type"`
}

// Point is a 2-D position.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// DistrictBound describes one district's footprint after layout.
type DistrictBound struct {
	Center      Point   `json:"center"`
	Radius      float64 `json:"radius"`
	EntityCount int     `json:"entity_count"`
	Color       string  `json:"color"`
}

// Frame is the full layout result published on demand.
type Frame struct {
	Algorithm        string                   `json:"algorithm"`
	DistrictBounds   map[string]DistrictBound `json:"district_bounds"`
	Buildings        []Building               `json:"buildings"`
	Connections      []Connection             `json:"connections"`
	ActiveDistrict   string                   `json:"active_district"`
	DistrictActivity map[string]float64       `json:"district_activity"`
}

// Project lays out a decay-annotated snapshot. The snapshot's node
// order (sorted by id) fixes simulation order, and all jitter derives
// from node-id hashes, so the result is deterministic.
func Project(snap *graph.Snapshot, cfg Config) *Frame {
	districts := cfg.Districts
	if len(districts) == 0 {
		districts = DefaultDistricts()
	}

	n := len(snap.Nodes)
	bodies := make([]body, n)
	index := make(map[string]int, n)

	// District assignment and raw importance.
	maxImportance := 0.0
	raw := make([]float64, n)
	for i := range snap.Nodes {
		node := &snap.Nodes[i]
		index[node.ID] = i
		di := assignDistrict(districts, node.Label)
		bodies[i].dist = di
		raw[i] = float64(node.MentionCount) * (0.5 + node.DecayFactor) *
			node.SourceBonus * districts[di].Importance
		if raw[i] > maxImportance {
			maxImportance = raw[i]
		}
	}

	// Normalized importance, mass, initial placement.
	for i := range snap.Nodes {
		imp := 0.0
		if maxImportance > 0 {
			imp = raw[i] / maxImportance
		}
		bodies[i].imp = imp
		bodies[i].mass = 1 + 2*imp
		place(&bodies[i], snap.Nodes[i].ID, districts[bodies[i].dist])
	}

	// Springs from co-occurrence edges (snapshot edge order is already
	// canonical).
	springs := make([]spring, 0, len(snap.Edges))
	for i := range snap.Edges {
		e := &snap.Edges[i]
		a, okA := index[e.SourceID]
		b, okB := index[e.TargetID]
		if !okA || !okB {
			continue
		}
		springs = append(springs, spring{a: a, b: b, count: e.CoOccurrenceCount})
	}

	simulate(bodies, springs, districts, cfg.Iterations, cfg.Bounds)

	topSource := topWeightedSource(snap, cfg.Decay)

	buildings := make([]Building, n)
	for i := range snap.Nodes {
		node := &snap.Nodes[i]
		b := &bodies[i]
		buildings[i] = Building{
			ID:           node.ID,
			Type:         node.Type,
			Label:        node.Label,
			District:     districts[b.dist].Name,
			X:            round2(b.x),
			Z:            round2(b.z),
			Height:       buildingHeight(node, b.imp, topSource),
			Width:        round2(5 + 7*b.imp),
			Depth:        round2(5 + 7*b.imp),
			Importance:   round2(b.imp),
			Frequency:    node.MentionCount,
			RecencyScore: round2(node.DecayFactor),
			SourceScore:  round2(node.SourceBonus),
			Sources:      append([]string(nil), node.Sources...),
		}
	}

	frame := &Frame{
		Algorithm:      Algorithm,
		DistrictBounds: districtBounds(districts, snap, bodies),
		Buildings:      buildings,
		Connections:    selectConnections(snap, bodies, districts, cfg.MaxConnections),
	}
	frame.ActiveDistrict, frame.DistrictActivity = districtActivity(districts, cfg.Decay, cfg.Recent)
	return frame
}

// buildingHeight applies the piecewise band table, then the top-source
// boost and the ticker cap.
func buildingHeight(node *graph.SnapshotNode, imp float64, topSource string) float64 {
	var h float64
	switch {
	case imp > 0.8:
		h = 40 + 30*imp
	case imp > 0.5:
		h = 25 + 30*imp
	case imp > 0.2:
		h = 12 + 26*imp
	default:
		h = 5 + 20*imp
	}
	if topSource != "" {
		for _, src := range node.Sources {
			if src == topSource {
				h *= 1.4
				break
			}
		}
	}
	if node.Type == "ticker" && h > 25 {
		h = 25
	}
	return round2(h)
}

// topWeightedSource returns the source document with the highest
// source weight across the snapshot; ties break lexicographically.
func topWeightedSource(snap *graph.Snapshot, params decay.Params) string {
	best, bestWeight := "", 0.0
	for i := range snap.Nodes {
		for _, src := range snap.Nodes[i].Sources {
			w := params.SourceWeight(src)
			if w > bestWeight || (w == bestWeight && (best == "" || src < best)) {
				best, bestWeight = src, w
			}
		}
	}
	return best
}

func districtBounds(districts []District, snap *graph.Snapshot, bodies []body) map[string]DistrictBound {
	total := len(bodies)
	counts := make([]int, len(districts))
	fresh := make([]int, len(districts))
	for i := range bodies {
		counts[bodies[i].dist]++
		if snap.Nodes[i].DecayFactor > 0.5 {
			fresh[bodies[i].dist]++
		}
	}

	out := make(map[string]DistrictBound, len(districts))
	for i, d := range districts {
		radius := 25.0
		if total > 0 {
			radius += math.Sqrt(float64(counts[i])/float64(total)) * 40
		}
		switch {
		case fresh[i] > 5:
			radius += 15
		case fresh[i] > 2:
			radius += 8
		}
		out[d.Name] = DistrictBound{
			Center:      Point{X: round2(d.BaseX * districtPullFrac), Z: round2(d.BaseZ * districtPullFrac)},
			Radius:      round2(radius),
			EntityCount: counts[i],
			Color:       d.Color,
		}
	}
	return out
}

// selectConnections prunes the edge set: keep co-occurrence count ≥ 2
// or normalized strength > 0.3, capped at the strongest
// maxConnections.
func selectConnections(snap *graph.Snapshot, bodies []body, districts []District, maxConnections int) []Connection {
	maxCount := 0
	for i := range snap.Edges {
		if snap.Edges[i].CoOccurrenceCount > maxCount {
			maxCount = snap.Edges[i].CoOccurrenceCount
		}
	}
	if maxCount == 0 {
		return []Connection{}
	}

	index := make(map[string]int, len(snap.Nodes))
	for i := range snap.Nodes {
		index[snap.Nodes[i].ID] = i
	}

	out := make([]Connection, 0, len(snap.Edges))
	for i := range snap.Edges {
		e := &snap.Edges[i]
		strength := float64(e.CoOccurrenceCount) / float64(maxCount)
		if e.CoOccurrenceCount < 2 && strength <= 0.3 {
			continue
		}
		kind := "bridge"
		if bodies[index[e.SourceID]].dist == bodies[index[e.TargetID]].dist {
			kind = "local"
		}
		out = append(out, Connection{
			From:     e.SourceID,
			To:       e.TargetID,
			Strength: round2(strength),
			Count:    e.CoOccurrenceCount,
			Type:     kind,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	if maxConnections > 0 && len(out) > maxConnections {
		out = out[:maxConnections]
	}
	return out
}

// districtActivity scores districts against the most recent documents:
// 0.1 × source weight per keyword hit, normalized so the busiest
// district reads 1.0.
func districtActivity(districts []District, params decay.Params, recent []RecentDoc) (string, map[string]float64) {
	activity := make(map[string]float64, len(districts))
	for _, d := range districts {
		activity[d.Name] = 0
	}

	maxScore := 0.0
	for _, d := range districts {
		score := 0.0
		for _, doc := range recent {
			content := strings.ToLower(doc.Content)
			weight := params.SourceWeight(doc.Path)
			for _, kw := range d.Keywords {
				if strings.Contains(content, kw) {
					score += 0.1 * weight
				}
			}
		}
		activity[d.Name] = score
		if score > maxScore {
			maxScore = score
		}
	}

	active := fallbackDistrict
	if maxScore > 0 {
		for _, d := range districts {
			activity[d.Name] = round2(activity[d.Name] / maxScore)
		}
		for _, d := range districts {
			if activity[d.Name] == 1.0 {
				active = d.Name
				break
			}
		}
	}
	return active, activity
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
