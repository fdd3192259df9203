package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// District is one named semantic category of the city. Nodes are
// assigned to exactly one district by keyword scoring.
type District struct {
	Name       string   `json:"name"`
	Keywords   []string `json:"keywords"`
	BaseX      float64  `json:"base_x"`
	BaseZ      float64  `json:"base_z"`
	Color      string   `json:"color"`
	Importance float64  `json:"importance_multiplier"`
}

// fallbackDistrict receives nodes whose label matches no keyword.
const fallbackDistrict = "memory"

// DefaultDistricts returns the stock district set.
func DefaultDistricts() []District {
	return []District{
		{
			Name: "trading",
			Keywords: []string{
				"trade", "trading", "stock", "ticker", "market", "option",
				"position", "portfolio", "price", "earnings", "nvda", "btc",
				"crypto", "allocation", "dividend",
			},
			BaseX: 45, BaseZ: 10,
			Color:      "#f5a623",
			Importance: 1.3,
		},
		{
			Name: "infrastructure",
			Keywords: []string{
				"server", "deploy", "docker", "kubernetes", "vps", "dns",
				"nginx", "database", "backup", "linux", "systemd", "network",
				"tunnel", "host", "cron",
			},
			BaseX: -40, BaseZ: 25,
			Color:      "#4a90d9",
			Importance: 1.1,
		},
		{
			Name: "projects",
			Keywords: []string{
				"project", "scanner", "engine", "build", "feature", "release",
				"prototype", "roadmap", "milestone", "launch",
			},
			BaseX: -15, BaseZ: -45,
			Color:      "#7ed321",
			Importance: 1.2,
		},
		{
			Name: "memory",
			Keywords: []string{
				"memory", "note", "journal", "daily", "log", "remember",
				"reflection", "idea",
			},
			BaseX: 30, BaseZ: -35,
			Color:      "#bd10e0",
			Importance: 0.9,
		},
		{
			Name: "core",
			Keywords: []string{
				"soul", "identity", "user", "agent", "principle", "value",
				"goal", "rule",
			},
			BaseX: 0, BaseZ: 0,
			Color:      "#e8e3d9",
			Importance: 1.5,
		},
	}
}

// LoadDistricts reads a district-definition JSON file.
func LoadDistricts(path string) ([]District, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read district definitions: %w", err)
	}
	var districts []District
	if err := json.Unmarshal(data, &districts); err != nil {
		return nil, fmt.Errorf("parse district definitions: %w", err)
	}
	if len(districts) == 0 {
		return nil, fmt.Errorf("district definitions %s: empty set", path)
	}
	for i := range districts {
		if districts[i].Importance == 0 {
			districts[i].Importance = 1.0
		}
	}
	return districts, nil
}

// assignDistrict scores a node label against every district: one point
// per contained keyword, highest score wins, ties fall through
// declaration order. Zero score falls back to the memory district.
func assignDistrict(districts []District, label string) int {
	label = strings.ToLower(label)
	best, bestScore := -1, 0
	for i, d := range districts {
		score := 0
		for _, kw := range d.Keywords {
			if strings.Contains(label, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return best
	}
	for i, d := range districts {
		if d.Name == fallbackDistrict {
			return i
		}
	}
	return 0
}

// polarAngle returns the angle of a district's base position around
// the origin.
func polarAngle(d District) float64 {
	return math.Atan2(d.BaseZ, d.BaseX)
}
