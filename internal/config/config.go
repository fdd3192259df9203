// Package config holds all mindcity configuration.
//
// Configuration is environment-driven: every option has a default and a
// MINDCITY_* override. A .env file in the working directory is honored
// when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all mindcity configuration.
type Config struct {
	Server    ServerConfig
	Workspace WorkspaceConfig
	Extract   ExtractConfig
	Decay     DecayConfig
	Layout    LayoutConfig
	Debug     bool
}

type ServerConfig struct {
	Bind string
	Port int
}

type WorkspaceConfig struct {
	// Path is the root of the watched files.
	Path string
	// IndexPath is the sqlite document index. Empty means
	// <workspace>/.mindcity/index.db.
	IndexPath string
	// DebounceMS is the per-path coalescing window for file events.
	DebounceMS int
	// RebuildOnDelete controls whether a file deletion triggers a rebuild.
	RebuildOnDelete bool
}

type ExtractConfig struct {
	// TickerWhitelist and TickerStoplist override the built-in sets
	// when non-empty.
	TickerWhitelist []string
	TickerStoplist  []string
}

type DecayConfig struct {
	// HalfLives maps entity type to half-life. Types not present fall
	// back to the entry under key "default".
	HalfLives map[string]time.Duration
	// SourceWeights is an ordered contains-match pattern list; first
	// match wins.
	SourceWeights []SourceWeight
}

// SourceWeight is one path-pattern → multiplier entry.
type SourceWeight struct {
	Pattern    string
	Multiplier float64
}

type LayoutConfig struct {
	// DistrictsPath optionally points at a JSON district-definition file.
	DistrictsPath  string
	Iterations     int
	Bounds         float64
	MaxConnections int
}

// Default returns a Config with the stock defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38080,
		},
		Workspace: WorkspaceConfig{
			Path:            defaultWorkspace(),
			DebounceMS:      500,
			RebuildOnDelete: true,
		},
		Decay: DecayConfig{
			HalfLives:     DefaultHalfLives(),
			SourceWeights: DefaultSourceWeights(),
		},
		Layout: LayoutConfig{
			Iterations:     150,
			Bounds:         80,
			MaxConnections: 150,
		},
	}
}

// DefaultHalfLives returns the stock half-life table, keyed by entity type.
func DefaultHalfLives() map[string]time.Duration {
	return map[string]time.Duration{
		"ticker":       7 * 24 * time.Hour,
		"url":          14 * 24 * time.Hour,
		"topic":        30 * 24 * time.Hour,
		"header":       30 * 24 * time.Hour,
		"concept":      30 * 24 * time.Hour,
		"organization": 45 * 24 * time.Hour,
		"person":       60 * 24 * time.Hour,
		"decision":     60 * 24 * time.Hour,
		"tool":         90 * 24 * time.Hour,
		"default":      30 * 24 * time.Hour,
	}
}

// DefaultSourceWeights returns the stock source-weight pattern list.
// Order matters: first contains-match wins.
func DefaultSourceWeights() []SourceWeight {
	return []SourceWeight{
		{Pattern: "SOUL.md", Multiplier: 5.0},
		{Pattern: "MEMORY.md", Multiplier: 3.0},
		{Pattern: "USER.md", Multiplier: 3.0},
		{Pattern: "AGENTS.md", Multiplier: 2.0},
		{Pattern: "TOOLS.md", Multiplier: 2.0},
		{Pattern: "memory/", Multiplier: 1.0},
	}
}

func defaultWorkspace() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".mindcity", "workspace")
}

// Load builds a Config from defaults plus environment overrides. A .env
// file in the working directory is loaded first when present.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Default()
	cfg.Server.Bind = getString("MINDCITY_BIND", cfg.Server.Bind)
	cfg.Server.Port = getInt("MINDCITY_PORT", cfg.Server.Port)
	cfg.Debug = getBool("MINDCITY_DEBUG", cfg.Debug)

	cfg.Workspace.Path = getString("MINDCITY_WORKSPACE_PATH", cfg.Workspace.Path)
	cfg.Workspace.IndexPath = getString("MINDCITY_INDEX_PATH", cfg.Workspace.IndexPath)
	cfg.Workspace.DebounceMS = getInt("MINDCITY_DEBOUNCE_MS", cfg.Workspace.DebounceMS)
	cfg.Workspace.RebuildOnDelete = getBool("MINDCITY_REBUILD_ON_DELETE", cfg.Workspace.RebuildOnDelete)

	cfg.Extract.TickerWhitelist = getList("MINDCITY_TICKER_WHITELIST")
	cfg.Extract.TickerStoplist = getList("MINDCITY_TICKER_STOPLIST")

	cfg.Layout.DistrictsPath = getString("MINDCITY_DISTRICT_DEFINITIONS", cfg.Layout.DistrictsPath)
	cfg.Layout.Iterations = getInt("MINDCITY_LAYOUT_ITERATIONS", cfg.Layout.Iterations)
	cfg.Layout.Bounds = getFloat("MINDCITY_LAYOUT_BOUNDS", cfg.Layout.Bounds)
	cfg.Layout.MaxConnections = getInt("MINDCITY_MAX_CONNECTIONS", cfg.Layout.MaxConnections)

	if raw := os.Getenv("MINDCITY_HALF_LIVES_BY_TYPE"); raw != "" {
		hl, err := ParseHalfLives(raw)
		if err != nil {
			return cfg, fmt.Errorf("parse MINDCITY_HALF_LIVES_BY_TYPE: %w", err)
		}
		for k, v := range hl {
			cfg.Decay.HalfLives[k] = v
		}
	}
	if raw := os.Getenv("MINDCITY_SOURCE_WEIGHTS_BY_PATTERN"); raw != "" {
		sw, err := ParseSourceWeights(raw)
		if err != nil {
			return cfg, fmt.Errorf("parse MINDCITY_SOURCE_WEIGHTS_BY_PATTERN: %w", err)
		}
		cfg.Decay.SourceWeights = sw
	}

	return cfg, nil
}

// ParseHalfLives parses "type=days,type=days" into a half-life map.
func ParseHalfLives(raw string) (map[string]time.Duration, error) {
	out := make(map[string]time.Duration)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("entry %q: want type=days", pair)
		}
		days, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("entry %q: bad day count", pair)
		}
		out[strings.TrimSpace(k)] = time.Duration(days * 24 * float64(time.Hour))
	}
	return out, nil
}

// ParseSourceWeights parses "pattern=mult,pattern=mult" preserving order.
func ParseSourceWeights(raw string) ([]SourceWeight, error) {
	var out []SourceWeight
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("entry %q: want pattern=multiplier", pair)
		}
		mult, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || mult < 0 {
			return nil, fmt.Errorf("entry %q: bad multiplier", pair)
		}
		out = append(out, SourceWeight{Pattern: strings.TrimSpace(k), Multiplier: mult})
	}
	return out, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// ResolvedIndexPath resolves the document-index path, defaulting to a
// dotdir inside the workspace.
func (c *Config) ResolvedIndexPath() string {
	if c.Workspace.IndexPath != "" {
		return c.Workspace.IndexPath
	}
	return filepath.Join(c.Workspace.Path, ".mindcity", "index.db")
}

func getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	if v == "true" || v == "false" {
		return v == "true"
	}
	return def
}

func getList(key string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
