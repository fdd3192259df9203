package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/lazypower/mindcity/internal/config"
	"github.com/lazypower/mindcity/internal/decay"
	"github.com/lazypower/mindcity/internal/extract"
	"github.com/lazypower/mindcity/internal/graph"
	"github.com/lazypower/mindcity/internal/layout"
	"github.com/lazypower/mindcity/internal/watch"
)

// decayParams maps the config tables into the decay component's input.
func decayParams(cfg config.Config) decay.Params {
	weights := make([]decay.SourceWeight, len(cfg.Decay.SourceWeights))
	for i, sw := range cfg.Decay.SourceWeights {
		weights[i] = decay.SourceWeight{Pattern: sw.Pattern, Multiplier: sw.Multiplier}
	}
	return decay.Params{
		HalfLives:     cfg.Decay.HalfLives,
		SourceWeights: weights,
	}
}

// layoutConfig assembles the projector configuration, loading the
// district-definition file when one is configured.
func layoutConfig(cfg config.Config) (layout.Config, error) {
	lc := layout.Config{
		Districts:      layout.DefaultDistricts(),
		Iterations:     cfg.Layout.Iterations,
		Bounds:         cfg.Layout.Bounds,
		MaxConnections: cfg.Layout.MaxConnections,
		Decay:          decayParams(cfg),
	}
	if cfg.Layout.DistrictsPath != "" {
		districts, err := layout.LoadDistricts(cfg.Layout.DistrictsPath)
		if err != nil {
			return lc, err
		}
		lc.Districts = districts
	}
	return lc, nil
}

// newExtractor builds the extractor with any configured lexicon
// overrides.
func newExtractor(cfg config.Config) *extract.Extractor {
	return extract.New(extract.Options{
		TickerWhitelist: cfg.Extract.TickerWhitelist,
		TickerStoplist:  cfg.Extract.TickerStoplist,
	})
}

// buildOnce reads the workspace and produces an annotated
// generation-1 snapshot plus the raw documents, for the one-shot
// subcommands.
func buildOnce(cfg config.Config) (*graph.Store, *graph.Snapshot, []watch.Document, error) {
	ex := newExtractor(cfg)
	docs, err := watch.ReadAll(cfg.Workspace.Path, func(path string, err error) {
		fmt.Printf("warning: skipping %s: %v\n", path, err)
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read workspace: %w", err)
	}

	store := watch.BuildStore(ex, docs, func(path string, err error) {
		fmt.Printf("warning: %s: %v\n", path, err)
	})

	now := time.Now()
	snap := store.Snapshot()
	snap.Generation = 1
	snap.ProducedAtMS = now.UnixMilli()
	decayParams(cfg).Annotate(snap, now)
	if err := snap.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("snapshot validation: %w", err)
	}
	return store, snap, docs, nil
}

// recentDocs picks the n most recently modified documents for the
// active-district heuristic.
func recentDocs(docs []watch.Document, n int) []layout.RecentDoc {
	sorted := make([]watch.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Modified.Equal(sorted[j].Modified) {
			return sorted[i].Modified.After(sorted[j].Modified)
		}
		return sorted[i].Path < sorted[j].Path
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]layout.RecentDoc, len(sorted))
	for i, d := range sorted {
		out[i] = layout.RecentDoc{Path: d.Path, Content: string(d.Content)}
	}
	return out
}
