package watch

import (
	"context"
	"testing"
	"time"

	"github.com/lazypower/mindcity/internal/extract"
	"github.com/lazypower/mindcity/internal/hub"
	"github.com/lazypower/mindcity/internal/logger"
	"github.com/lazypower/mindcity/internal/logger/console"
)

func TestZZDebugFull(t *testing.T) {
	logger.Init(console.New(console.Params{Debug: true}))
	root := t.TempDir()
	writeFile(t, root, "SOUL.md", "Anton keeps the docker fleet healthy.")
	writeFile(t, root, "memory/2026-01-15.md", "Anton decided to increase NVDA allocation using `yahoo-finance`.")

	h := hub.New()
	events, unsub := h.Subscribe()
	defer unsub()

	sup := New(Options{
		Root:      root,
		Debounce:  50 * time.Millisecond,
		RebuildOnDelete: true,
		Extractor: extract.New(extract.Options{}),
		Decay:     testDecay(),
		Hub:       h,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	first := waitSnapshot(t, events, 5*time.Second)
	t.Logf("first generation %d", first.Generation)

	writeFile(t, root, "memory/2026-01-16.md", "Settled on postgres for the trade journal.")
	second := waitSnapshot(t, events, 5*time.Second)
	t.Logf("second generation %d", second.Generation)
}
