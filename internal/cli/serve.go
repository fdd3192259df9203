package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lazypower/mindcity/internal/config"
	"github.com/lazypower/mindcity/internal/hub"
	"github.com/lazypower/mindcity/internal/logger"
	"github.com/lazypower/mindcity/internal/logger/console"
	"github.com/lazypower/mindcity/internal/server"
	"github.com/lazypower/mindcity/internal/store"
	"github.com/lazypower/mindcity/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch the workspace and serve the live graph",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(console.New(console.Params{Debug: cfg.Debug}))

	lc, err := layoutConfig(cfg)
	if err != nil {
		logger.Fatal("district definitions unusable", "err", err)
	}

	// The document index only mirrors the supervisor's document table
	// and is never read back; serving works the same without it.
	var index *store.DB
	if db, err := store.Open(cfg.ResolvedIndexPath()); err != nil {
		logger.Warn("document index unavailable", "err", err)
	} else {
		index = db
		defer index.Close()
	}

	h := hub.New()
	sup := watch.New(watch.Options{
		Root:            cfg.Workspace.Path,
		Debounce:        time.Duration(cfg.Workspace.DebounceMS) * time.Millisecond,
		RebuildOnDelete: cfg.Workspace.RebuildOnDelete,
		Extractor:       newExtractor(cfg),
		Decay:           decayParams(cfg),
		Hub:             h,
		Index:           index,
	})

	srv := server.New(h, sup, lc, VersionString())
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: srv,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sup.Run(ctx); err != nil {
			logger.Fatal("workspace unwatchable", "path", cfg.Workspace.Path, "err", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("mindcity serving", "addr", cfg.ListenAddr(), "workspace", cfg.Workspace.Path)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", "err", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shut down cleanly")
	return nil
}
