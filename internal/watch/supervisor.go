// Package watch mirrors the memory workspace into a live graph store
// and publishes snapshots.
//
// The pipeline is a fixed set of tasks joined by typed channels:
// watcher → debouncer → reader → graph owner. The reader is the sole
// owner of the document table; the graph owner is the sole mutator of
// the graph store.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/lazypower/mindcity/internal/decay"
	"github.com/lazypower/mindcity/internal/extract"
	"github.com/lazypower/mindcity/internal/hub"
	"github.com/lazypower/mindcity/internal/layout"
	"github.com/lazypower/mindcity/internal/logger"
	"github.com/lazypower/mindcity/internal/store"
)

// rediscoverInterval is how often a vanished workspace directory is
// re-probed.
const rediscoverInterval = 5 * time.Second

// Options configures a Supervisor. Hub and Extractor are required;
// Index may be nil to run without the on-disk document index.
type Options struct {
	Root            string
	Debounce        time.Duration
	RebuildOnDelete bool
	Extractor       *extract.Extractor
	Decay           decay.Params
	Hub             *hub.Hub
	Index           *store.DB
}

// Supervisor watches the workspace and keeps the published graph
// current.
type Supervisor struct {
	opts Options

	mu   sync.RWMutex
	docs map[string]*Document

	genMu      sync.Mutex
	generation uint64
}

// New creates a Supervisor. It does not touch the filesystem until Run.
func New(opts Options) *Supervisor {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	return &Supervisor{
		opts: opts,
		docs: make(map[string]*Document),
	}
}

// Run arms the filesystem watches, performs the initial load, then
// processes filesystem events until the context is cancelled. The graph
// owner publishes one final snapshot before Run returns.
func (s *Supervisor) Run(ctx context.Context) error {
	if _, err := os.Stat(s.opts.Root); err != nil {
		// Startup without a workspace is fatal; a disappearance later
		// is not.
		return err
	}

	changes := make(chan change, 64)
	reads := make(chan readRequest, 64)
	rebuilds := make(chan []Document, 1)
	ready := make(chan struct{})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.watcherTask(ctx, changes, ready) })
	g.Go(func() error { return newDebouncer(s.opts.Debounce, reads).run(ctx, changes) })
	g.Go(func() error { return s.readerTask(ctx, reads, rebuilds) })
	g.Go(func() error { return s.graphOwnerTask(ctx, rebuilds) })

	// Load only once the watches are armed, so a write that follows the
	// initial snapshot is always seen.
	select {
	case <-ready:
		s.loadAll(ctx, rebuilds)
	case <-ctx.Done():
	}

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// RecentDocs returns the n most recently modified documents, newest
// first, for the layout active-district heuristic.
func (s *Supervisor) RecentDocs(n int) []layout.RecentDoc {
	s.mu.RLock()
	docs := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].Modified.Equal(docs[j].Modified) {
			return docs[i].Modified.After(docs[j].Modified)
		}
		return docs[i].Path < docs[j].Path
	})
	if len(docs) > n {
		docs = docs[:n]
	}
	out := make([]layout.RecentDoc, len(docs))
	for i, d := range docs {
		out[i] = layout.RecentDoc{Path: d.Path, Content: string(d.Content)}
	}
	return out
}

// Generation returns the latest published generation.
func (s *Supervisor) Generation() uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generation
}

// loadAll performs the startup enumeration and queues the initial
// rebuild.
func (s *Supervisor) loadAll(ctx context.Context, rebuilds chan []Document) {
	docs, err := ReadAll(s.opts.Root, func(path string, err error) {
		logger.Warn("skipping unreadable file", "path", path, "err", err)
	})
	if err != nil {
		logger.Warn("workspace enumeration failed", "err", err)
		return
	}

	s.mu.Lock()
	for i := range docs {
		d := docs[i]
		s.docs[d.Path] = &d
		s.indexDocument(&d)
	}
	s.mu.Unlock()

	s.queueRebuild(ctx, rebuilds)
}

// watcherTask translates fsnotify events into path-level change
// intents. A vanished workspace is re-probed every 5 seconds; the last
// published snapshot stays up meanwhile.
func (s *Supervisor) watcherTask(ctx context.Context, changes chan<- change, ready chan<- struct{}) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	addWatches := func() error {
		if err := w.Add(s.opts.Root); err != nil {
			return err
		}
		memDir := filepath.Join(s.opts.Root, memorySubdir)
		if _, err := os.Stat(memDir); err == nil {
			if err := w.Add(memDir); err != nil {
				return err
			}
		}
		return nil
	}

	rootMissing := false
	if err := addWatches(); err != nil {
		logger.Warn("workspace watch failed, retrying", "err", err)
		rootMissing = true
	}
	close(ready)

	retry := time.NewTicker(rediscoverInterval)
	defer retry.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-retry.C:
			if !rootMissing {
				continue
			}
			if err := addWatches(); err != nil {
				continue
			}
			rootMissing = false
			logger.Info("workspace reappeared, rescanning")
			// Re-announce every watched file so the pipeline reloads it.
			if paths, err := discover(s.opts.Root); err == nil {
				for _, p := range paths {
					s.send(ctx, changes, change{path: p})
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(s.opts.Root, ev.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			// A new memory/ directory needs its own watch.
			if rel == memorySubdir && ev.Op.Has(fsnotify.Create) {
				w.Add(ev.Name)
				continue
			}
			if rel == "." {
				if _, statErr := os.Stat(s.opts.Root); statErr != nil {
					rootMissing = true
				}
				continue
			}
			if !watchedPath(rel) {
				continue
			}

			logger.Info("ZZDEBUG fsnotify event", "rel", rel, "op", ev.Op.String())
			if ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
				s.send(ctx, changes, change{path: rel, remove: true})
			} else if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) {
				s.send(ctx, changes, change{path: rel})
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}

// readerTask performs all blocking file I/O. It owns the document
// table: reads update it, removals shrink it, and every accepted
// change queues a rebuild. Unchanged hashes are discarded.
func (s *Supervisor) readerTask(ctx context.Context, reads <-chan readRequest, rebuilds chan []Document) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-reads:
			if !ok {
				return nil
			}
			if req.remove {
				s.mu.Lock()
				_, existed := s.docs[req.path]
				delete(s.docs, req.path)
				s.mu.Unlock()
				if existed {
					if s.opts.Index != nil {
						s.opts.Index.DeleteDocument(req.path)
					}
					logger.Info("document removed", "path", req.path)
					if s.opts.RebuildOnDelete {
						s.queueRebuild(ctx, rebuilds)
					}
				}
				continue
			}

			doc, err := readDocument(s.opts.Root, req.path)
			if err != nil {
				logger.Warn("read failed, skipping", "path", req.path, "err", err)
				continue
			}

			s.mu.Lock()
			prev := s.docs[doc.Path]
			unchanged := prev != nil && prev.Hash == doc.Hash
			if !unchanged {
				s.docs[doc.Path] = doc
				s.indexDocument(doc)
			}
			s.mu.Unlock()

			if unchanged {
				logger.Debug("content unchanged, discarding event", "path", req.path)
				continue
			}
			logger.Info("document changed", "path", req.path)
			s.queueRebuild(ctx, rebuilds)
		}
	}
}

// graphOwnerTask is the sole mutator of the graph store. Every rebuild
// message produces a fresh store, a decay-annotated snapshot, and a
// hub publication. On cancellation it publishes one final snapshot.
func (s *Supervisor) graphOwnerTask(ctx context.Context, rebuilds <-chan []Document) error {
	for {
		select {
		case <-ctx.Done():
			// Publish the final snapshot from a queued rebuild when there
			// is one, otherwise from the current document table.
			select {
			case docs := <-rebuilds:
				s.rebuild(docs)
			default:
				s.mu.RLock()
				docs := make([]Document, 0, len(s.docs))
				for _, d := range s.docs {
					docs = append(docs, *d)
				}
				s.mu.RUnlock()
				sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
				s.rebuild(docs)
			}
			return ctx.Err()
		case docs, ok := <-rebuilds:
			if !ok {
				return nil
			}
			s.rebuild(docs)
		}
	}
}

func (s *Supervisor) rebuild(docs []Document) {
	start := time.Now()
	g := BuildStore(s.opts.Extractor, docs, func(path string, err error) {
		logger.Warn("extraction skipped", "path", path, "err", err)
	})

	now := time.Now()
	snap := g.Snapshot()
	snap.ProducedAtMS = now.UnixMilli()
	s.opts.Decay.Annotate(snap, now)

	if err := snap.Validate(); err != nil {
		logger.Error("snapshot invariant violation, not publishing", "err", err)
		return
	}

	s.genMu.Lock()
	s.generation++
	snap.Generation = s.generation
	s.genMu.Unlock()

	s.opts.Hub.Publish(hub.Event{Kind: hub.KindSnapshot, Payload: snap})
	logger.Info("snapshot published",
		"generation", snap.Generation,
		"nodes", len(snap.Nodes),
		"edges", len(snap.Edges),
		"took", time.Since(start))
}

// queueRebuild snapshots the document table and queues it with
// latest-wins semantics: a newer rebuild displaces a queued older one.
// The channel must be the supervisor's capacity-1 rebuild queue.
func (s *Supervisor) queueRebuild(ctx context.Context, rebuilds chan []Document) {
	s.mu.RLock()
	docs := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, *d)
	}
	s.mu.RUnlock()
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

	for {
		select {
		case rebuilds <- docs:
			return
		case <-ctx.Done():
			return
		default:
		}
		// Channel full: displace the stale rebuild.
		select {
		case <-rebuilds:
		default:
		}
	}
}

// indexDocument mirrors a document row into the sqlite index. Callers
// hold s.mu.
func (s *Supervisor) indexDocument(d *Document) {
	if s.opts.Index == nil {
		return
	}
	if err := s.opts.Index.UpsertDocument(d.Path, d.Hash, sourceClass(s.opts.Decay, d.Path), d.Modified); err != nil {
		logger.Warn("index update failed", "path", d.Path, "err", err)
	}
}

// sourceClass names the source-weight pattern a path falls under.
func sourceClass(params decay.Params, path string) string {
	for _, sw := range params.SourceWeights {
		if sw.Pattern != "" && strings.Contains(path, sw.Pattern) {
			return sw.Pattern
		}
	}
	return "other"
}

// send forwards a change intent unless the context has ended.
func (s *Supervisor) send(ctx context.Context, ch chan<- change, c change) {
	select {
	case ch <- c:
	case <-ctx.Done():
	}
}
