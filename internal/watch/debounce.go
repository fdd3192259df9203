package watch

import (
	"context"
	"sync"
	"time"
)

// change is a path-level intent from the watcher task.
type change struct {
	path   string
	remove bool
}

// readRequest asks the reader task to (re)load or drop one path.
type readRequest struct {
	path   string
	remove bool
}

// debouncer coalesces change events per path: a later event inside the
// window resets that path's timer. Removals bypass the window.
type debouncer struct {
	window time.Duration
	out    chan<- readRequest

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newDebouncer(window time.Duration, out chan<- readRequest) *debouncer {
	return &debouncer{
		window: window,
		out:    out,
		timers: make(map[string]*time.Timer),
	}
}

// run consumes change intents until the context ends or the input
// channel closes. Pending timers are stopped on exit.
func (d *debouncer) run(ctx context.Context, in <-chan change) error {
	defer d.stopAll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-in:
			if !ok {
				return nil
			}
			if c.remove {
				d.cancel(c.path)
				d.forward(ctx, readRequest{path: c.path, remove: true})
				continue
			}
			d.reset(ctx, c.path)
		}
	}
}

func (d *debouncer) reset(ctx context.Context, path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		d.forward(ctx, readRequest{path: path})
	})
}

func (d *debouncer) cancel(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Stop()
		delete(d.timers, path)
	}
}

func (d *debouncer) forward(ctx context.Context, req readRequest) {
	select {
	case d.out <- req:
	case <-ctx.Done():
	}
}

func (d *debouncer) stopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}
