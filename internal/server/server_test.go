package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lazypower/mindcity/internal/decay"
	"github.com/lazypower/mindcity/internal/extract"
	"github.com/lazypower/mindcity/internal/graph"
	"github.com/lazypower/mindcity/internal/hub"
	"github.com/lazypower/mindcity/internal/layout"
	"github.com/lazypower/mindcity/internal/watch"
)

func testServer(t *testing.T) (*Server, *hub.Hub) {
	t.Helper()
	h := hub.New()
	sup := watch.New(watch.Options{
		Root:      t.TempDir(),
		Extractor: extract.New(extract.Options{}),
		Hub:       h,
	})
	lc := layout.DefaultConfig()
	lc.Decay = decay.Params{
		HalfLives: map[string]time.Duration{"default": 30 * 24 * time.Hour},
	}
	return New(h, sup, lc, "test"), h
}

func publishSnapshot(h *hub.Hub) *graph.Snapshot {
	now := time.Now()
	s := graph.NewStore()
	s.AddDocument("memory/a.md", []extract.Paragraph{{
		Occurrences: []extract.Occurrence{
			{Label: "Anton", Type: "person"},
			{Label: "NVDA", Type: "ticker"},
		},
	}}, now)
	snap := s.Snapshot()
	snap.Generation = 1
	snap.ProducedAtMS = now.UnixMilli()
	params := decay.Params{HalfLives: map[string]time.Duration{"default": 30 * 24 * time.Hour}}
	params.Annotate(snap, now)
	h.Publish(hub.Event{Kind: hub.KindSnapshot, Payload: snap})
	return snap
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestStateBeforeFirstSnapshot(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/state", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestStateReturnsSnapshotFrame(t *testing.T) {
	srv, h := testServer(t)
	publishSnapshot(h)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap graph.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Generation != 1 || len(snap.Nodes) != 2 || len(snap.Edges) != 1 {
		t.Errorf("frame = gen %d, %d nodes, %d edges", snap.Generation, len(snap.Nodes), len(snap.Edges))
	}
	if snap.Nodes[0].ID != "person:anton" {
		t.Errorf("nodes not sorted: %q first", snap.Nodes[0].ID)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	srv, h := testServer(t)
	publishSnapshot(h)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/layout", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var frame layout.Frame
	if err := json.Unmarshal(rec.Body.Bytes(), &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Algorithm != "brain-optimized-v2" {
		t.Errorf("algorithm = %q", frame.Algorithm)
	}
	if len(frame.Buildings) != 2 {
		t.Errorf("buildings = %d, want 2", len(frame.Buildings))
	}
}

func TestTopEndpoint(t *testing.T) {
	srv, h := testServer(t)
	publishSnapshot(h)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/top?n=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Generation uint64          `json:"generation"`
		Nodes      []graph.KeyNode `json:"nodes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Nodes) != 1 {
		t.Errorf("nodes = %d, want 1", len(body.Nodes))
	}
}
