package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/lazypower/mindcity/internal/hub"
	"github.com/lazypower/mindcity/internal/layout"
)

// streamHeartbeat keeps idle SSE connections from being reaped by
// intermediaries.
const streamHeartbeat = 25 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"version":     s.version,
		"uptime":      time.Since(s.started).Seconds(),
		"generation":  s.supervisor.Generation(),
		"subscribers": s.hub.SubscriberCount(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.hub.Latest()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot yet"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	snap := s.hub.Latest()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot yet"})
		return
	}
	cfg := s.layoutCfg
	cfg.Recent = s.supervisor.RecentDocs(3)
	frame := layout.Project(snap, cfg)
	s.hub.Publish(hub.Event{Kind: hub.KindLayout, Payload: frame})
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	snap := s.hub.Latest()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot yet"})
		return
	}
	n := 20
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"generation": snap.Generation,
		"nodes":      snap.KeyNodes(n),
	})
}

// handleStream serves the SSE fan-out: the latest snapshot immediately,
// then one event per published generation. Slow readers skip
// generations rather than backing up the publisher.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := s.hub.Subscribe()
	defer cancel()

	if snap := s.hub.Latest(); snap != nil {
		writeSSE(w, "snapshot", snap)
		flusher.Flush()
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case ev := <-events:
			writeSSE(w, string(ev.Kind), ev.Payload)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	w.Write([]byte("event: " + event + "\ndata: "))
	w.Write(data)
	w.Write([]byte("\n\n"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
