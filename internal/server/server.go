// Package server provides the local HTTP control surface for the vision
// subsystem: processor toggles, detection queries and the preview stream
// consumed by the drive team dashboard.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/store"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/vision"
)

// Processor kind names used in the toggle API.
const (
	KindAprilTag       = "apriltag"
	KindRedBlob        = "redblob"
	KindBlueBlob       = "blueblob"
	KindObjectDetector = "objectdetector"
)

// Config holds the server configuration.
type Config struct {
	Vision    *vision.Vision
	Store     *store.Store
	SessionID string
}

// Server represents the HTTP control server for the vision subsystem.
type Server struct {
	config Config
	mux    *http.ServeMux
	events *EventsHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Vision != nil {
		s.mux.HandleFunc("/api/processors", s.handleProcessors)
		s.mux.HandleFunc("/api/processors/", s.handleProcessorToggle)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Vision.Mux()))

		s.events = NewEventsHandler()
		s.mux.Handle("/api/events", s.events)
	}

	if s.config.Store != nil {
		s.mux.HandleFunc("/api/detections", s.handleDetections)
	}
}

// Events returns the WebSocket detection broadcast handler, or nil when
// no vision facade is configured.
func (s *Server) Events() *EventsHandler {
	return s.events
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleProcessors handles GET requests to /api/processors and reports
// the enabled state of every processor kind.
func (s *Server) handleProcessors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	v := s.config.Vision
	writeJSON(w, map[string]bool{
		KindAprilTag:       v.IsAprilTagEnabled(),
		KindRedBlob:        v.IsRedBlobEnabled(),
		KindBlueBlob:       v.IsBlueBlobEnabled(),
		KindObjectDetector: v.IsObjectDetectionEnabled(),
	})
}

// handleProcessorToggle handles POST /api/processors/{kind} with a JSON
// body of {"enabled": bool}. Toggling a kind that was not built is a
// no-op, matching the facade semantics.
func (s *Server) handleProcessorToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind := strings.TrimPrefix(r.URL.Path, "/api/processors/")

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	v := s.config.Vision
	var enabled bool
	switch kind {
	case KindAprilTag:
		v.SetAprilTagEnabled(body.Enabled)
		enabled = v.IsAprilTagEnabled()
	case KindRedBlob:
		v.SetRedBlobEnabled(body.Enabled)
		enabled = v.IsRedBlobEnabled()
	case KindBlueBlob:
		v.SetBlueBlobEnabled(body.Enabled)
		enabled = v.IsBlueBlobEnabled()
	case KindObjectDetector:
		v.SetObjectDetectionEnabled(body.Enabled)
		enabled = v.IsObjectDetectionEnabled()
	default:
		http.Error(w, "Unknown processor", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]bool{"enabled": enabled})
}

// handleDetections handles GET /api/detections and returns the most
// recent logged detections for the current session.
func (s *Server) handleDetections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := s.config.Store.Detections().ListRecent(s.config.SessionID, 50)
	if err != nil {
		http.Error(w, "Failed to query detections", http.StatusInternalServerError)
		return
	}

	writeJSON(w, records)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
