package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/capture"
)

// StreamHandler serves the annotated preview as MJPEG. Frames come from
// the multiplexer's latest-frame buffer, so the stream never competes
// with the processors for camera reads.
type StreamHandler struct {
	mux *capture.Mux
}

// NewStreamHandler creates a new StreamHandler fed by the given mux.
func NewStreamHandler(mux *capture.Mux) *StreamHandler {
	return &StreamHandler{mux: mux}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, ok := h.mux.LatestFrame()
		if !ok {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
		w.Write(frame)
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(66 * time.Millisecond) // ~15 FPS
	}
}
