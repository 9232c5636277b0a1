package capture

import (
	"image/color"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/processor"
)

// DetectionObserver is called from the capture loop with the results of
// each enabled processor that found something in a frame.
type DetectionObserver func(processorName string, dets []processor.Detection)

// Mux owns the camera pipeline and dispatches frames to zero or more
// registered processors, each independently enabled or disabled. The
// capture loop runs on a background goroutine; the enabled flags may be
// written from the control thread at any time.
type Mux struct {
	camera  Camera
	procs   []processor.Processor
	display bool

	mu       sync.RWMutex
	enabled  map[processor.Processor]bool
	observer DetectionObserver
	latest   []byte
	stopCh   chan struct{}
	done     chan struct{}
}

// NewMux creates a Mux for the given camera and ordered processor list.
// An empty processor list is valid: the loop runs and dispatches nothing.
// All processors start disabled.
func NewMux(camera Camera, display bool, procs []processor.Processor) *Mux {
	enabled := make(map[processor.Processor]bool, len(procs))
	for _, p := range procs {
		enabled[p] = false
	}
	return &Mux{
		camera:  camera,
		procs:   procs,
		display: display,
		enabled: enabled,
	}
}

// SetObserver sets the callback invoked with each processor's detections.
// It must be set before Start.
func (m *Mux) SetObserver(fn DetectionObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = fn
}

// SetProcessorEnabled enables or disables frame dispatch to a registered
// processor. Unregistered processors are ignored.
func (m *Mux) SetProcessorEnabled(p processor.Processor, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.enabled[p]; ok {
		m.enabled[p] = enabled
	}
}

// IsProcessorEnabled reports whether frames are dispatched to the given
// processor. Unregistered processors report false.
func (m *Mux) IsProcessorEnabled(p processor.Processor) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled[p]
}

// Processors returns the ordered processor list.
func (m *Mux) Processors() []processor.Processor {
	return m.procs
}

// LatestFrame returns the most recent annotated JPEG frame, or false if
// the preview is disabled or no frame has been captured yet.
func (m *Mux) LatestFrame() ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return nil, false
	}
	frame := make([]byte, len(m.latest))
	copy(frame, m.latest)
	return frame, true
}

// Start opens the camera and begins the capture loop.
func (m *Mux) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopCh != nil {
		return nil
	}

	if err := m.camera.Open(); err != nil {
		return err
	}

	m.stopCh = make(chan struct{})
	m.done = make(chan struct{})
	go m.runLoop(m.stopCh, m.done)

	log.Println("Vision capture loop started")
	return nil
}

// Close stops the capture loop, waits for the in-flight frame to finish,
// and closes the camera. Processors are not closed; their owner releases
// them.
func (m *Mux) Close() error {
	m.mu.Lock()
	stopCh, done := m.stopCh, m.done
	m.stopCh, m.done = nil, nil
	m.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	err := m.camera.Close()
	log.Println("Vision capture loop stopped")
	return err
}

// runLoop reads frames at the camera's rate and dispatches each frame to
// every enabled processor in registration order.
func (m *Mux) runLoop(stopCh, done chan struct{}) {
	defer close(done)

	fps := m.camera.FPS()
	if fps <= 0 {
		fps = DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, err := m.camera.ReadFrame()
			if err != nil {
				continue
			}
			m.dispatch(frame)
			frame.Close()
		}
	}
}

// dispatch runs every enabled processor over one frame and publishes the
// annotated preview when the display is on.
func (m *Mux) dispatch(frame *gocv.Mat) {
	m.mu.RLock()
	observer := m.observer
	active := make([]processor.Processor, 0, len(m.procs))
	for _, p := range m.procs {
		if m.enabled[p] {
			active = append(active, p)
		}
	}
	m.mu.RUnlock()

	var annotated []processor.Detection
	for _, p := range active {
		dets, err := p.Process(frame)
		if err != nil {
			log.Printf("Processor %s: %v", p.Name(), err)
			continue
		}
		if len(dets) == 0 {
			continue
		}
		if observer != nil {
			observer(p.Name(), dets)
		}
		annotated = append(annotated, dets...)
	}

	if m.display {
		m.publishPreview(frame, annotated)
	}
}

var previewColor = color.RGBA{G: 255, A: 255}

// publishPreview draws detection boxes on a copy of the frame and stores
// it as the latest JPEG for preview consumers.
func (m *Mux) publishPreview(frame *gocv.Mat, dets []processor.Detection) {
	view := frame.Clone()
	defer view.Close()

	for _, d := range dets {
		gocv.Rectangle(&view, d.Box, previewColor, 2)
		gocv.PutText(&view, d.Label, d.Box.Min,
			gocv.FontHersheySimplex, 0.6, previewColor, 2)
	}

	buf, err := gocv.IMEncode(".jpg", view)
	if err != nil {
		return
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())

	m.mu.Lock()
	m.latest = data
	m.mu.Unlock()
}
