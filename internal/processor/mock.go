package processor

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockProcessor is a test implementation of the Processor interface.
// It allows tests to control the detection results.
type MockProcessor struct {
	name      string
	mu        sync.Mutex
	dets      []Detection
	err       error
	processed int
	closed    bool
}

// NewMockProcessor creates a new MockProcessor with the given name.
func NewMockProcessor(name string) *MockProcessor {
	return &MockProcessor{name: name}
}

// SetDetections sets the detections that will be returned by Process.
func (m *MockProcessor) SetDetections(dets []Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dets = dets
}

// SetError sets the error that will be returned by Process.
func (m *MockProcessor) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Name returns the configured name.
func (m *MockProcessor) Name() string {
	return m.name
}

// Process returns the pre-configured detections or error.
func (m *MockProcessor) Process(frame *gocv.Mat) ([]Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed++
	if m.err != nil {
		return nil, m.err
	}
	return m.dets, nil
}

// Processed returns how many frames this processor has seen.
func (m *MockProcessor) Processed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processed
}

// Close marks the processor closed.
func (m *MockProcessor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockProcessor) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
