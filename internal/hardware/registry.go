// Package hardware provides the name-keyed registry that maps configured
// device names to their handles, mirroring the robot's hardware map.
package hardware

import (
	"errors"
	"fmt"
	"sync"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/capture"
)

// ErrNotFound is returned when a requested device name is not registered.
var ErrNotFound = errors.New("hardware device not found")

// Registry maps hardware names to camera handles. Registration happens
// during robot init; lookups happen during subsystem construction.
type Registry struct {
	mu      sync.RWMutex
	cameras map[string]capture.Camera
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		cameras: make(map[string]capture.Camera),
	}
}

// RegisterCamera adds a camera under the given hardware name, replacing
// any previous registration for that name.
func (r *Registry) RegisterCamera(name string, cam capture.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cameras[name] = cam
}

// Camera looks up a camera by hardware name. A missing name returns an
// error wrapping ErrNotFound.
func (r *Registry) Camera(name string) (capture.Camera, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cam, ok := r.cameras[name]
	if !ok {
		return nil, fmt.Errorf("camera %q: %w", name, ErrNotFound)
	}
	return cam, nil
}
