package processor

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// ObjectDetectorParams configures the neural object detection processor.
type ObjectDetectorParams struct {
	// ModelAsset is the path to the detection model file.
	ModelAsset string

	// ModelConfig is the optional path to the model's config file.
	ModelConfig string

	// TargetLabels maps class IDs (by index) to label names. Detections
	// whose class ID has no label are dropped.
	TargetLabels []string

	// MinConfidence drops detections scoring below this threshold.
	MinConfidence float64
}

// ObjectDetector runs a DNN object detection model over frames and maps
// its output boxes to labeled detections. The network is loaded lazily on
// the first frame, so constructing the processor never reads the model
// from disk.
type ObjectDetector struct {
	params ObjectDetectorParams
	filter Filter

	mu      sync.Mutex
	net     gocv.Net
	started bool
}

// NewObjectDetector creates an ObjectDetector with the given parameters.
func NewObjectDetector(params ObjectDetectorParams) *ObjectDetector {
	return &ObjectDetector{
		params: params,
		filter: NewScoreFilter(params.MinConfidence),
	}
}

// Name returns the processor name.
func (p *ObjectDetector) Name() string {
	return "ObjectDetector"
}

// Process runs the model on the frame and returns detections for target
// labels at or above the minimum confidence, sorted by descending
// confidence.
func (p *ObjectDetector) Process(frame *gocv.Mat) ([]Detection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureStarted(); err != nil {
		return nil, err
	}

	blob := gocv.BlobFromImage(*frame, 1.0/127.5, image.Pt(300, 300),
		gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	p.net.SetInput(blob, "")
	prob := p.net.Forward("")
	defer prob.Close()

	cols := float32(frame.Cols())
	rows := float32(frame.Rows())

	// SSD-style output: each detection is 7 floats of
	// [batch, classID, confidence, left, top, right, bottom].
	var dets []Detection
	for i := 0; i < prob.Total(); i += 7 {
		confidence := float64(prob.GetFloatAt(0, i+2))
		classID := int(prob.GetFloatAt(0, i+1))
		if classID < 0 || classID >= len(p.params.TargetLabels) {
			continue
		}
		left := int(prob.GetFloatAt(0, i+3) * cols)
		top := int(prob.GetFloatAt(0, i+4) * rows)
		right := int(prob.GetFloatAt(0, i+5) * cols)
		bottom := int(prob.GetFloatAt(0, i+6) * rows)

		dets = append(dets, Detection{
			Label:      p.params.TargetLabels[classID],
			Confidence: confidence,
			Box:        image.Rect(left, top, right, bottom),
		})
	}

	dets = p.filter(dets)
	SortByConfidence(dets)
	return dets, nil
}

// Close releases the network if it was loaded.
func (p *ObjectDetector) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}
	p.started = false
	return p.net.Close()
}

func (p *ObjectDetector) ensureStarted() error {
	if p.started {
		return nil
	}

	if _, err := os.Stat(p.params.ModelAsset); err != nil {
		return fmt.Errorf("model asset %s: %w", p.params.ModelAsset, err)
	}

	net := gocv.ReadNet(p.params.ModelAsset, p.params.ModelConfig)
	if net.Empty() {
		return fmt.Errorf("failed to load model %s", p.params.ModelAsset)
	}

	p.net = net
	p.started = true
	return nil
}
