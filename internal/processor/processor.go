// Package processor implements the vision processors dispatched by the
// capture multiplexer: fiducial marker detection, color blob detection and
// neural object detection, all backed by GoCV (OpenCV).
package processor

import (
	"image"
	"sort"

	"gocv.io/x/gocv"
)

// Detection is one detected target in a frame.
type Detection struct {
	// Label identifies what was detected: a tag ID for markers, a blob
	// name for color blobs, a class label for neural detections.
	Label string

	// Confidence is the detection score in [0, 1]. Marker detections
	// report 1.0.
	Confidence float64

	// Box is the bounding box in image pixel coordinates.
	Box image.Rectangle
}

// Processor analyzes frames handed to it by the multiplexer.
type Processor interface {
	// Name returns the processor's display name, unique per instance.
	Name() string

	// Process analyzes a frame and returns detections found in it.
	// Returns an empty slice if nothing was detected.
	Process(frame *gocv.Mat) ([]Detection, error)

	// Close releases any native resources held by the processor.
	Close() error
}

// CompareConfidence orders two detections by descending confidence. It
// returns a negative value if a should sort before b, positive if after,
// and 0 on an exact tie. The comparison is a true three-way float compare
// so that differences smaller than any fixed scaling still order strictly.
func CompareConfidence(a, b Detection) int {
	switch {
	case a.Confidence > b.Confidence:
		return -1
	case a.Confidence < b.Confidence:
		return 1
	default:
		return 0
	}
}

// SortByConfidence sorts detections by descending confidence. The sort is
// stable: exact ties keep their input order.
func SortByConfidence(dets []Detection) {
	sort.SliceStable(dets, func(i, j int) bool {
		return CompareConfidence(dets[i], dets[j]) < 0
	})
}

// Filter narrows or reorders a detection slice after processing.
type Filter func([]Detection) []Detection

// NewScoreFilter returns a Filter that drops detections below a minimum
// confidence.
func NewScoreFilter(minConfidence float64) Filter {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Confidence >= minConfidence {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewAreaFilter returns a Filter that drops detections whose bounding box
// area is below the given pixel area.
func NewAreaFilter(area int) Filter {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Box.Dx()*d.Box.Dy() >= area {
				out = append(out, d)
			}
		}
		return out
	}
}
