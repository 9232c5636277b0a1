package processor

import (
	"image"
	"math"
	"strconv"
	"sync"

	"gocv.io/x/gocv"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/config"
)

// AngleUnit selects the unit for reported marker bearings.
type AngleUnit int

const (
	// Degrees reports bearings in degrees.
	Degrees AngleUnit = iota
	// Radians reports bearings in radians.
	Radians
)

// AprilTagParams configures the fiducial marker processor.
type AprilTagParams struct {
	// Intrinsics is the lens calibration used for bearing computation.
	Intrinsics config.LensIntrinsics

	// OutputUnit is the unit for bearings returned by Bearing.
	OutputUnit AngleUnit
}

// AprilTag detects AprilTag fiducial markers using the OpenCV ArUco
// detector with the 36h11 tag family. The native detector is created
// lazily on the first frame so that constructing the processor never
// touches OpenCV state.
type AprilTag struct {
	params AprilTagParams

	mu       sync.Mutex
	detector gocv.ArucoDetector
	started  bool
}

// NewAprilTag creates an AprilTag processor with the given parameters.
func NewAprilTag(params AprilTagParams) *AprilTag {
	return &AprilTag{params: params}
}

// Name returns the processor name.
func (p *AprilTag) Name() string {
	return "AprilTag"
}

// Process detects markers in the frame. Each marker yields one Detection
// whose label is the decimal tag ID and whose confidence is 1.0.
func (p *AprilTag) Process(frame *gocv.Mat) ([]Detection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ensureStarted()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)

	corners, ids, _ := p.detector.DetectMarkers(gray)

	dets := make([]Detection, 0, len(ids))
	for i, id := range ids {
		if i >= len(corners) || len(corners[i]) == 0 {
			continue
		}
		dets = append(dets, Detection{
			Label:      strconv.Itoa(id),
			Confidence: 1.0,
			Box:        cornersToRect(corners[i]),
		})
	}
	return dets, nil
}

// Bearing returns the horizontal bearing from the camera axis to the
// center of a detected marker, in the configured output unit. Positive
// bearings are to the right of the camera axis.
func (p *AprilTag) Bearing(d Detection) float64 {
	center := float64(d.Box.Min.X+d.Box.Max.X) / 2.0
	rad := math.Atan2(center-p.params.Intrinsics.Cx, p.params.Intrinsics.Fx)
	if p.params.OutputUnit == Radians {
		return rad
	}
	return rad * 180.0 / math.Pi
}

// Close releases the native detector if it was started.
func (p *AprilTag) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}
	p.started = false
	return p.detector.Close()
}

func (p *AprilTag) ensureStarted() {
	if p.started {
		return
	}
	dict := gocv.GetPredefinedDictionary(gocv.ArucoDictAprilTag_36h11)
	p.detector = gocv.NewArucoDetectorWithParams(dict, gocv.NewArucoDetectorParameters())
	p.started = true
}

// cornersToRect returns the axis-aligned bounding box of marker corners.
func cornersToRect(corners []gocv.Point2f) image.Rectangle {
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		if c.X < minX {
			minX = c.X
		}
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	return image.Rect(int(minX), int(minY), int(maxX), int(maxY))
}
