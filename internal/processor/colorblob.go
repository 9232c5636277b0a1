package processor

import (
	"gocv.io/x/gocv"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/config"
)

// ColorBlobParams configures one color blob processor.
type ColorBlobParams struct {
	// BlobName labels detections from this processor, e.g. "RedBlob".
	BlobName string

	// Thresholds are the per-channel BGR bounds for the target color.
	Thresholds config.ColorThresholds

	// Filter bounds the contours accepted as blobs.
	Filter config.ContourFilter
}

// ColorBlob finds regions matching a BGR color profile by thresholding
// the frame and filtering the resulting contours against the configured
// geometry bounds.
type ColorBlob struct {
	params ColorBlobParams
}

// NewColorBlob creates a ColorBlob processor with the given parameters.
func NewColorBlob(params ColorBlobParams) *ColorBlob {
	return &ColorBlob{params: params}
}

// Name returns the blob name this processor was configured with.
func (p *ColorBlob) Name() string {
	return p.params.BlobName
}

// Process thresholds the frame and returns one Detection per contour that
// passes the configured filter. Blob detections report confidence 1.0.
func (p *ColorBlob) Process(frame *gocv.Mat) ([]Detection, error) {
	src := *frame

	// Camera pipelines that hand over BGRA frames are reduced to BGR
	// before thresholding.
	converted := gocv.NewMat()
	defer converted.Close()
	if frame.Channels() == 4 {
		gocv.CvtColor(*frame, &converted, gocv.ColorBGRAToBGR)
		src = converted
	}

	mask := gocv.NewMat()
	defer mask.Close()

	t := p.params.Thresholds
	lower := gocv.NewScalar(t[0], t[2], t[4], 0)
	upper := gocv.NewScalar(t[1], t[3], t[5], 0)
	gocv.InRangeWithScalar(src, lower, upper, &mask)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var dets []Detection
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if !p.acceptContour(contour) {
			continue
		}
		dets = append(dets, Detection{
			Label:      p.params.BlobName,
			Confidence: 1.0,
			Box:        gocv.BoundingRect(contour),
		})
	}
	return dets, nil
}

// Close is a no-op; ColorBlob holds no native state between frames.
func (p *ColorBlob) Close() error {
	return nil
}

// acceptContour applies the configured geometry bounds to one contour.
func (p *ColorBlob) acceptContour(contour gocv.PointVector) bool {
	f := p.params.Filter

	area := gocv.ContourArea(contour)
	if area < f.MinArea {
		return false
	}

	perimeter := gocv.ArcLength(contour, true)
	if perimeter < f.MinPerimeter {
		return false
	}

	rect := gocv.BoundingRect(contour)
	width := float64(rect.Dx())
	height := float64(rect.Dy())
	if width < f.MinWidth || width > f.MaxWidth {
		return false
	}
	if height < f.MinHeight || height > f.MaxHeight {
		return false
	}

	if height > 0 {
		aspect := width / height
		if aspect < f.MinAspectRatio || aspect > f.MaxAspectRatio {
			return false
		}
	}

	approx := gocv.ApproxPolyDP(contour, 0.01*perimeter, true)
	vertices := float64(approx.Size())
	approx.Close()
	if vertices < f.MinVertices || vertices > f.MaxVertices {
		return false
	}

	hull := gocv.NewMat()
	gocv.ConvexHull(contour, &hull, false, true)
	hullPoints := gocv.NewPointVectorFromMat(hull)
	hullArea := gocv.ContourArea(hullPoints)
	hullPoints.Close()
	hull.Close()
	if hullArea > 0 {
		solidity := area / hullArea * 100.0
		if solidity < f.MinSolidity || solidity > f.MaxSolidity {
			return false
		}
	}

	return true
}
