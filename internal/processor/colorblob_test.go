package processor

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/config"
)

func testBlobParams(name string) ColorBlobParams {
	return ColorBlobParams{
		BlobName: name,
		// B 100-255, G 0-100, R 0-60
		Thresholds: config.ColorThresholds{100.0, 255.0, 0.0, 100.0, 0.0, 60.0},
		Filter:     config.DefaultParams().BlobFilter,
	}
}

// blobFrame returns a black frame with one filled rectangle of the given
// color. The caller closes the Mat.
func blobFrame(rect image.Rectangle, c color.RGBA) gocv.Mat {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	gocv.Rectangle(&frame, rect, c, -1)
	return frame
}

func TestColorBlob_Process(t *testing.T) {
	// BGR (200, 50, 30) sits inside the test thresholds.
	inRange := color.RGBA{R: 30, G: 50, B: 200, A: 255}

	t.Run("matching blob is detected", func(t *testing.T) {
		frame := blobFrame(image.Rect(100, 100, 220, 220), inRange)
		defer frame.Close()

		p := NewColorBlob(testBlobParams("TestBlob"))
		dets, err := p.Process(&frame)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}

		if len(dets) != 1 {
			t.Fatalf("got %d detections, want 1", len(dets))
		}
		if dets[0].Label != "TestBlob" {
			t.Errorf("Label = %s, want TestBlob", dets[0].Label)
		}
		if dets[0].Confidence != 1.0 {
			t.Errorf("Confidence = %f, want 1.0", dets[0].Confidence)
		}

		// The bounding box should roughly cover the drawn rectangle.
		want := image.Rect(100, 100, 220, 220)
		if !dets[0].Box.Overlaps(want) {
			t.Errorf("Box = %v, does not overlap drawn rect %v", dets[0].Box, want)
		}
	})

	t.Run("out-of-range color is ignored", func(t *testing.T) {
		// BGR (10, 200, 200) fails the blue channel minimum.
		outOfRange := color.RGBA{R: 200, G: 200, B: 10, A: 255}
		frame := blobFrame(image.Rect(100, 100, 220, 220), outOfRange)
		defer frame.Close()

		p := NewColorBlob(testBlobParams("TestBlob"))
		dets, err := p.Process(&frame)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(dets) != 0 {
			t.Errorf("got %d detections, want 0", len(dets))
		}
	})

	t.Run("blob below minimum area is filtered", func(t *testing.T) {
		// 20x20 = 400 px, under the 1000 px minimum area.
		frame := blobFrame(image.Rect(100, 100, 120, 120), inRange)
		defer frame.Close()

		p := NewColorBlob(testBlobParams("TestBlob"))
		dets, err := p.Process(&frame)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(dets) != 0 {
			t.Errorf("got %d detections, want 0", len(dets))
		}
	})

	t.Run("empty frame yields nothing", func(t *testing.T) {
		frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		defer frame.Close()

		p := NewColorBlob(testBlobParams("TestBlob"))
		dets, err := p.Process(&frame)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(dets) != 0 {
			t.Errorf("got %d detections, want 0", len(dets))
		}
	})
}
