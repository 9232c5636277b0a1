// Package vision wires the season's vision processors to the camera
// multiplexer and exposes per-processor enable/disable toggles. It builds
// AprilTag, red/blue color blob and neural object detection processors
// from static configuration; the detection work itself happens inside the
// processor implementations.
package vision

import (
	"fmt"
	"log"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/capture"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/config"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/hardware"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/processor"
)

const moduleName = "Vision"

// Vision owns the vision processors built for the current session and the
// multiplexer that feeds them frames. Adapters for features disabled in
// the preferences stay nil; every toggle and query tolerates a nil adapter
// by treating it as absent.
type Vision struct {
	tracer *log.Logger

	aprilTag       *processor.AprilTag
	redBlob        *processor.ColorBlob
	blueBlob       *processor.ColorBlob
	objectDetector *processor.ObjectDetector

	mux *capture.Mux
}

// New builds the vision subsystem from the given configuration. For each
// enabled preference flag it constructs the corresponding processor and
// registers it with the multiplexer. When UseWebcam is set the camera is
// resolved by name from the hardware registry; a missing name fails
// construction with an error wrapping hardware.ErrNotFound. All
// processors start disabled; callers opt in via the toggles.
func New(cfg config.Params, registry *hardware.Registry, tracer *log.Logger) (*Vision, error) {
	if tracer == nil {
		tracer = log.Default()
	}
	v := &Vision{tracer: tracer}

	var procs []processor.Processor

	if cfg.Preferences.UseAprilTagVision {
		tracer.Printf("%s: Starting AprilTagVision...", moduleName)
		v.aprilTag = processor.NewAprilTag(processor.AprilTagParams{
			Intrinsics: cfg.Intrinsics,
			OutputUnit: processor.Degrees,
		})
		procs = append(procs, v.aprilTag)
	}

	if cfg.Preferences.UseColorBlobVision {
		tracer.Printf("%s: Starting ColorBlobVision...", moduleName)
		v.redBlob = processor.NewColorBlob(processor.ColorBlobParams{
			BlobName:   "RedBlob",
			Thresholds: cfg.RedThresholds,
			Filter:     cfg.BlobFilter,
		})
		procs = append(procs, v.redBlob)

		v.blueBlob = processor.NewColorBlob(processor.ColorBlobParams{
			BlobName:   "BlueBlob",
			Thresholds: cfg.BlueThresholds,
			Filter:     cfg.BlobFilter,
		})
		procs = append(procs, v.blueBlob)
	}

	if cfg.Preferences.UseTensorFlowVision {
		tracer.Printf("%s: Starting TensorFlowVision...", moduleName)
		v.objectDetector = processor.NewObjectDetector(processor.ObjectDetectorParams{
			ModelAsset:    cfg.ModelAsset,
			ModelConfig:   cfg.ModelConfig,
			TargetLabels:  cfg.TargetLabels,
			MinConfidence: cfg.MinConfidence,
		})
		procs = append(procs, v.objectDetector)
	}

	var camera capture.Camera
	if cfg.Preferences.UseWebcam {
		cam, err := registry.Camera(cfg.WebcamName)
		if err != nil {
			return nil, fmt.Errorf("vision: %w", err)
		}
		camera = cam
	} else {
		direction := capture.BuiltinFront
		if cfg.Preferences.UseBuiltinCamBack {
			direction = capture.BuiltinBack
		}
		camera = capture.NewBuiltinCamera(direction, cfg.ImageWidth, cfg.ImageHeight)
	}

	v.mux = capture.NewMux(camera, cfg.Preferences.ShowVisionView, procs)

	// Disable all vision processors until they are needed.
	v.SetAprilTagEnabled(false)
	v.SetRedBlobEnabled(false)
	v.SetBlueBlobEnabled(false)
	v.SetObjectDetectionEnabled(false)

	return v, nil
}

// SetAprilTagEnabled enables or disables AprilTag vision. No-op when the
// processor was not built.
func (v *Vision) SetAprilTagEnabled(enabled bool) {
	if v.aprilTag != nil {
		v.mux.SetProcessorEnabled(v.aprilTag, enabled)
	}
}

// SetRedBlobEnabled enables or disables red blob vision. No-op when the
// processor was not built.
func (v *Vision) SetRedBlobEnabled(enabled bool) {
	if v.redBlob != nil {
		v.mux.SetProcessorEnabled(v.redBlob, enabled)
	}
}

// SetBlueBlobEnabled enables or disables blue blob vision. No-op when the
// processor was not built.
func (v *Vision) SetBlueBlobEnabled(enabled bool) {
	if v.blueBlob != nil {
		v.mux.SetProcessorEnabled(v.blueBlob, enabled)
	}
}

// SetObjectDetectionEnabled enables or disables neural object detection.
// No-op when the processor was not built.
func (v *Vision) SetObjectDetectionEnabled(enabled bool) {
	if v.objectDetector != nil {
		v.mux.SetProcessorEnabled(v.objectDetector, enabled)
	}
}

// IsAprilTagEnabled reports whether AprilTag vision is enabled. False
// when the processor was not built.
func (v *Vision) IsAprilTagEnabled() bool {
	return v.aprilTag != nil && v.mux.IsProcessorEnabled(v.aprilTag)
}

// IsRedBlobEnabled reports whether red blob vision is enabled. False when
// the processor was not built.
func (v *Vision) IsRedBlobEnabled() bool {
	return v.redBlob != nil && v.mux.IsProcessorEnabled(v.redBlob)
}

// IsBlueBlobEnabled reports whether blue blob vision is enabled. False
// when the processor was not built.
func (v *Vision) IsBlueBlobEnabled() bool {
	return v.blueBlob != nil && v.mux.IsProcessorEnabled(v.blueBlob)
}

// IsObjectDetectionEnabled reports whether neural object detection is
// enabled. False when the processor was not built.
func (v *Vision) IsObjectDetectionEnabled() bool {
	return v.objectDetector != nil && v.mux.IsProcessorEnabled(v.objectDetector)
}

// AprilTag returns the AprilTag processor, or nil if not built.
func (v *Vision) AprilTag() *processor.AprilTag {
	return v.aprilTag
}

// RedBlob returns the red blob processor, or nil if not built.
func (v *Vision) RedBlob() *processor.ColorBlob {
	return v.redBlob
}

// BlueBlob returns the blue blob processor, or nil if not built.
func (v *Vision) BlueBlob() *processor.ColorBlob {
	return v.blueBlob
}

// ObjectDetector returns the neural detection processor, or nil if not built.
func (v *Vision) ObjectDetector() *processor.ObjectDetector {
	return v.objectDetector
}

// Mux returns the camera multiplexer.
func (v *Vision) Mux() *capture.Mux {
	return v.mux
}

// Start opens the camera and begins dispatching frames.
func (v *Vision) Start() error {
	return v.mux.Start()
}

// Close stops the capture loop and releases every processor that was
// built for this session.
func (v *Vision) Close() error {
	err := v.mux.Close()

	for _, p := range v.mux.Processors() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
