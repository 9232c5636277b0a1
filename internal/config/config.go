// Package config holds the static vision configuration for the robot.
// All values are competition constants fixed before a match; nothing here
// is mutated at runtime.
package config

// Preferences selects which vision features are built for a session.
type Preferences struct {
	// UseAprilTagVision builds the fiducial marker processor.
	UseAprilTagVision bool

	// UseColorBlobVision builds both the red and blue blob processors.
	UseColorBlobVision bool

	// UseTensorFlowVision builds the neural object detection processor.
	UseTensorFlowVision bool

	// UseWebcam selects the named USB webcam instead of a builtin camera.
	UseWebcam bool

	// UseBuiltinCamBack selects the back builtin camera when UseWebcam
	// is false; otherwise the front camera is used.
	UseBuiltinCamBack bool

	// ShowVisionView enables the local preview of annotated frames.
	ShowVisionView bool
}

// LensIntrinsics holds the webcam calibration used for marker bearing.
type LensIntrinsics struct {
	Fx float64
	Fy float64
	Cx float64
	Cy float64
}

// ContourFilter bounds accepted color blob contours. Solidity is in
// percent (0-100), aspect ratio is width/height.
type ContourFilter struct {
	MinArea        float64
	MinPerimeter   float64
	MinWidth       float64
	MaxWidth       float64
	MinHeight      float64
	MaxHeight      float64
	MinSolidity    float64
	MaxSolidity    float64
	MinVertices    float64
	MaxVertices    float64
	MinAspectRatio float64
	MaxAspectRatio float64
}

// ColorThresholds holds min/max bounds per BGR channel, in channel order
// {Bmin, Bmax, Gmin, Gmax, Rmin, Rmax}.
type ColorThresholds [6]float64

// Params is the full vision configuration passed to vision.New. It is a
// value type: the facade reads it once at construction and never writes it.
type Params struct {
	Preferences Preferences

	// Camera selection and geometry.
	WebcamName  string
	ImageWidth  int
	ImageHeight int
	Intrinsics  LensIntrinsics

	// Color blob processors.
	RedThresholds  ColorThresholds
	BlueThresholds ColorThresholds
	BlobFilter     ContourFilter

	// Neural object detection.
	ModelAsset    string
	ModelConfig   string
	TargetLabels  []string
	MinConfidence float64
}

// Default hardware names and camera geometry.
const (
	WebcamName  = "Webcam 1"
	ImageWidth  = 640
	ImageHeight = 480
)

// DefaultParams returns the competition constants for the current season.
func DefaultParams() Params {
	return Params{
		WebcamName:  WebcamName,
		ImageWidth:  ImageWidth,
		ImageHeight: ImageHeight,
		Intrinsics: LensIntrinsics{
			// Logitech C920 at 640x480.
			Fx: 622.001,
			Fy: 622.001,
			Cx: 319.803,
			Cy: 241.251,
		},
		RedThresholds:  ColorThresholds{100.0, 255.0, 0.0, 100.0, 0.0, 60.0},
		BlueThresholds: ColorThresholds{0.0, 60.0, 0.0, 100.0, 100.0, 255.0},
		BlobFilter: ContourFilter{
			MinArea:        1000.0,
			MinPerimeter:   100.0,
			MinWidth:       10.0,
			MaxWidth:       1000.0,
			MinHeight:      10.0,
			MaxHeight:      1000.0,
			MinSolidity:    0.0,
			MaxSolidity:    100.0,
			MinVertices:    0.0,
			MaxVertices:    1000.0,
			MinAspectRatio: 0.0,
			MaxAspectRatio: 10.0,
		},
		ModelAsset:    "models/game_object.onnx",
		TargetLabels:  []string{"Pixel"},
		MinConfidence: 0.75,
	}
}
