package capture

import (
	"testing"
)

func TestNewWebcam(t *testing.T) {
	tests := []struct {
		name     string
		deviceID int
		wantFPS  int
	}{
		{
			name:     "default device",
			deviceID: 0,
			wantFPS:  15,
		},
		{
			name:     "device 1",
			deviceID: 1,
			wantFPS:  15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewWebcam(tt.deviceID, 640, 480)

			if cam == nil {
				t.Fatal("NewWebcam returned nil")
			}

			// Check default FPS through public interface
			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d (default)", got, tt.wantFPS)
			}

			// Camera should not be running initially
			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}
		})
	}
}

func TestNewWebcam_ZeroSizeFallsBackToDefaults(t *testing.T) {
	cam := NewWebcam(0, 0, 0)

	impl, ok := cam.(*cameraImpl)
	if !ok {
		t.Fatalf("NewWebcam returned %T, want *cameraImpl", cam)
	}
	if impl.width != DefaultWidth || impl.height != DefaultHeight {
		t.Errorf("resolution = %dx%d, want %dx%d",
			impl.width, impl.height, DefaultWidth, DefaultHeight)
	}
}

func TestNewBuiltinCamera(t *testing.T) {
	tests := []struct {
		name       string
		direction  BuiltinDirection
		wantDevice int
	}{
		{
			name:       "back maps to device 0",
			direction:  BuiltinBack,
			wantDevice: 0,
		},
		{
			name:       "front maps to device 1",
			direction:  BuiltinFront,
			wantDevice: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewBuiltinCamera(tt.direction, 640, 480)

			impl, ok := cam.(*cameraImpl)
			if !ok {
				t.Fatalf("NewBuiltinCamera returned %T, want *cameraImpl", cam)
			}
			if impl.deviceID != tt.wantDevice {
				t.Errorf("deviceID = %d, want %d", impl.deviceID, tt.wantDevice)
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewWebcam(0, 640, 480)

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{
			name:    "set to 10",
			fps:     10,
			wantFPS: 10,
		},
		{
			name:    "set to 30",
			fps:     30,
			wantFPS: 30,
		},
		{
			name:    "zero is ignored",
			fps:     0,
			wantFPS: 30,
		},
		{
			name:    "negative is ignored",
			fps:     -5,
			wantFPS: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)
			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_ReadFrameWhenClosed(t *testing.T) {
	cam := NewWebcam(0, 640, 480)

	if _, err := cam.ReadFrame(); err != ErrCameraNotOpen {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestBuiltinDirection_String(t *testing.T) {
	if got := BuiltinBack.String(); got != "back" {
		t.Errorf("BuiltinBack.String() = %s, want back", got)
	}
	if got := BuiltinFront.String(); got != "front" {
		t.Errorf("BuiltinFront.String() = %s, want front", got)
	}
}
