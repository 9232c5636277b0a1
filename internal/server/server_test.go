package server

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/capture"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/config"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/hardware"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/processor"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/store"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/vision"
)

func newTestVision(t *testing.T, useColorBlob bool) *vision.Vision {
	t.Helper()

	cfg := config.DefaultParams()
	cfg.Preferences = config.Preferences{
		UseColorBlobVision: useColorBlob,
		UseWebcam:          true,
	}

	registry := hardware.NewRegistry()
	registry.RegisterCamera(cfg.WebcamName, capture.NewMockCamera(nil, true))

	v, err := vision.New(cfg, registry, nil)
	if err != nil {
		t.Fatalf("vision.New() error = %v", err)
	}
	return v
}

func TestHandleHealth(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %s, want ok", body["status"])
	}
}

func TestHandleProcessors(t *testing.T) {
	v := newTestVision(t, true)
	srv := New(Config{Vision: v})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	getStatus := func(t *testing.T) map[string]bool {
		t.Helper()
		resp, err := ts.Client().Get(ts.URL + "/api/processors")
		if err != nil {
			t.Fatalf("GET /api/processors error = %v", err)
		}
		defer resp.Body.Close()

		var status map[string]bool
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		return status
	}

	t.Run("all disabled initially", func(t *testing.T) {
		for kind, enabled := range getStatus(t) {
			if enabled {
				t.Errorf("processor %s enabled before any toggle", kind)
			}
		}
	})

	t.Run("toggle present processor", func(t *testing.T) {
		resp, err := ts.Client().Post(
			ts.URL+"/api/processors/"+KindRedBlob,
			"application/json",
			strings.NewReader(`{"enabled": true}`),
		)
		if err != nil {
			t.Fatalf("POST toggle error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		status := getStatus(t)
		if !status[KindRedBlob] {
			t.Error("redblob not enabled after toggle")
		}
		if status[KindBlueBlob] {
			t.Error("toggling redblob also enabled blueblob")
		}
	})

	t.Run("toggle absent processor reports disabled", func(t *testing.T) {
		resp, err := ts.Client().Post(
			ts.URL+"/api/processors/"+KindAprilTag,
			"application/json",
			strings.NewReader(`{"enabled": true}`),
		)
		if err != nil {
			t.Fatalf("POST toggle error = %v", err)
		}
		defer resp.Body.Close()

		var body map[string]bool
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if body["enabled"] {
			t.Error("absent apriltag processor reported enabled")
		}
	})

	t.Run("unknown kind returns 404", func(t *testing.T) {
		resp, err := ts.Client().Post(
			ts.URL+"/api/processors/sonar",
			"application/json",
			strings.NewReader(`{"enabled": true}`),
		)
		if err != nil {
			t.Fatalf("POST toggle error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("invalid body returns 400", func(t *testing.T) {
		resp, err := ts.Client().Post(
			ts.URL+"/api/processors/"+KindRedBlob,
			"application/json",
			strings.NewReader(`not json`),
		)
		if err != nil {
			t.Fatalf("POST toggle error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})
}

func TestHandleDetections(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	session := &store.Session{OpMode: "Test"}
	if err := st.Sessions().Create(session); err != nil {
		t.Fatalf("create session error = %v", err)
	}

	dets := []processor.Detection{
		{Label: "Pixel", Confidence: 0.91, Box: image.Rect(10, 10, 60, 60)},
	}
	if err := st.Detections().Create(session.ID, "ObjectDetector", dets); err != nil {
		t.Fatalf("create detections error = %v", err)
	}

	srv := New(Config{Store: st, SessionID: session.ID})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/detections")
	if err != nil {
		t.Fatalf("GET /api/detections error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var records []store.DetectionRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Label != "Pixel" || records[0].Processor != "ObjectDetector" {
		t.Errorf("record = %+v, want Pixel from ObjectDetector", records[0])
	}
}
