package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/capture"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/config"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/hardware"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/processor"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/server"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/store"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/tray"
	"github.com/XBOT-FTC/2939-TRC-Lib/internal/vision"
)

func main() {
	fmt.Println("RoboVision - Robot Vision Test Rig")

	// Initialize the detection log
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".robovision")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dbDir, "detections.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	session := &store.Session{OpMode: "TestRig"}
	if err := st.Sessions().Create(session); err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	fmt.Printf("Logging detections to session %s\n", session.ID)

	cfg := config.DefaultParams()
	cfg.Preferences = config.Preferences{
		UseAprilTagVision:   true,
		UseColorBlobVision:  true,
		UseTensorFlowVision: true,
		UseWebcam:           true,
		ShowVisionView:      true,
	}

	registry := hardware.NewRegistry()
	registry.RegisterCamera(cfg.WebcamName,
		capture.NewWebcam(0, cfg.ImageWidth, cfg.ImageHeight))

	v, err := vision.New(cfg, registry, nil)
	if err != nil {
		log.Fatalf("Failed to build vision subsystem: %v", err)
	}

	srv := server.New(server.Config{
		Vision:    v,
		Store:     st,
		SessionID: session.ID,
	})

	trayApp := tray.New(v)

	// Fan detections out to the log, the dashboard and the tray.
	v.Mux().SetObserver(func(name string, dets []processor.Detection) {
		if err := st.Detections().Create(session.ID, name, dets); err != nil {
			log.Printf("Failed to log detections: %v", err)
		}
		if events := srv.Events(); events != nil {
			events.Publish(name, dets)
		}
		if len(dets) > 0 {
			trayApp.SetLastDetection(dets[0].Label)
		}
	})

	if err := v.Start(); err != nil {
		log.Fatalf("Failed to start vision: %v", err)
	}
	defer v.Close()

	addr := ":8080"
	fmt.Printf("Starting dashboard server on %s\n", addr)
	go func() {
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	trayApp.OnQuit(func() {
		if err := v.Close(); err != nil {
			log.Printf("Error closing vision: %v", err)
		}
	})
	trayApp.Run()
}
