package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/screenrec/screenrec/internal/capture"
	"github.com/screenrec/screenrec/internal/config"
	"github.com/screenrec/screenrec/internal/exchange"
	"github.com/screenrec/screenrec/internal/preview"
	"github.com/screenrec/screenrec/internal/record"
	"github.com/screenrec/screenrec/internal/stream"
)

func main() {
	cfg := config.ParseFlags()

	log.Printf("screenrec starting")
	log.Printf("  Monitor:  %d", cfg.Monitor)
	log.Printf("  FPS:      %d", cfg.FPS)
	log.Printf("  Output:   %s", cfg.OutputDir)

	src := capture.NewDisplaySource(cfg.Monitor)
	if err := src.Initialize(); err != nil {
		log.Fatalf("capture init: %v", err)
	}
	defer src.Shutdown()

	if monitors, err := src.Monitors(); err == nil {
		for _, m := range monitors {
			log.Printf("  %s", m.DisplayName())
		}
	}
	log.Printf("Capturing %dx%d", src.Width(), src.Height())

	ex := exchange.New()
	rec := record.New(cfg.FPS)
	if err := rec.Start(src, ex); err != nil {
		log.Fatalf("capture start: %v", err)
	}
	defer rec.Stop()

	// Optional websocket preview stream.
	if cfg.StreamAddr != "" {
		srv := stream.NewServer(cfg.StreamAddr, ex, cfg.StreamFPS, cfg.JPEGQuality)
		if err := srv.Start(); err != nil {
			log.Fatalf("stream server: %v", err)
		}
		defer srv.Stop()
		log.Printf("Streaming preview at ws://%s/ws", srv.Addr())
	}

	// Stop cleanly on SIGINT/SIGTERM even if the window never closes.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		rec.StopRecording()
		rec.Stop()
		os.Exit(0)
	}()

	win := preview.New(preview.Options{
		Title:     fmt.Sprintf("screenrec - monitor %d", cfg.Monitor),
		OutputDir: cfg.OutputDir,
		RecordFPS: cfg.FPS,
		TargetW:   cfg.RecordW,
		TargetH:   cfg.RecordH,
	}, ex, rec)

	if err := win.Run(); err != nil {
		log.Fatalf("preview: %v", err)
	}

	rec.StopRecording()
}
