package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/screenrec/screenrec/internal/capture"
	"github.com/screenrec/screenrec/internal/config"
	"github.com/screenrec/screenrec/internal/exchange"
	"github.com/screenrec/screenrec/internal/export"
	"github.com/screenrec/screenrec/internal/record"
	"github.com/screenrec/screenrec/internal/scale"
)

func main() {
	cfg := config.ParseHeadlessFlags()

	src := capture.NewDisplaySource(cfg.Monitor)
	if err := src.Initialize(); err != nil {
		log.Fatalf("capture init: %v", err)
	}
	defer src.Shutdown()

	ex := exchange.New()
	rec := record.New(cfg.FPS)
	if err := rec.Start(src, ex); err != nil {
		log.Fatalf("capture start: %v", err)
	}
	defer rec.Stop()

	output := cfg.Output
	if output == "" {
		output = export.TimestampedName("recording", ".mp4")
	}

	targetW, targetH := 0, 0
	if cfg.MaxW > 0 && cfg.MaxH > 0 {
		targetW, targetH = scale.FitDimensions(src.Width(), src.Height(), cfg.MaxW, cfg.MaxH)
		if targetW == 0 || targetH == 0 {
			log.Fatalf("cannot fit %dx%d capture into %dx%d: bounds must allow at least 2x2",
				src.Width(), src.Height(), cfg.MaxW, cfg.MaxH)
		}
	}

	if err := rec.StartRecording(output, cfg.FPS, targetW, targetH); err != nil {
		log.Fatalf("start recording: %v", err)
	}
	log.Printf("Recording %s at %d fps", output, cfg.FPS)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Duration > 0 {
		select {
		case <-time.After(cfg.Duration):
			log.Printf("Duration %s elapsed", cfg.Duration)
		case <-sigCh:
			log.Println("Interrupted")
		}
	} else {
		<-sigCh
		log.Println("Interrupted")
	}

	if err := rec.RecordingErr(); err != nil {
		log.Printf("recording ended with error: %v", err)
	}
	rec.StopRecording()
	rec.Stop()
	log.Printf("Saved %s", output)
}
