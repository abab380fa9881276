package config

import (
	"flag"
	"time"
)

// Config holds all runtime configuration for the preview app.
type Config struct {
	Monitor     int
	FPS         int
	OutputDir   string
	RecordW     int
	RecordH     int
	StreamAddr  string
	StreamFPS   int
	JPEGQuality int
}

// ParseFlags parses flags for the screenrec binary.
func ParseFlags() *Config {
	cfg := &Config{}
	flag.IntVar(&cfg.Monitor, "monitor", 0, "Monitor ID to capture (-1 = all displays)")
	flag.IntVar(&cfg.FPS, "fps", 30, "Target frames per second")
	flag.StringVar(&cfg.OutputDir, "output", "./recordings", "Directory for recordings and screenshots")
	flag.IntVar(&cfg.RecordW, "record-width", 0, "Recording width (0 = native)")
	flag.IntVar(&cfg.RecordH, "record-height", 0, "Recording height (0 = native)")
	flag.StringVar(&cfg.StreamAddr, "listen", "", "Serve preview over websocket at this address (empty = off)")
	flag.IntVar(&cfg.StreamFPS, "stream-fps", 15, "Preview stream frame rate")
	flag.IntVar(&cfg.JPEGQuality, "stream-quality", 70, "Preview stream JPEG quality (1-100)")
	flag.Parse()
	return cfg
}

// HeadlessConfig holds configuration for the headless recorder binary.
type HeadlessConfig struct {
	Monitor  int
	FPS      int
	Output   string
	Duration time.Duration
	MaxW     int
	MaxH     int
}

// ParseHeadlessFlags parses flags for the screenrec-headless binary.
func ParseHeadlessFlags() *HeadlessConfig {
	cfg := &HeadlessConfig{}
	flag.IntVar(&cfg.Monitor, "monitor", 0, "Monitor ID to capture (-1 = all displays)")
	flag.IntVar(&cfg.FPS, "fps", 30, "Recording frames per second")
	flag.StringVar(&cfg.Output, "o", "", "Output file path (empty = timestamped name in cwd)")
	flag.DurationVar(&cfg.Duration, "duration", 0, "Stop after this long (0 = until interrupted)")
	flag.IntVar(&cfg.MaxW, "max-width", 0, "Fit recording within this width, keeping aspect (0 = native)")
	flag.IntVar(&cfg.MaxH, "max-height", 0, "Fit recording within this height, keeping aspect (0 = native)")
	flag.Parse()
	return cfg
}
