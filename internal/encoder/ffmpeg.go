package encoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

const (
	probeTimeout = 5 * time.Second
	reapTimeout  = 5 * time.Second
)

var (
	ErrNotActive     = errors.New("encoder: sink not initialized")
	ErrInvalidConfig = errors.New("encoder: invalid configuration")
	ErrPartialWrite  = errors.New("encoder: partial write to ffmpeg pipe")
)

// FFmpegSink encodes video by spawning ffmpeg as a child process and piping
// raw RGB24 frames to its stdin. ffmpeg handles H.264/MP4 encoding and
// writes the finished container file.
//
// Requires ffmpeg in PATH.
type FFmpegSink struct {
	mu     sync.Mutex
	path   string
	cfg    Config
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	active bool
}

// NewFFmpegSink creates an inactive sink using the ffmpeg binary from PATH.
func NewFFmpegSink() *FFmpegSink {
	return &FFmpegSink{path: "ffmpeg"}
}

// NewFFmpegSinkPath creates a sink using an explicit encoder executable.
func NewFFmpegSinkPath(path string) *FFmpegSink {
	return &FFmpegSink{path: path}
}

// Initialize probes the encoder executable and spawns it configured to read
// a fixed-geometry raw stream from stdin. On any failure the sink stays
// inactive and no child process is left behind.
func (s *FFmpegSink) Initialize(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return fmt.Errorf("%w: already initialized", ErrInvalidConfig)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return fmt.Errorf("%w: geometry %dx%d @ %d fps", ErrInvalidConfig, cfg.Width, cfg.Height, cfg.FPS)
	}
	if cfg.Output == "" {
		return fmt.Errorf("%w: empty output path", ErrInvalidConfig)
	}

	if err := s.probe(); err != nil {
		return err
	}

	cmd := exec.Command(s.path, encodeArgs(cfg)...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("encoder stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("spawn %s: %w", s.path, err)
	}

	s.cfg = cfg
	s.cmd = cmd
	s.stdin = stdin
	s.active = true

	// Reap the child even if the owner forgets Finalize.
	runtime.SetFinalizer(s, func(sink *FFmpegSink) {
		_ = sink.Finalize()
	})

	log.Printf("encoder started: %dx%d @ %d fps -> %s", cfg.Width, cfg.Height, cfg.FPS, cfg.Output)
	return nil
}

// WriteFrame streams one raw frame to the child. A mismatched length is
// logged but still written: ffmpeg revalidates the stream geometry itself.
// A short write is a hard failure since it irrecoverably breaks the raw
// stream framing.
func (s *FFmpegSink) WriteFrame(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return ErrNotActive
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty frame", ErrInvalidConfig)
	}
	if expected := s.cfg.FrameBytes(); len(data) != expected {
		log.Printf("encoder: frame size mismatch: got %d bytes, expected %d", len(data), expected)
	}

	n, err := s.stdin.Write(data)
	if err != nil {
		return fmt.Errorf("write to ffmpeg pipe: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: %d of %d bytes", ErrPartialWrite, n, len(data))
	}
	return nil
}

// Finalize closes the child's stdin to signal end-of-stream and waits for
// it to exit. A non-zero exit code or a reap timeout is logged, not
// returned: once the pipe is closed the file is assumed complete.
// Finalizing an inactive sink is a no-op.
func (s *FFmpegSink) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil
	}
	s.active = false
	runtime.SetFinalizer(s, nil)

	if err := s.stdin.Close(); err != nil {
		log.Printf("encoder: close pipe: %v", err)
	}

	done := make(chan error, 1)
	go func(cmd *exec.Cmd) {
		done <- cmd.Wait()
	}(s.cmd)

	select {
	case err := <-done:
		var exit *exec.ExitError
		switch {
		case errors.As(err, &exit):
			log.Printf("encoder: ffmpeg exited with code %d", exit.ExitCode())
		case err != nil:
			log.Printf("encoder: wait: %v", err)
		}
	case <-time.After(reapTimeout):
		log.Printf("encoder: ffmpeg did not exit within %s, killing (output may be orphaned)", reapTimeout)
		_ = s.cmd.Process.Kill()
		<-done
	}

	log.Printf("video saved to %s", s.cfg.Output)
	s.cmd = nil
	s.stdin = nil
	return nil
}

func (s *FFmpegSink) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// probe runs a fast version check so a missing or broken encoder surfaces
// at Initialize, not mid-recording.
func (s *FFmpegSink) probe() error {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.path, "-version")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	err := cmd.Run()
	if ctx.Err() != nil {
		return fmt.Errorf("%s -version timed out after %s", s.path, probeTimeout)
	}
	if err != nil {
		return fmt.Errorf("%s not available (install ffmpeg to record video): %w", s.path, err)
	}
	return nil
}

// encodeArgs builds the fixed argument contract: raw RGB24 on stdin,
// constant-rate-factor H.264 in an MP4 container at cfg.Output.
func encodeArgs(cfg Config) []string {
	return []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-framerate", fmt.Sprintf("%d", cfg.FPS),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		cfg.Output,
	}
}
