package encoder

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// stubEncoder writes a shell script that answers the version probe and
// drains stdin, standing in for ffmpeg where tests must not depend on it.
func stubEncoder(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub encoder script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "stub-encoder")
	script := "#!/bin/sh\ncat >/dev/null\nexit 0\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInitializeRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero width", Config{Width: 0, Height: 720, FPS: 30, Output: "out.mp4"}},
		{"negative height", Config{Width: 1280, Height: -1, FPS: 30, Output: "out.mp4"}},
		{"zero fps", Config{Width: 1280, Height: 720, FPS: 0, Output: "out.mp4"}},
		{"empty output", Config{Width: 1280, Height: 720, FPS: 30, Output: ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewFFmpegSink()
			err := s.Initialize(tc.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
			if s.IsActive() {
				t.Error("sink active after failed Initialize")
			}
		})
	}
}

func TestInitializeMissingExecutable(t *testing.T) {
	s := NewFFmpegSinkPath(filepath.Join(t.TempDir(), "no-such-encoder"))
	err := s.Initialize(Config{Width: 640, Height: 480, FPS: 30, Output: filepath.Join(t.TempDir(), "out.mp4")})
	if err == nil {
		t.Fatal("Initialize succeeded with a non-existent executable")
	}
	if s.IsActive() {
		t.Error("sink active after probe failure")
	}
}

func TestWriteFrameInactive(t *testing.T) {
	s := NewFFmpegSink()
	if err := s.WriteFrame([]byte{1, 2, 3}); !errors.Is(err, ErrNotActive) {
		t.Errorf("err = %v, want ErrNotActive", err)
	}
}

func TestWriteFrameRejectsEmptyInput(t *testing.T) {
	s := NewFFmpegSinkPath(stubEncoder(t))
	cfg := Config{Width: 2, Height: 2, FPS: 30, Output: filepath.Join(t.TempDir(), "out.mp4")}
	if err := s.Initialize(cfg); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer s.Finalize()

	if err := s.WriteFrame(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil frame: err = %v, want ErrInvalidConfig", err)
	}
	if err := s.WriteFrame([]byte{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero-length frame: err = %v, want ErrInvalidConfig", err)
	}
	// The rejection must not poison the stream: a proper frame still writes.
	if err := s.WriteFrame(make([]byte, cfg.FrameBytes())); err != nil {
		t.Errorf("WriteFrame after rejected input: %v", err)
	}
	if !s.IsActive() {
		t.Error("sink deactivated by rejected input")
	}
}

func TestFinalizeInactiveIsNoop(t *testing.T) {
	s := NewFFmpegSink()
	if err := s.Finalize(); err != nil {
		t.Errorf("Finalize on inactive sink: %v", err)
	}
	if err := s.Finalize(); err != nil {
		t.Errorf("second Finalize: %v", err)
	}
}

func TestEncodeArgs(t *testing.T) {
	args := encodeArgs(Config{Width: 1280, Height: 720, FPS: 30, Output: "/tmp/cap.mp4"})
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-f rawvideo",
		"-pixel_format rgb24",
		"-video_size 1280x720",
		"-framerate 30",
		"-i pipe:0",
		"-c:v libx264",
		"-pix_fmt yuv420p",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "/tmp/cap.mp4" {
		t.Errorf("output path must be the final argument, got %q", args[len(args)-1])
	}
	if args[0] != "-y" {
		t.Errorf("expected -y overwrite flag first, got %q", args[0])
	}
}

func TestConfigFrameBytes(t *testing.T) {
	c := Config{Width: 4, Height: 3}
	if got := c.FrameBytes(); got != 36 {
		t.Errorf("FrameBytes = %d, want 36", got)
	}
}
