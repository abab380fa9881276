package encoder

// Config describes one raw RGB24 video stream fed to a sink.
type Config struct {
	Width  int
	Height int
	FPS    int
	Output string
}

// FrameBytes returns the expected byte count of one raw frame.
func (c Config) FrameBytes() int {
	return c.Width * c.Height * 3
}

// VideoSink turns a stream of raw RGB24 frames into a finished video file.
// Frames must arrive in capture order; the sink does no pacing of its own.
type VideoSink interface {
	Initialize(cfg Config) error
	WriteFrame(data []byte) error
	Finalize() error
	IsActive() bool
}
