// Package record runs the capture/record loop: it pulls frames from a
// capture source on its own goroutine, publishes them for preview, and
// optionally streams them to a video encoder sink.
package record

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/screenrec/screenrec/internal/capture"
	"github.com/screenrec/screenrec/internal/encoder"
	"github.com/screenrec/screenrec/internal/exchange"
	"github.com/screenrec/screenrec/internal/scale"
)

// DefaultFPS is the pacing target used when no recording session is active
// and no other default was configured.
const DefaultFPS = 30

var (
	ErrAlreadyRunning   = errors.New("record: capture loop already running")
	ErrNotConfigured    = errors.New("record: capture source and exchange are required")
	ErrAlreadyRecording = errors.New("record: recording already in progress")
	ErrNoSource         = errors.New("record: no capture source attached")
)

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopping
)

// session holds the state of one in-progress file recording.
type session struct {
	cfg     encoder.Config
	sink    encoder.VideoSink
	scaling bool
	err     error
}

// Recorder owns the producer goroutine. All control methods are safe to
// call from other goroutines; the loop itself owns the capture and scale
// scratch buffers exclusively.
type Recorder struct {
	mu         sync.Mutex
	state      state
	src        capture.Source
	ex         *exchange.Exchange
	sess       *session
	stopCh     chan struct{}
	done       chan struct{} // closed by the loop goroutine on exit
	defaultFPS int
	newSink    func() encoder.VideoSink

	fpsBits atomic.Uint64 // rolling FPS estimate as float64 bits
}

// New creates an idle recorder pacing to defaultFPS outside of recordings
// (0 uses DefaultFPS).
func New(defaultFPS int) *Recorder {
	if defaultFPS <= 0 {
		defaultFPS = DefaultFPS
	}
	return &Recorder{
		defaultFPS: defaultFPS,
		newSink:    func() encoder.VideoSink { return encoder.NewFFmpegSink() },
	}
}

// Start spawns the capture loop. Fails if the loop is already running or
// either collaborator is missing.
func (r *Recorder) Start(src capture.Source, ex *exchange.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateIdle {
		return ErrAlreadyRunning
	}
	if src == nil || ex == nil {
		return ErrNotConfigured
	}

	r.src = src
	r.ex = ex
	r.stopCh = make(chan struct{})
	r.done = make(chan struct{})
	r.state = stateRunning
	go r.loop(r.stopCh, r.done)

	log.Printf("capture loop started (%dx%d)", src.Width(), src.Height())
	return nil
}

// Stop signals the loop to exit and blocks until it has. Any active
// recording is finalized first. Stopping an idle recorder is a no-op; a
// concurrent Stop also waits for the loop to be fully joined.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if r.state == stateIdle {
		r.mu.Unlock()
		return
	}
	if r.state == stateStopping {
		done := r.done
		r.mu.Unlock()
		<-done
		return
	}
	r.state = stateStopping
	stopCh, done := r.stopCh, r.done
	r.mu.Unlock()

	r.StopRecording()
	close(stopCh)
	<-done

	r.mu.Lock()
	r.state = stateIdle
	r.mu.Unlock()
	log.Printf("capture loop stopped")
}

// StartRecording begins encoding to path at the given frame rate. A zero
// target dimension means native capture resolution; any other target that
// differs from the capture size enables scaling.
func (r *Recorder) StartRecording(path string, fps, targetW, targetH int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sess != nil {
		return ErrAlreadyRecording
	}
	if r.src == nil {
		return ErrNoSource
	}

	capW, capH := r.src.Width(), r.src.Height()
	w, h := capW, capH
	scaling := false
	if targetW > 0 && targetH > 0 {
		w, h = targetW, targetH
		scaling = w != capW || h != capH
	}

	cfg := encoder.Config{Width: w, Height: h, FPS: fps, Output: path}
	sink := r.newSink()
	if err := sink.Initialize(cfg); err != nil {
		return fmt.Errorf("start recording: %w", err)
	}
	r.sess = &session{cfg: cfg, sink: sink, scaling: scaling}

	if scaling {
		log.Printf("recording started: %s (%dx%d @ %d fps, scaled from %dx%d)", path, w, h, fps, capW, capH)
	} else {
		log.Printf("recording started: %s (%dx%d @ %d fps)", path, w, h, fps)
	}
	return nil
}

// StopRecording finalizes the active session. Idempotent: stopping while
// not recording is a no-op.
func (r *Recorder) StopRecording() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sess == nil {
		return
	}
	if err := r.sess.sink.Finalize(); err != nil {
		log.Printf("finalize recording: %v", err)
	}
	log.Printf("recording stopped: %s", r.sess.cfg.Output)
	r.sess = nil
}

// IsRunning reports whether the capture loop is active.
func (r *Recorder) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateRunning
}

// IsRecording reports whether a recording session is active.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess != nil
}

// RecordingErr returns the error that poisoned the active session, if any.
// A failed session stops receiving frames but the capture loop keeps
// feeding the preview until StopRecording.
func (r *Recorder) RecordingErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return nil
	}
	return r.sess.err
}

// FPS returns the current rolling frames-per-second estimate. Lock-free;
// safe to poll from the UI.
func (r *Recorder) FPS() float64 {
	return math.Float64frombits(r.fpsBits.Load())
}

func (r *Recorder) loop(stopCh, done chan struct{}) {
	defer close(done)

	scratch := &capture.Frame{}
	scaled := &capture.Frame{}
	frames := 0
	windowStart := time.Now()

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		iterStart := time.Now()

		if err := r.src.CaptureFrame(scratch); err != nil {
			// One bad capture is not fatal: skip publish and encode.
			log.Printf("capture frame: %v", err)
		} else {
			r.ex.Publish(scratch)
			r.forwardToSink(scratch, scaled)
			frames++
		}

		if elapsed := time.Since(windowStart); elapsed >= time.Second {
			r.fpsBits.Store(math.Float64bits(float64(frames) / elapsed.Seconds()))
			frames = 0
			windowStart = time.Now()
		}

		if remaining := r.targetInterval() - time.Since(iterStart); remaining > 0 {
			timer := time.NewTimer(remaining)
			select {
			case <-stopCh:
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}
}

// forwardToSink scales the captured frame if the session requires it and
// writes it to the encoder. A write failure poisons the session only: the
// preview must not die because recording failed.
func (r *Recorder) forwardToSink(src, scaled *capture.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sess == nil || r.sess.err != nil {
		return
	}

	data := src.Pix
	if r.sess.scaling {
		if err := scale.ScaleInto(src, scaled, r.sess.cfg.Width, r.sess.cfg.Height); err != nil {
			r.sess.err = err
			log.Printf("scale frame: %v, recording marked failed", err)
			return
		}
		data = scaled.Pix
	}

	if err := r.sess.sink.WriteFrame(data); err != nil {
		r.sess.err = err
		log.Printf("write frame: %v, recording marked failed (capture continues)", err)
	}
}

func (r *Recorder) targetInterval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	fps := r.defaultFPS
	if r.sess != nil && r.sess.cfg.FPS > 0 {
		fps = r.sess.cfg.FPS
	}
	return time.Second / time.Duration(fps)
}
