// Package preview renders the live capture feed in a window. It is the
// consuming side of the frame exchange: one non-blocking take per frame,
// skipped frames are simply never drawn.
package preview

import (
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/screenrec/screenrec/internal/capture"
	"github.com/screenrec/screenrec/internal/exchange"
	"github.com/screenrec/screenrec/internal/export"
	"github.com/screenrec/screenrec/internal/record"
)

// Options configures the preview window.
type Options struct {
	Title     string
	OutputDir string // recordings and screenshots land here
	RecordFPS int
	TargetW   int // recording size, 0 = native
	TargetH   int
}

// Window is an ebiten-based preview of the capture feed with recording
// hotkeys: R toggles recording, S saves a screenshot.
type Window struct {
	opts Options
	ex   *exchange.Exchange
	rec  *record.Recorder

	frame     capture.Frame
	haveFrame bool
	rgba      *image.RGBA
	texture   *ebiten.Image
	ticks     int
}

// New creates a preview window over the given exchange and recorder.
func New(opts Options, ex *exchange.Exchange, rec *record.Recorder) *Window {
	if opts.Title == "" {
		opts.Title = "screenrec"
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "./recordings"
	}
	if opts.RecordFPS <= 0 {
		opts.RecordFPS = record.DefaultFPS
	}
	return &Window{opts: opts, ex: ex, rec: rec}
}

// Run starts the ebiten game loop. Must be called from the main goroutine;
// returns when the window closes.
func (w *Window) Run() error {
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle(w.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(w)
}

// --- ebiten.Game interface ---

func (w *Window) Update() error {
	if w.ex.TakeLatest(&w.frame) {
		w.haveFrame = true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		w.toggleRecording()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		w.saveScreenshot()
	}

	w.ticks++
	if w.ticks%30 == 0 {
		w.refreshTitle()
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	if !w.haveFrame {
		return
	}

	w.rgba = w.frame.ToRGBA(w.rgba)
	if w.texture == nil ||
		w.texture.Bounds().Dx() != w.frame.Width ||
		w.texture.Bounds().Dy() != w.frame.Height {
		w.texture = ebiten.NewImage(w.frame.Width, w.frame.Height)
	}
	w.texture.WritePixels(w.rgba.Pix)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	fw, fh := float64(w.frame.Width), float64(w.frame.Height)
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), fw, fh)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(w.texture, op)
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// --- hotkey actions ---

func (w *Window) toggleRecording() {
	if w.rec.IsRecording() {
		w.rec.StopRecording()
		return
	}
	if err := os.MkdirAll(w.opts.OutputDir, 0o755); err != nil {
		log.Printf("create output dir: %v", err)
		return
	}
	path := filepath.Join(w.opts.OutputDir, export.TimestampedName("recording", ".mp4"))
	if err := w.rec.StartRecording(path, w.opts.RecordFPS, w.opts.TargetW, w.opts.TargetH); err != nil {
		log.Printf("start recording: %v", err)
	}
}

func (w *Window) saveScreenshot() {
	if !w.haveFrame {
		log.Printf("screenshot: no frame captured yet")
		return
	}
	if err := os.MkdirAll(w.opts.OutputDir, 0o755); err != nil {
		log.Printf("create output dir: %v", err)
		return
	}
	path := filepath.Join(w.opts.OutputDir, export.TimestampedName("screenshot", ".png"))
	if err := export.SavePNG(path, &w.frame); err != nil {
		log.Printf("save screenshot: %v", err)
		return
	}
	log.Printf("screenshot saved: %s", path)
}

func (w *Window) refreshTitle() {
	title := fmt.Sprintf("%s - %.1f fps", w.opts.Title, w.rec.FPS())
	if w.rec.IsRecording() {
		title += " [REC]"
		if err := w.rec.RecordingErr(); err != nil {
			title += " (failed)"
		}
	}
	ebiten.SetWindowTitle(title)
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
