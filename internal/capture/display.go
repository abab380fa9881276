package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// DisplaySource captures the desktop through the OS screenshot APIs
// (X11 on Linux, GDI on Windows, CoreGraphics on macOS).
type DisplaySource struct {
	monitor int
	bounds  image.Rectangle
	ready   bool
}

// NewDisplaySource creates a capture source for the given monitor ID
// (VirtualDesktop captures all displays as one frame).
func NewDisplaySource(monitorID int) *DisplaySource {
	return &DisplaySource{monitor: monitorID}
}

func (s *DisplaySource) Initialize() error {
	if screenshot.NumActiveDisplays() == 0 {
		return ErrNoDisplays
	}
	if err := s.SelectMonitor(s.monitor); err != nil {
		return err
	}
	s.ready = true
	return nil
}

func (s *DisplaySource) CaptureFrame(dst *Frame) error {
	if !s.ready {
		return ErrNotInitialized
	}
	img, err := screenshot.CaptureRect(s.bounds)
	if err != nil {
		return fmt.Errorf("capture %dx%d at (%d,%d): %w",
			s.bounds.Dx(), s.bounds.Dy(), s.bounds.Min.X, s.bounds.Min.Y, err)
	}
	packRGB(img, dst)
	return nil
}

func (s *DisplaySource) Width() int  { return s.bounds.Dx() }
func (s *DisplaySource) Height() int { return s.bounds.Dy() }

// Monitors enumerates active displays. With more than one display the list
// starts with the virtual desktop entry (ID -1).
func (s *DisplaySource) Monitors() ([]Monitor, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplays
	}
	var monitors []Monitor
	if n > 1 {
		union := virtualBounds(n)
		monitors = append(monitors, Monitor{
			ID:     VirtualDesktop,
			Name:   "All Displays",
			X:      union.Min.X,
			Y:      union.Min.Y,
			Width:  union.Dx(),
			Height: union.Dy(),
		})
	}
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		monitors = append(monitors, Monitor{
			ID:      i,
			Name:    fmt.Sprintf("Display %d", i+1),
			X:       b.Min.X,
			Y:       b.Min.Y,
			Width:   b.Dx(),
			Height:  b.Dy(),
			Primary: i == 0,
		})
	}
	return monitors, nil
}

func (s *DisplaySource) SelectMonitor(id int) error {
	n := screenshot.NumActiveDisplays()
	switch {
	case id == VirtualDesktop:
		s.bounds = virtualBounds(n)
	case id >= 0 && id < n:
		s.bounds = screenshot.GetDisplayBounds(id)
	default:
		return fmt.Errorf("monitor %d out of range (have %d displays)", id, n)
	}
	s.monitor = id
	return nil
}

func (s *DisplaySource) Shutdown() {
	s.ready = false
}

func virtualBounds(n int) image.Rectangle {
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union
}

// packRGB converts an RGBA screenshot to tightly packed RGB24 in dst.
func packRGB(img *image.RGBA, dst *Frame) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	dst.Alloc(w, h)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			out[x*3+0] = src[x*4+0]
			out[x*3+1] = src[x*4+1]
			out[x*3+2] = src[x*4+2]
		}
	}
}
