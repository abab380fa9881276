package capture

import (
	"errors"
	"fmt"
)

// VirtualDesktop selects the union of all displays instead of a single one.
const VirtualDesktop = -1

var (
	ErrNotInitialized = errors.New("capture source not initialized")
	ErrNoDisplays     = errors.New("no active displays found")
)

// Monitor describes one available display. ID -1 is the virtual desktop
// spanning every display.
type Monitor struct {
	ID      int
	Name    string
	X, Y    int
	Width   int
	Height  int
	Primary bool
}

// DisplayName formats the monitor for UI lists, e.g. "Display 1 (1920x1080)".
func (m Monitor) DisplayName() string {
	return fmt.Sprintf("%s (%dx%d)", m.Name, m.Width, m.Height)
}

// Source is a screen frame producer. Implementations are platform capture
// backends; the recording pipeline treats them as opaque frame sources.
type Source interface {
	Initialize() error
	// CaptureFrame fills dst with one RGB24 frame, resizing it as needed.
	CaptureFrame(dst *Frame) error
	Width() int
	Height() int
	Monitors() ([]Monitor, error)
	SelectMonitor(id int) error
	Shutdown()
}
