// Package export saves captured frames as image files.
package export

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/screenrec/screenrec/internal/capture"
)

var ErrEmptyFrame = errors.New("export: frame holds no pixels")

// SavePNG writes one frame to path as a PNG image.
func SavePNG(path string, f *capture.Frame) error {
	if f == nil || f.Empty() {
		return ErrEmptyFrame
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := png.Encode(file, f.ToRGBA(nil)); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// TimestampedName builds a filename like "screenshot_20260829_153045.png".
func TimestampedName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s%s", prefix, time.Now().Format("20060102_150405"), ext)
}
