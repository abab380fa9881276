package encoder

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/screenrec/screenrec/internal/capture"
)

// JPEGEncoder compresses frames as JPEG for the preview stream.
type JPEGEncoder struct {
	quality int
	rgba    *image.RGBA
}

// NewJPEGEncoder creates a JPEG encoder with the given quality (1-100).
func NewJPEGEncoder(quality int) *JPEGEncoder {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return &JPEGEncoder{quality: quality}
}

// Encode compresses one RGB24 frame. The intermediate RGBA image is reused
// between calls; Encode is not safe for concurrent use.
func (e *JPEGEncoder) Encode(f *capture.Frame) ([]byte, error) {
	e.rgba = f.ToRGBA(e.rgba)

	var buf bytes.Buffer
	buf.Grow(256 * 1024) // pre-allocate 256KB
	if err := jpeg.Encode(&buf, e.rgba, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
