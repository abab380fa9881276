package encoder

import (
	"bytes"
	"image/jpeg"
	"testing"

	"github.com/screenrec/screenrec/internal/capture"
)

func solidFrame(w, h int, r, g, b byte) *capture.Frame {
	f := &capture.Frame{}
	f.Alloc(w, h)
	for i := 0; i < len(f.Pix); i += capture.BytesPerPixel {
		f.Pix[i] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
	}
	return f
}

func TestJPEGEncodeDecodes(t *testing.T) {
	enc := NewJPEGEncoder(90)
	f := solidFrame(16, 8, 200, 50, 50)

	data, err := enc.Encode(f)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 16 || got.Dy() != 8 {
		t.Errorf("decoded bounds = %v, want 16x8", got)
	}
}

func TestJPEGEncoderReusesScratch(t *testing.T) {
	enc := NewJPEGEncoder(80)
	f := solidFrame(10, 10, 0, 255, 0)

	if _, err := enc.Encode(f); err != nil {
		t.Fatalf("first Encode: %v", err)
	}
	scratch := enc.rgba
	if _, err := enc.Encode(f); err != nil {
		t.Fatalf("second Encode: %v", err)
	}
	if enc.rgba != scratch {
		t.Error("scratch RGBA reallocated for same-size frame")
	}
}

func TestJPEGQualityClamped(t *testing.T) {
	if q := NewJPEGEncoder(0).quality; q != 1 {
		t.Errorf("quality 0 clamped to %d, want 1", q)
	}
	if q := NewJPEGEncoder(250).quality; q != 100 {
		t.Errorf("quality 250 clamped to %d, want 100", q)
	}
}
