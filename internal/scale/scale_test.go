package scale

import (
	"bytes"
	"errors"
	"testing"

	"github.com/screenrec/screenrec/internal/capture"
)

func solidFrame(w, h int, r, g, b byte) *capture.Frame {
	f := &capture.Frame{}
	f.Alloc(w, h)
	for i := 0; i < len(f.Pix); i += 3 {
		f.Pix[i] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
	}
	return f
}

// Bilinear filtering of a constant field is the identity: any target size
// must come back entirely the same color.
func TestScaleUniformColor(t *testing.T) {
	src := solidFrame(16, 9, 200, 100, 50)
	for _, size := range [][2]int{{4, 4}, {16, 9}, {33, 17}, {1, 1}, {64, 64}} {
		dst, err := Scale(src, size[0], size[1])
		if err != nil {
			t.Fatalf("Scale to %dx%d: %v", size[0], size[1], err)
		}
		if dst.Width != size[0] || dst.Height != size[1] {
			t.Fatalf("got %dx%d, want %dx%d", dst.Width, dst.Height, size[0], size[1])
		}
		for i := 0; i < len(dst.Pix); i += 3 {
			if dst.Pix[i] != 200 || dst.Pix[i+1] != 100 || dst.Pix[i+2] != 50 {
				t.Fatalf("%dx%d: pixel %d = (%d,%d,%d), want (200,100,50)",
					size[0], size[1], i/3, dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2])
			}
		}
	}
}

func TestScaleKnownValues(t *testing.T) {
	src := &capture.Frame{}
	src.Alloc(2, 1)
	copy(src.Pix, []byte{0, 60, 120, 30, 90, 150})

	dst, err := Scale(src, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 60, 120, 20, 80, 140, 30, 90, 150}
	if !bytes.Equal(dst.Pix, want) {
		t.Fatalf("scaled pixels = %v, want %v", dst.Pix, want)
	}
}

func TestScaleDeterministic(t *testing.T) {
	src := &capture.Frame{}
	src.Alloc(7, 5)
	for i := range src.Pix {
		src.Pix[i] = byte(i * 13)
	}
	a, err := Scale(src, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Scale(src, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("two scales of the same input differ")
	}
}

func TestScaleRejectsBadDimensions(t *testing.T) {
	src := solidFrame(4, 4, 0, 0, 0)
	if _, err := Scale(src, 0, 4); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("zero width: err = %v, want ErrInvalidDimensions", err)
	}
	if _, err := Scale(src, 4, -1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("negative height: err = %v, want ErrInvalidDimensions", err)
	}
	empty := &capture.Frame{}
	if _, err := Scale(empty, 4, 4); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("empty source: err = %v, want ErrInvalidDimensions", err)
	}
}

func TestFitDimensions(t *testing.T) {
	cases := []struct {
		name                   string
		srcW, srcH, maxW, maxH int
		wantW, wantH           int
	}{
		{"no scaling needed", 1920, 1080, 1920, 1080, 1920, 1080},
		{"half", 1920, 1080, 960, 540, 960, 540},
		{"width bound", 1920, 1080, 1280, 1080, 1280, 720},
		{"height bound", 1920, 1080, 1920, 720, 1280, 720},
		{"odd result rounds down", 100, 99, 51, 51, 50, 50},
		{"portrait", 1080, 1920, 720, 720, 404, 720},
		// A bound under 2 pixels collapses to zero; callers must treat
		// that as unrecordable rather than falling back to native size.
		{"degenerate bound", 1920, 1080, 1, 1, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := FitDimensions(tc.srcW, tc.srcH, tc.maxW, tc.maxH)
			if w != tc.wantW || h != tc.wantH {
				t.Errorf("FitDimensions(%d,%d,%d,%d) = %dx%d, want %dx%d",
					tc.srcW, tc.srcH, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
			}
			if w%2 != 0 || h%2 != 0 {
				t.Errorf("result %dx%d not even", w, h)
			}
			if w > tc.maxW || h > tc.maxH {
				t.Errorf("result %dx%d exceeds bounds %dx%d", w, h, tc.maxW, tc.maxH)
			}
		})
	}
}
