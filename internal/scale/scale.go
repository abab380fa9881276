// Package scale resamples RGB24 frames between resolutions.
package scale

import (
	"errors"
	"math"

	"github.com/screenrec/screenrec/internal/capture"
)

var ErrInvalidDimensions = errors.New("scale: dimensions must be positive")

// Scale resamples src to targetW x targetH with bilinear filtering and
// returns a newly allocated frame. Deterministic: identical inputs produce
// byte-identical output.
func Scale(src *capture.Frame, targetW, targetH int) (*capture.Frame, error) {
	dst := &capture.Frame{}
	if err := ScaleInto(src, dst, targetW, targetH); err != nil {
		return nil, err
	}
	return dst, nil
}

// ScaleInto resamples src into dst, reusing dst's buffer when possible.
// The capture loop calls this with a long-lived scratch frame to avoid
// per-frame allocation.
func ScaleInto(src, dst *capture.Frame, targetW, targetH int) error {
	if src.Width <= 0 || src.Height <= 0 || targetW <= 0 || targetH <= 0 {
		return ErrInvalidDimensions
	}
	dst.Alloc(targetW, targetH)

	xRatio := float64(src.Width) / float64(targetW)
	yRatio := float64(src.Height) / float64(targetH)

	for y := 0; y < targetH; y++ {
		srcY := float64(y) * yRatio
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < targetW; x++ {
			srcX := float64(x) * xRatio
			for c := 0; c < capture.BytesPerPixel; c++ {
				row[x*capture.BytesPerPixel+c] = bilinearSample(src, srcX, srcY, c)
			}
		}
	}
	return nil
}

// bilinearSample interpolates one channel over the four nearest source
// pixels, clamped at the image border.
func bilinearSample(src *capture.Frame, x, y float64, channel int) byte {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := min(x0+1, src.Width-1)
	y1 := min(y0+1, src.Height-1)
	x0 = max(0, min(x0, src.Width-1))
	y0 = max(0, min(y0, src.Height-1))

	fx := x - float64(x0)
	fy := y - float64(y0)

	p00 := float64(src.Pix[y0*src.Stride+x0*capture.BytesPerPixel+channel])
	p10 := float64(src.Pix[y0*src.Stride+x1*capture.BytesPerPixel+channel])
	p01 := float64(src.Pix[y1*src.Stride+x0*capture.BytesPerPixel+channel])
	p11 := float64(src.Pix[y1*src.Stride+x1*capture.BytesPerPixel+channel])

	top := p00*(1-fx) + p10*fx
	bottom := p01*(1-fx) + p11*fx
	v := math.Round(top*(1-fy) + bottom*fy)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// FitDimensions returns the largest size within maxW x maxH preserving the
// source aspect ratio, with both dimensions rounded down to even numbers
// as required by chroma-subsampled video codecs.
func FitDimensions(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	ratio := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	w := min(int(math.Round(float64(srcW)*ratio)), maxW)
	h := min(int(math.Round(float64(srcH)*ratio)), maxH)
	return w &^ 1, h &^ 1
}
