package capture

import "image"

// BytesPerPixel is the size of one packed RGB24 pixel.
const BytesPerPixel = 3

// Frame is one captured raster image: tightly packed RGB24 pixels plus
// dimensions. The pixel slice is owned by whoever holds the frame; sharing
// requires an explicit Clone.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// Alloc resizes the frame for the given dimensions, reusing the existing
// buffer when it is already large enough.
func (f *Frame) Alloc(w, h int) {
	f.Width = w
	f.Height = h
	f.Stride = w * BytesPerPixel
	size := f.Stride * h
	if cap(f.Pix) < size {
		f.Pix = make([]byte, size)
		return
	}
	f.Pix = f.Pix[:size]
}

// Size returns the pixel buffer length in bytes.
func (f *Frame) Size() int {
	return f.Stride * f.Height
}

// Empty reports whether the frame holds no pixels.
func (f *Frame) Empty() bool {
	return len(f.Pix) == 0 || f.Width <= 0 || f.Height <= 0
}

// CopyFrom makes f a deep copy of src, reusing f's buffer when possible.
func (f *Frame) CopyFrom(src *Frame) {
	f.Alloc(src.Width, src.Height)
	copy(f.Pix, src.Pix)
}

// Clone returns an independent deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{}
	c.CopyFrom(f)
	return c
}

// ToRGBA expands the frame to RGBA with opaque alpha, reusing dst when its
// dimensions match. Display surfaces and JPEG encoding want RGBA input.
func (f *Frame) ToRGBA(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Bounds().Dx() != f.Width || dst.Bounds().Dy() != f.Height {
		dst = image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	}
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*f.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < f.Width; x++ {
			out[x*4+0] = src[x*3+0]
			out[x*4+1] = src[x*3+1]
			out[x*4+2] = src[x*3+2]
			out[x*4+3] = 0xFF
		}
	}
	return dst
}
