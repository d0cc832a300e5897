// Package video decodes background clips into in-memory frame sequences and
// encodes them back, using ffmpeg as the codec collaborator.
//
// Sequences are materialized eagerly: a clip costs width*height*4 bytes per
// frame while held, which limits the approach to short clips.
package video

import (
	"fmt"
	"image"
	"time"
)

// FrameSequence is an ordered run of equally sized frames.
type FrameSequence struct {
	Frames   []*image.RGBA
	Width    int
	Height   int
	FPS      float64
	CodecTag string
}

// Duration returns len(Frames)/FPS.
func (s *FrameSequence) Duration() time.Duration {
	if s.FPS <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Frames)) / s.FPS * float64(time.Second))
}

// Validate checks that every frame matches the sequence dimensions.
func (s *FrameSequence) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", s.Width, s.Height)
	}
	if !(s.FPS > 0) {
		return fmt.Errorf("invalid frame rate %v", s.FPS)
	}
	for i, f := range s.Frames {
		if f == nil {
			return fmt.Errorf("frame %d is nil", i)
		}
		if b := f.Bounds(); b.Dx() != s.Width || b.Dy() != s.Height {
			return fmt.Errorf("frame %d is %dx%d, want %dx%d", i, b.Dx(), b.Dy(), s.Width, s.Height)
		}
	}
	return nil
}

// frameBytes is the size of one RGBA frame.
func (s *FrameSequence) frameBytes() int {
	return s.Width * s.Height * 4
}

// pixels returns the frame's pixel rows packed without stride padding.
func pixels(f *image.RGBA) []byte {
	b := f.Bounds()
	rowBytes := b.Dx() * 4
	if f.Stride == rowBytes && b.Min == (image.Point{}) {
		return f.Pix[:rowBytes*b.Dy()]
	}
	out := make([]byte, 0, rowBytes*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := f.PixOffset(b.Min.X, y)
		out = append(out, f.Pix[off:off+rowBytes]...)
	}
	return out
}
