package overlay

import (
	"image"

	"golang.org/x/image/font"
)

// ShapedText is display-ordered text with its measured box for one
// (text, font, size) combination.
type ShapedText struct {
	Display string
	// Width is the larger of the ink extent and the pen advance
	Width int
	// Height runs from the ascender line to the lowest ink
	Height int
	// Ascent is the distance from the top of the box to the baseline
	Ascent int
}

// Measure computes the box of s drawn with face, anchored at the left end
// of the ascender line.
func Measure(face font.Face, s string) ShapedText {
	bounds, advance := font.BoundString(face, s)
	ascent := face.Metrics().Ascent.Ceil()

	width := max(bounds.Max.X.Ceil(), advance.Ceil(), 0)
	height := max(ascent+bounds.Max.Y.Ceil(), 0)
	if s == "" {
		width, height = 0, 0
	}
	return ShapedText{Display: s, Width: width, Height: height, Ascent: ascent}
}

// Placement returns the top-left corner of the text box on a frame of the
// given size: horizontally centered, one fifteenth of the way down.
func Placement(frameWidth, frameHeight int, shaped ShapedText) image.Point {
	return image.Point{
		X: floorDiv(frameWidth-shaped.Width, 2),
		Y: frameHeight / 15,
	}
}

// Baseline returns the pen origin for drawing shaped at top-left pt.
func Baseline(pt image.Point, shaped ShapedText) image.Point {
	return image.Point{X: pt.X, Y: pt.Y + shaped.Ascent}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
