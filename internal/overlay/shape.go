// Package overlay burns a line of text into every frame of a sequence.
//
// Text goes through a two-step shaping contract before drawing: the runes
// are reversed, then the Unicode bidirectional algorithm reorders the result
// for display. The rasterizer underneath lays glyphs out strictly left to
// right, and this pair of steps is what produces correctly ordered
// right-to-left words on screen. Skipping the reversal mirrors the output.
package overlay

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// Direction selects the shaping contract.
type Direction int

const (
	// RTL reverses the text and applies bidi display reordering.
	RTL Direction = iota
	// LTR draws the text as given.
	LTR
)

func (d Direction) String() string {
	switch d {
	case RTL:
		return "rtl"
	case LTR:
		return "ltr"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "rtl" or "ltr", case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rtl", "":
		return RTL, nil
	case "ltr":
		return LTR, nil
	default:
		return RTL, fmt.Errorf("unknown text direction %q", s)
	}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Shape returns the glyph-order string for a left-to-right rasterizer.
// The overlay is a single line, so line breaks become spaces.
func Shape(text string, dir Direction) (string, error) {
	text = lineBreaks.Replace(text)
	if dir == LTR {
		return text, nil
	}
	return displayOrder(reverseRunes(text))
}

func reverseRunes(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// displayOrder applies bidi reordering to a single line. The paragraph
// direction comes from the first strong character, defaulting to left to
// right. Right-to-left runs are reversed with mirrored brackets.
func displayOrder(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	var p bidi.Paragraph
	var opts []bidi.Option
	rtl := paragraphIsRTL(s)
	if rtl {
		opts = append(opts, bidi.DefaultDirection(bidi.RightToLeft))
	}
	if _, err := p.SetString(s, opts...); err != nil {
		return "", fmt.Errorf("bidi: %w", err)
	}
	order, err := p.Order()
	if err != nil {
		return "", fmt.Errorf("bidi order: %w", err)
	}

	runs := make([]string, order.NumRuns())
	for i := range runs {
		run := order.Run(i)
		text := run.String()
		if run.Direction() == bidi.RightToLeft {
			text = bidi.ReverseString(text)
		}
		runs[i] = text
	}

	// Runs come back in logical order; an RTL paragraph lays them out
	// from the right.
	if rtl {
		for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
			runs[i], runs[j] = runs[j], runs[i]
		}
	}
	return strings.Join(runs, ""), nil
}

func paragraphIsRTL(s string) bool {
	for _, r := range s {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.L:
			return false
		case bidi.R, bidi.AL:
			return true
		}
	}
	return false
}
