package overlay

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/linuxmatters/arianator/internal/video"
)

func writeTestFont(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatalf("failed to write font: %v", err)
	}
	return path
}

func blankSequence(count, width, height int) *video.FrameSequence {
	seq := &video.FrameSequence{Width: width, Height: height, FPS: 30, CodecTag: "avc1"}
	for i := 0; i < count; i++ {
		frame := image.NewRGBA(image.Rect(0, 0, width, height))
		for p := 3; p < len(frame.Pix); p += 4 {
			frame.Pix[p] = 255
		}
		seq.Frames = append(seq.Frames, frame)
	}
	return seq
}

// inkBounds returns the rectangle of pixels that are no longer black.
func inkBounds(img *image.RGBA) image.Rectangle {
	var r image.Rectangle
	first := true
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := img.RGBAAt(x, y); c.R == 0 && c.G == 0 && c.B == 0 {
				continue
			}
			p := image.Rect(x, y, x+1, y+1)
			if first {
				r, first = p, false
			} else {
				r = r.Union(p)
			}
		}
	}
	return r
}

func TestPlacement(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		text   int
		wantPt image.Point
	}{
		{"720p", 1280, 720, 200, image.Point{540, 48}},
		{"odd remainder", 101, 15, 0, image.Point{50, 1}},
		{"text wider than frame", 100, 150, 201, image.Point{-51, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Placement(tt.w, tt.h, ShapedText{Width: tt.text})
			if got != tt.wantPt {
				t.Errorf("Placement(%d, %d, w=%d) = %v, want %v", tt.w, tt.h, tt.text, got, tt.wantPt)
			}
		})
	}
}

func TestMeasure(t *testing.T) {
	f, err := LoadFont(writeTestFont(t))
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}
	face, err := f.Face(32)
	if err != nil {
		t.Fatalf("Face() error = %v", err)
	}
	defer face.Close()

	short := Measure(face, "ab")
	long := Measure(face, "abcdef")
	if short.Width <= 0 || short.Height <= 0 || short.Ascent <= 0 {
		t.Fatalf("Measure(ab) = %+v, want a positive box", short)
	}
	if long.Width <= short.Width {
		t.Errorf("Measure(abcdef).Width = %d, want more than %d", long.Width, short.Width)
	}
	if short.Height > 64 {
		t.Errorf("Measure(ab).Height = %d, implausible for 32px text", short.Height)
	}
	if empty := Measure(face, ""); empty.Width != 0 || empty.Height != 0 {
		t.Errorf("Measure(\"\") = %+v, want zero box", empty)
	}
}

func TestRenderCentersText(t *testing.T) {
	fontPath := writeTestFont(t)
	seq := blankSequence(6, 320, 120)
	spec := Spec{Text: "hello", FontPath: fontPath, FontSize: 32, Direction: RTL}

	_, shaped, err := Prepare(spec)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if shaped.Display != "olleh" {
		t.Errorf("Display = %q, want %q", shaped.Display, "olleh")
	}

	out, err := (&Renderer{Workers: 3}).Render(context.Background(), seq, spec)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != seq {
		t.Error("Render() should return the sequence it drew on")
	}

	pt := Placement(320, 120, shaped)
	if pt.X != (320-shaped.Width)/2 || pt.Y != 120/15 {
		t.Fatalf("Placement() = %v for width %d", pt, shaped.Width)
	}
	box := image.Rect(pt.X, pt.Y, pt.X+shaped.Width, pt.Y+shaped.Height)

	want := inkBounds(seq.Frames[0])
	if want.Empty() {
		t.Fatal("no text drawn on frame 0")
	}
	for i, frame := range seq.Frames {
		ink := inkBounds(frame)
		if ink != want {
			t.Errorf("frame %d ink %v differs from frame 0 ink %v", i, ink, want)
		}
		if !ink.In(box) {
			t.Errorf("frame %d ink %v outside text box %v", i, ink, box)
		}
	}

	// Ink margins either side differ only by side bearings
	left, right := want.Min.X, 320-want.Max.X
	if d := left - right; d < -6 || d > 6 {
		t.Errorf("text not centered: left margin %d, right margin %d", left, right)
	}
}

func TestRenderUsesFixedColor(t *testing.T) {
	seq := blankSequence(1, 200, 80)
	spec := Spec{Text: "I", FontPath: writeTestFont(t), FontSize: 48, Direction: LTR}
	if _, err := (&Renderer{}).Render(context.Background(), seq, spec); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	found := false
	b := seq.Frames[0].Bounds()
	for y := b.Min.Y; y < b.Max.Y && !found; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if seq.Frames[0].RGBAAt(x, y) == (color.RGBA{255, 255, 255, 255}) {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("expected fully covered pixels in the text color")
	}
}

func TestRenderWorkerCountDoesNotChangeOutput(t *testing.T) {
	fontPath := writeTestFont(t)
	spec := Spec{Text: "arianator", FontPath: fontPath, FontSize: 20}

	a := blankSequence(5, 160, 60)
	b := blankSequence(5, 160, 60)
	if _, err := (&Renderer{Workers: 1}).Render(context.Background(), a, spec); err != nil {
		t.Fatal(err)
	}
	if _, err := (&Renderer{Workers: 8}).Render(context.Background(), b, spec); err != nil {
		t.Fatal(err)
	}
	for i := range a.Frames {
		if string(a.Frames[i].Pix) != string(b.Frames[i].Pix) {
			t.Errorf("frame %d differs between 1 and 8 workers", i)
		}
	}
}

func TestRenderProgress(t *testing.T) {
	seq := blankSequence(7, 64, 32)
	var last, calls int
	r := &Renderer{Workers: 2, Progress: func(done, total int) {
		calls++
		last = done
		if total != 7 {
			t.Errorf("total = %d, want 7", total)
		}
	}}
	if _, err := r.Render(context.Background(), seq, Spec{Text: "x", FontPath: writeTestFont(t), FontSize: 12}); err != nil {
		t.Fatal(err)
	}
	if calls != 7 || last != 7 {
		t.Errorf("progress called %d times ending at %d, want 7 and 7", calls, last)
	}
}

func TestRenderErrors(t *testing.T) {
	fontPath := writeTestFont(t)
	missing := filepath.Join(t.TempDir(), "missing.ttf")

	garbage := filepath.Join(t.TempDir(), "garbage.ttf")
	if err := os.WriteFile(garbage, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		spec    Spec
		wantSub string
	}{
		{"missing font", Spec{Text: "a", FontPath: missing, FontSize: 12}, missing},
		{"unparseable font", Spec{Text: "a", FontPath: garbage, FontSize: 12}, garbage},
		{"missing glyphs", Spec{Text: "سلام", FontPath: fontPath, FontSize: 12}, "no glyph"},
		{"zero size", Spec{Text: "a", FontPath: fontPath, FontSize: 0}, "font size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Renderer{}).Render(context.Background(), blankSequence(1, 32, 32), tt.spec)
			if err == nil {
				t.Fatal("Render() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Render() error = %q, want it to mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Renderer{}).Render(ctx, blankSequence(3, 32, 32), Spec{Text: "a", FontPath: writeTestFont(t), FontSize: 12})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}
