package overlay

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"runtime"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"github.com/linuxmatters/arianator/internal/video"
)

// TextColor is the fixed overlay color.
var TextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Spec describes the overlay to draw.
type Spec struct {
	Text      string
	FontPath  string
	FontSize  int // pixels
	Direction Direction
}

// Renderer draws a Spec onto frame sequences.
type Renderer struct {
	// Workers bounds parallel frame drawing; zero uses GOMAXPROCS
	Workers int
	// Progress, when set, is called with the number of frames drawn so far
	Progress func(done, total int)
}

// Font is a parsed font file.
type Font struct {
	path string
	font *sfnt.Font
}

// LoadFont reads and parses an OpenType or TrueType font.
func LoadFont(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	return &Font{path: path, font: f}, nil
}

// Face returns a new face at size pixels. Faces are not safe for
// concurrent use.
func (f *Font) Face(size int) (font.Face, error) {
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", f.path, err)
	}
	return face, nil
}

// CheckGlyphs fails when the font lacks a glyph for a visible rune of s.
func (f *Font) CheckGlyphs(s string) error {
	var buf sfnt.Buffer
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsGraphic(r) {
			continue
		}
		idx, err := f.font.GlyphIndex(&buf, r)
		if err != nil {
			return fmt.Errorf("font %s: %w", f.path, err)
		}
		if idx == 0 {
			return fmt.Errorf("font %s has no glyph for %q", f.path, r)
		}
	}
	return nil
}

// Prepare loads the font and shapes and measures the text once.
func Prepare(spec Spec) (*Font, ShapedText, error) {
	if spec.FontSize <= 0 {
		return nil, ShapedText{}, fmt.Errorf("invalid font size %d", spec.FontSize)
	}
	f, err := LoadFont(spec.FontPath)
	if err != nil {
		return nil, ShapedText{}, err
	}
	display, err := Shape(spec.Text, spec.Direction)
	if err != nil {
		return nil, ShapedText{}, err
	}
	if err := f.CheckGlyphs(display); err != nil {
		return nil, ShapedText{}, err
	}
	face, err := f.Face(spec.FontSize)
	if err != nil {
		return nil, ShapedText{}, err
	}
	defer face.Close()
	return f, Measure(face, display), nil
}

// Render draws the text on every frame of seq in place and returns seq.
// Frames are drawn in parallel; each worker owns its font face.
func (r *Renderer) Render(ctx context.Context, seq *video.FrameSequence, spec Spec) (*video.FrameSequence, error) {
	f, shaped, err := Prepare(spec)
	if err != nil {
		return nil, err
	}
	if shaped.Display == "" || len(seq.Frames) == 0 {
		return seq, nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(seq.Frames))

	faces := make(chan font.Face, workers)
	for range workers {
		face, err := f.Face(spec.FontSize)
		if err != nil {
			close(faces)
			for face := range faces {
				face.Close()
			}
			return nil, err
		}
		faces <- face
	}
	defer func() {
		close(faces)
		for face := range faces {
			face.Close()
		}
	}()

	origin := Baseline(Placement(seq.Width, seq.Height, shaped), shaped)
	progress := newCounter(len(seq.Frames), r.Progress)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, frame := range seq.Frames {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			face := <-faces
			defer func() { faces <- face }()
			drawText(frame, face, shaped.Display, origin)
			progress.add()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return seq, nil
}

func drawText(dst *image.RGBA, face font.Face, s string, origin image.Point) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(TextColor),
		Face: face,
		Dot:  fixed.P(origin.X, origin.Y),
	}
	d.DrawString(s)
}
