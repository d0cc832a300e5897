package audio

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/linuxmatters/arianator/internal/ffmpeg"
)

// Stretcher changes a track's duration without changing its pitch. A ratio
// above 1 slows the audio down; the output lasts ratio times the input.
type Stretcher interface {
	Stretch(ctx context.Context, t Track, ratio float64) (Track, error)
}

func validRatio(ratio float64) error {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return fmt.Errorf("invalid stretch ratio %v", ratio)
	}
	return nil
}

// FFmpegStretcher time-stretches through ffmpeg's atempo filter.
type FFmpegStretcher struct {
	Binaries ffmpeg.Binaries
}

// Stretch pipes the track through ffmpeg and reads raw PCM back in the
// same format.
func (s FFmpegStretcher) Stretch(ctx context.Context, t Track, ratio float64) (Track, error) {
	if err := validRatio(ratio); err != nil {
		return Track{}, err
	}
	if t.Empty() || ratio == 1 {
		return t.SliceFrames(0, t.Frames()), nil
	}

	raw := rawSampleFormat(t.BitDepth)
	rate := strconv.Itoa(t.SampleRate)
	channels := strconv.Itoa(t.Channels)
	chain := &ffmpeg.FilterChain{
		Tempo:        1 / ratio,
		SampleFormat: ffmpeg.SampleFormat(t.BitDepth),
		SampleRate:   t.SampleRate,
		Channels:     t.Channels,
	}

	args := []string{"-f", raw, "-ar", rate, "-ac", channels, "-i", "pipe:0"}
	args = append(args, chain.AudioArgs()...)
	args = append(args, "-f", raw, "-ar", rate, "-ac", channels, "pipe:1")
	out, err := s.Binaries.Run(ctx, bytes.NewReader(EncodePCM(t)), args...)
	if err != nil {
		return Track{}, fmt.Errorf("atempo: %w", err)
	}
	samples, err := DecodePCM(out, t.Format)
	if err != nil {
		return Track{}, err
	}
	return Track{Format: t.Format, Samples: samples}, nil
}

// WSOLAStretcher is a pure Go waveform-similarity overlap-add stretcher.
// It needs no external tools and is deterministic.
type WSOLAStretcher struct {
	// Window is the analysis frame length; zero means 20 ms. Shorter
	// windows are raised to minWindow.
	Window int
}

const minWindow = 16

// Stretch returns a track of exactly round(frames*ratio) frames.
func (s WSOLAStretcher) Stretch(ctx context.Context, t Track, ratio float64) (Track, error) {
	if err := validRatio(ratio); err != nil {
		return Track{}, err
	}
	if t.Empty() || ratio == 1 {
		return t.SliceFrames(0, t.Frames()), nil
	}

	frames := t.Frames()
	outFrames := int(math.Round(float64(frames) * ratio))
	window := s.Window
	if window <= 0 {
		window = t.SampleRate / 50
	}
	window = max(window, minWindow) &^ 1
	hop := window / 2
	tolerance := window / 4
	analysisHop := float64(hop) / ratio

	src := t.normalized()
	mono := make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range t.Channels {
			sum += src[i*t.Channels+c]
		}
		mono[i] = sum / float64(t.Channels)
	}
	at := func(i int) float64 {
		if i < 0 || i >= frames {
			return 0
		}
		return mono[i]
	}

	hann := make([]float64, window)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(window))
	}

	acc := make([]float64, (outFrames+window)*t.Channels)
	norm := make([]float64, outFrames+window)

	prev := 0
	for k := 0; k*hop < outFrames; k++ {
		if k%64 == 0 {
			if err := ctx.Err(); err != nil {
				return Track{}, err
			}
		}

		pos := 0
		if k > 0 {
			// Pick the frame near the nominal position that best continues
			// the previous one.
			nominal := int(float64(k) * analysisHop)
			natural := prev + hop
			best := math.Inf(-1)
			pos = max(nominal, 0)
			for cand := max(nominal-tolerance, 0); cand <= nominal+tolerance; cand++ {
				var corr float64
				for i := 0; i < hop; i++ {
					corr += at(cand+i) * at(natural+i)
				}
				if corr > best {
					best = corr
					pos = cand
				}
			}
		}
		prev = pos

		base := k * hop
		for i := range window {
			w := hann[i]
			norm[base+i] += w
			j := pos + i
			if j >= frames {
				continue
			}
			for c := range t.Channels {
				acc[(base+i)*t.Channels+c] += w * float64(t.Samples[j*t.Channels+c])
			}
		}
	}

	out := Track{Format: t.Format, Samples: make([]int32, outFrames*t.Channels)}
	for i := range outFrames {
		n := norm[i]
		if n < 1e-3 {
			n = 1
		}
		for c := range t.Channels {
			out.Samples[i*t.Channels+c] = out.clamp(int64(math.Round(acc[i*t.Channels+c] / n)))
		}
	}
	return out, nil
}
