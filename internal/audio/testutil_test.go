package audio

import (
	"math"
	"os/exec"
	"testing"
	"time"
)

// toneOptions configures the synthetic audio to generate
type toneOptions struct {
	Duration   time.Duration // Total duration
	SampleRate int           // Sample rate (default: 22050)
	Channels   int           // Channel count (default: 1)
	BitDepth   int           // Bit depth (default: 16)
	ToneFreq   float64       // Sine wave frequency in Hz
	ToneLevel  float64       // Tone level in dBFS (e.g., -6.0)
	LeadIn     time.Duration // Digital silence before the tone
	LeadOut    time.Duration // Digital silence after the tone
	Gap        struct {
		Start    time.Duration // Start of an interior silence gap, relative to the tone
		Duration time.Duration
	}
}

// generateTone builds a sine track surrounded by optional silence.
func generateTone(t *testing.T, opts toneOptions) Track {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 22050
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	if opts.BitDepth == 0 {
		opts.BitDepth = 16
	}
	if opts.ToneFreq == 0 {
		opts.ToneFreq = 440
	}
	if opts.ToneLevel == 0 {
		opts.ToneLevel = -6
	}

	f := Format{SampleRate: opts.SampleRate, Channels: opts.Channels, BitDepth: opts.BitDepth}
	amp := math.Pow(10, opts.ToneLevel/20) * (f.MaxAmplitude() - 1)

	toneFrames := f.FramesFor(opts.Duration)
	gapStart := f.FramesFor(opts.Gap.Start)
	gapEnd := gapStart + f.FramesFor(opts.Gap.Duration)

	tone := make([]int32, toneFrames*f.Channels)
	for i := 0; i < toneFrames; i++ {
		if opts.Gap.Duration > 0 && i >= gapStart && i < gapEnd {
			continue
		}
		v := int32(math.Round(amp * math.Sin(2*math.Pi*opts.ToneFreq*float64(i)/float64(f.SampleRate))))
		for c := 0; c < f.Channels; c++ {
			tone[i*f.Channels+c] = v
		}
	}

	out, err := Concat(f, Silent(opts.LeadIn, f), Track{Format: f, Samples: tone}, Silent(opts.LeadOut, f))
	if err != nil {
		t.Fatalf("failed to build tone: %v", err)
	}
	return out
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}
}

func approxDuration(got, want, tolerance time.Duration) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
