package processor

import (
	"math"
	"testing"
	"time"

	"github.com/linuxmatters/arianator/internal/audio"
)

// testFormat is small enough to keep the silence analysis fast
var testFormat = audio.Format{SampleRate: 8000, Channels: 1, BitDepth: 16}

// narrationOptions configures the synthetic narration to generate
type narrationOptions struct {
	Speech    time.Duration // Tone length
	ToneFreq  float64       // Sine wave frequency in Hz (default: 300)
	ToneLevel float64       // Peak level in dBFS (default: -12)
	LeadIn    time.Duration // Silence before the tone
	LeadOut   time.Duration // Silence after the tone
	Pause     time.Duration // Interior silence inserted halfway through the tone
}

// generateNarration stands in for synthesized speech: a tone with optional
// leading, trailing and interior silence.
func generateNarration(t *testing.T, opts narrationOptions) audio.Track {
	t.Helper()

	if opts.ToneFreq == 0 {
		opts.ToneFreq = 300
	}
	if opts.ToneLevel == 0 {
		opts.ToneLevel = -12
	}

	amp := math.Pow(10, opts.ToneLevel/20) * (testFormat.MaxAmplitude() - 1)
	tone := func(d time.Duration) audio.Track {
		n := testFormat.FramesFor(d)
		samples := make([]int32, n)
		for i := range samples {
			samples[i] = int32(math.Round(amp * math.Sin(2*math.Pi*opts.ToneFreq*float64(i)/float64(testFormat.SampleRate))))
		}
		return audio.Track{Format: testFormat, Samples: samples}
	}

	parts := []audio.Track{audio.Silent(opts.LeadIn, testFormat)}
	if opts.Pause > 0 {
		parts = append(parts, tone(opts.Speech/2), audio.Silent(opts.Pause, testFormat), tone(opts.Speech-opts.Speech/2))
	} else {
		parts = append(parts, tone(opts.Speech))
	}
	parts = append(parts, audio.Silent(opts.LeadOut, testFormat))

	out, err := audio.Concat(testFormat, parts...)
	if err != nil {
		t.Fatalf("failed to build narration: %v", err)
	}
	return out
}
