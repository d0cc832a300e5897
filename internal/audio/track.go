// Package audio holds the in-memory PCM track and the transforms the
// narration pipeline applies to it: silence analysis, gain, looping, mixing,
// format conversion and time-stretching, plus decoding and export.
package audio

import (
	"fmt"
	"math"
	"time"
)

// Format describes the sample layout of a Track.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Validate reports whether the format can hold samples.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count %d", f.Channels)
	}
	switch f.BitDepth {
	case 8, 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("unsupported bit depth %d", f.BitDepth)
	}
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.SampleRate, f.Channels, f.BitDepth)
}

// MaxAmplitude is the magnitude of full scale for the bit depth.
func (f Format) MaxAmplitude() float64 {
	return float64(int64(1) << (f.BitDepth - 1))
}

func (f Format) limits() (lo, hi int64) {
	hi = int64(1)<<(f.BitDepth-1) - 1
	return -hi - 1, hi
}

// FramesFor returns the number of whole frames that fit in d.
func (f Format) FramesFor(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(int64(d) * int64(f.SampleRate) / int64(time.Second))
}

// Track is an interleaved PCM buffer. Samples always holds a whole number
// of frames and every value lies inside the signed range of BitDepth.
type Track struct {
	Format
	Samples []int32
}

// NewTrack wraps samples in a track, rejecting partial frames.
func NewTrack(f Format, samples []int32) (Track, error) {
	if err := f.Validate(); err != nil {
		return Track{}, err
	}
	if len(samples)%f.Channels != 0 {
		return Track{}, fmt.Errorf("%d samples is not a whole number of %d-channel frames", len(samples), f.Channels)
	}
	return Track{Format: f, Samples: samples}, nil
}

// Silent returns d worth of digital silence.
func Silent(d time.Duration, f Format) Track {
	return Track{Format: f, Samples: make([]int32, f.FramesFor(d)*f.Channels)}
}

// Frames returns the number of sample frames.
func (t Track) Frames() int {
	if t.Channels == 0 {
		return 0
	}
	return len(t.Samples) / t.Channels
}

// Duration returns the playback length.
func (t Track) Duration() time.Duration {
	if t.SampleRate == 0 {
		return 0
	}
	return time.Duration(int64(t.Frames()) * int64(time.Second) / int64(t.SampleRate))
}

// Empty reports whether the track holds no frames.
func (t Track) Empty() bool { return t.Frames() == 0 }

// SliceFrames returns a copy of frames [start, end), clamped to the track.
func (t Track) SliceFrames(start, end int) Track {
	n := t.Frames()
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	out := make([]int32, (end-start)*t.Channels)
	copy(out, t.Samples[start*t.Channels:end*t.Channels])
	return Track{Format: t.Format, Samples: out}
}

// Slice returns a copy of the audio between two offsets.
func (t Track) Slice(start, end time.Duration) Track {
	return t.SliceFrames(t.FramesFor(start), t.FramesFor(end))
}

// Append adds other to the end of t in place.
func (t *Track) Append(other Track) error {
	if other.Format != t.Format {
		return formatMismatch("append", t.Format, other.Format)
	}
	t.Samples = append(t.Samples, other.Samples...)
	return nil
}

// Concat joins tracks end to end into a new track. All tracks must share a
// format; with no tracks the result is empty in format f.
func Concat(f Format, tracks ...Track) (Track, error) {
	total := 0
	for _, tr := range tracks {
		if tr.Format != f {
			return Track{}, formatMismatch("concat", f, tr.Format)
		}
		total += len(tr.Samples)
	}
	out := make([]int32, 0, total)
	for _, tr := range tracks {
		out = append(out, tr.Samples...)
	}
	return Track{Format: f, Samples: out}, nil
}

// Reverse returns the track played backwards, frame by frame.
func (t Track) Reverse() Track {
	n := t.Frames()
	out := make([]int32, len(t.Samples))
	for i := 0; i < n; i++ {
		copy(out[(n-1-i)*t.Channels:(n-i)*t.Channels], t.Samples[i*t.Channels:(i+1)*t.Channels])
	}
	return Track{Format: t.Format, Samples: out}
}

// RMS returns the root mean square over every sample of every channel.
func (t Track) RMS() float64 {
	return rms(t.Samples)
}

// DBFS returns the RMS level relative to full scale. Silence is -Inf.
func (t Track) DBFS() float64 {
	r := t.RMS()
	if r == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(r/t.MaxAmplitude())
}

// Peak returns the largest absolute sample value.
func (t Track) Peak() int64 {
	var peak int64
	for _, s := range t.Samples {
		v := int64(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// PeakDBFS returns the peak level relative to full scale.
func (t Track) PeakDBFS() float64 {
	p := t.Peak()
	if p == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(p)/t.MaxAmplitude())
}

func (t Track) clamp(v int64) int32 {
	lo, hi := t.limits()
	if v > hi {
		return int32(hi)
	}
	if v < lo {
		return int32(lo)
	}
	return int32(v)
}

func rms(samples []int32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
