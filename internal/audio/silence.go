package audio

import (
	"math"
	"time"

	"github.com/linuxmatters/arianator/internal/mediaerr"
)

// SilenceThreshold parameterizes silence analysis.
//
// MinSilence is the shortest run that counts as silence (and, for trimming,
// the analysis chunk length). ThresholdDB is the level relative to full scale
// below which audio is silent. KeepSilence is the padding left around each
// segment when splitting.
type SilenceThreshold struct {
	MinSilence  time.Duration
	ThresholdDB float64
	KeepSilence time.Duration
}

// TrimThreshold matches a leading-silence detector working on 10 ms chunks
// at -50 dBFS.
func TrimThreshold() SilenceThreshold {
	return SilenceThreshold{MinSilence: 10 * time.Millisecond, ThresholdDB: -50}
}

// SplitThreshold is the aggressive interior silence removal preset.
func SplitThreshold() SilenceThreshold {
	return SilenceThreshold{MinSilence: 300 * time.Millisecond, ThresholdDB: -16, KeepSilence: 100 * time.Millisecond}
}

// Range is a half-open span of a track in milliseconds.
type Range struct {
	Start, End int
}

// Duration returns the span length.
func (r Range) Duration() time.Duration {
	return time.Duration(r.End-r.Start) * time.Millisecond
}

// TrimSilence removes leading and trailing silence. Silence is measured in
// chunks of th.MinSilence; a chunk is silent when its RMS level is below
// th.ThresholdDB. The result is trimmed to a fixed point so a second call is
// a no-op. An all-silent track yields an empty track.
func TrimSilence(t Track, th SilenceThreshold) Track {
	chunk := t.FramesFor(th.MinSilence)
	if chunk <= 0 {
		chunk = 1
	}
	for {
		n := t.Frames()
		lead := leadingSilence(t, chunk, th.ThresholdDB, false)
		if lead >= n {
			return t.SliceFrames(0, 0)
		}
		trail := leadingSilence(t, chunk, th.ThresholdDB, true)
		if lead == 0 && trail == 0 {
			return t
		}
		t = t.SliceFrames(lead, n-trail)
	}
}

// leadingSilence counts frames of whole silent chunks at the start, or at
// the end when fromEnd is set.
func leadingSilence(t Track, chunk int, thresholdDB float64, fromEnd bool) int {
	n := t.Frames()
	ref := t.MaxAmplitude()
	trimmed := 0
	for trimmed < n {
		start, end := trimmed, min(trimmed+chunk, n)
		if fromEnd {
			start, end = n-end, n-trimmed
		}
		level := rms(t.Samples[start*t.Channels : end*t.Channels])
		if level > 0 && 20*math.Log10(level/ref) >= thresholdDB {
			break
		}
		trimmed += chunk
	}
	return min(trimmed, n)
}

// lengthMS returns the track length in whole milliseconds, rounded.
func lengthMS(t Track) int {
	if t.SampleRate == 0 {
		return 0
	}
	return int(math.Round(float64(t.Frames()) * 1000 / float64(t.SampleRate)))
}

func msToFrame(t Track, ms int) int {
	return min(int(int64(ms)*int64(t.SampleRate)/1000), t.Frames())
}

// DetectSilence returns the silent ranges of at least th.MinSilence. A
// window of MinSilence slides over the track in 1 ms steps; a window is
// silent when its RMS is at or below the threshold amplitude. Overlapping
// and adjacent silent windows merge into one range.
func DetectSilence(t Track, th SilenceThreshold) []Range {
	total := lengthMS(t)
	window := int(th.MinSilence / time.Millisecond)
	if window <= 0 || total < window {
		return nil
	}

	// Per-millisecond energy prefix sums make every window O(1).
	energy := make([]float64, total+1)
	count := make([]int, total+1)
	for ms := range total {
		lo, hi := msToFrame(t, ms)*t.Channels, msToFrame(t, ms+1)*t.Channels
		var sum float64
		for _, s := range t.Samples[lo:hi] {
			v := float64(s)
			sum += v * v
		}
		energy[ms+1] = energy[ms] + sum
		count[ms+1] = count[ms] + hi - lo
	}

	limit := math.Pow(10, th.ThresholdDB/20) * t.MaxAmplitude()
	silentAt := func(start int) bool {
		n := count[start+window] - count[start]
		if n == 0 {
			return true
		}
		e := energy[start+window] - energy[start]
		return math.Sqrt(max(e, 0)/float64(n)) <= limit
	}

	var starts []int
	for i := 0; i <= total-window; i++ {
		if silentAt(i) {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil
	}

	var ranges []Range
	prev := starts[0]
	current := prev
	for _, s := range starts[1:] {
		continuous := s == prev+1
		hasGap := s > prev+window
		if !continuous && hasGap {
			ranges = append(ranges, Range{Start: current, End: prev + window})
			current = s
		}
		prev = s
	}
	return append(ranges, Range{Start: current, End: prev + window})
}

// DetectNonsilent returns the complement of DetectSilence.
func DetectNonsilent(t Track, th SilenceThreshold) []Range {
	total := lengthMS(t)
	silent := DetectSilence(t, th)
	if len(silent) == 0 {
		if total == 0 {
			return nil
		}
		return []Range{{Start: 0, End: total}}
	}
	if silent[0].Start == 0 && silent[0].End == total {
		return nil
	}

	var ranges []Range
	prevEnd := 0
	for _, r := range silent {
		if r.Start > prevEnd {
			ranges = append(ranges, Range{Start: prevEnd, End: r.Start})
		}
		prevEnd = r.End
	}
	if prevEnd < total {
		ranges = append(ranges, Range{Start: prevEnd, End: total})
	}
	return ranges
}

// SplitOnSilence cuts the track at interior silence and returns the
// remaining segments, each padded by th.KeepSilence. Where two pads would
// overlap the boundary is placed halfway between them.
func SplitOnSilence(t Track, th SilenceThreshold) []Track {
	keep := int(th.KeepSilence / time.Millisecond)
	ranges := DetectNonsilent(t, th)
	for i := range ranges {
		ranges[i].Start -= keep
		ranges[i].End += keep
	}
	for i := 0; i+1 < len(ranges); i++ {
		lastEnd, nextStart := ranges[i].End, ranges[i+1].Start
		if nextStart < lastEnd {
			mid := floorDiv(lastEnd+nextStart, 2)
			ranges[i].End = mid
			ranges[i+1].Start = mid
		}
	}

	total := lengthMS(t)
	segments := make([]Track, 0, len(ranges))
	for _, r := range ranges {
		start, end := max(r.Start, 0), min(r.End, total)
		segments = append(segments, t.SliceFrames(msToFrame(t, start), msToFrame(t, end)))
	}
	return segments
}

// SplitOnSilenceAndRejoin removes interior silence by splitting and
// concatenating the segments with no gap. It fails with EmptyResultError
// when no segment survives.
func SplitOnSilenceAndRejoin(t Track, th SilenceThreshold) (Track, error) {
	segments := SplitOnSilence(t, th)
	out, err := Concat(t.Format, segments...)
	if err != nil {
		return Track{}, err
	}
	if out.Empty() {
		return Track{}, &mediaerr.EmptyResultError{Op: "split on silence"}
	}
	return out, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
