package audio

import "time"

// LoopToDuration lays out an initial gap of silence followed by as many
// whole repetitions of track+gap as fit in target, then truncates the result
// to target. The output is never padded, so it is never longer than target.
// When a single period is longer than target the result is the initial gap
// alone, cut to target.
func LoopToDuration(t Track, gap, target time.Duration) Track {
	targetFrames := t.FramesFor(target)
	if targetFrames == 0 {
		return t.SliceFrames(0, 0)
	}
	gapFrames := t.FramesFor(gap)
	period := t.Frames() + gapFrames

	repeats := 0
	if period > 0 {
		repeats = targetFrames / period
	}

	silence := make([]int32, gapFrames*t.Channels)
	out := make([]int32, 0, (gapFrames+repeats*period)*t.Channels)
	out = append(out, silence...)
	for range repeats {
		out = append(out, t.Samples...)
		out = append(out, silence...)
	}
	if limit := targetFrames * t.Channels; len(out) > limit {
		out = out[:limit]
	}
	return Track{Format: t.Format, Samples: out}
}

// Repetitions returns how many whole copies of a track of length d
// LoopToDuration fits in target.
func Repetitions(f Format, d, gap, target time.Duration) int {
	period := f.FramesFor(d) + f.FramesFor(gap)
	if period == 0 {
		return 0
	}
	return f.FramesFor(target) / period
}
