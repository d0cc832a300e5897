package audio

import "github.com/linuxmatters/arianator/internal/mediaerr"

// Mix overlays secondary onto primary from offset zero, summing samples with
// saturation. The result is as long as the longer input. Both tracks must
// share sample rate, channel count and bit depth; use Convert first.
func Mix(primary, secondary Track) (Track, error) {
	if primary.Format != secondary.Format {
		return Track{}, formatMismatch("mix", primary.Format, secondary.Format)
	}
	long, short := primary.Samples, secondary.Samples
	if len(short) > len(long) {
		long, short = short, long
	}
	out := Track{Format: primary.Format, Samples: make([]int32, len(long))}
	copy(out.Samples, long)
	for i, s := range short {
		out.Samples[i] = out.clamp(int64(out.Samples[i]) + int64(s))
	}
	return out, nil
}

func formatMismatch(op string, left, right Format) error {
	return &mediaerr.FormatMismatchError{Op: op, Left: left.String(), Right: right.String()}
}
