package audio

import "math"

// ApplyGainDB scales every sample by 10^(db/20). Samples that leave the bit
// depth's range are hard clipped; the distortion is intended.
func ApplyGainDB(t Track, db float64) Track {
	factor := math.Pow(10, db/20)
	out := Track{Format: t.Format, Samples: make([]int32, len(t.Samples))}
	for i, s := range t.Samples {
		v := math.Round(float64(s) * factor)
		switch {
		case v >= math.MaxInt64:
			out.Samples[i] = out.clamp(math.MaxInt64)
		case v <= math.MinInt64:
			out.Samples[i] = out.clamp(math.MinInt64)
		default:
			out.Samples[i] = out.clamp(int64(v))
		}
	}
	return out
}
