package audio

import "math"

// Convert returns the track resampled, remixed and requantized into f.
// Resampling is linear interpolation. Mono is duplicated to every output
// channel; multichannel audio folds to mono by averaging, and between other
// layouts channels are taken in order, repeating the last one.
func (t Track) Convert(f Format) (Track, error) {
	if err := f.Validate(); err != nil {
		return Track{}, err
	}
	if t.Format == f {
		return Track{Format: f, Samples: append([]int32(nil), t.Samples...)}, nil
	}

	src := t.normalized()
	frames := t.Frames()

	// Channel layout first, at the source rate.
	mixed := make([]float64, frames*f.Channels)
	for i := range frames {
		in := src[i*t.Channels : (i+1)*t.Channels]
		row := mixed[i*f.Channels : (i+1)*f.Channels]
		switch {
		case t.Channels == f.Channels:
			copy(row, in)
		case f.Channels == 1:
			var sum float64
			for _, v := range in {
				sum += v
			}
			row[0] = sum / float64(len(in))
		default:
			for c := range row {
				row[c] = in[min(c, len(in)-1)]
			}
		}
	}

	resampled := resampleLinear(mixed, f.Channels, t.SampleRate, f.SampleRate)

	out := Track{Format: f, Samples: make([]int32, len(resampled))}
	scale := f.MaxAmplitude()
	for i, v := range resampled {
		out.Samples[i] = out.clamp(int64(math.Round(v * scale)))
	}
	return out, nil
}

// normalized returns samples scaled to [-1, 1).
func (t Track) normalized() []float64 {
	scale := t.MaxAmplitude()
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = float64(s) / scale
	}
	return out
}

func resampleLinear(in []float64, channels, from, to int) []float64 {
	if from == to || len(in) == 0 {
		return in
	}
	frames := len(in) / channels
	outFrames := int(int64(frames) * int64(to) / int64(from))
	out := make([]float64, outFrames*channels)
	step := float64(from) / float64(to)
	for i := range outFrames {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)
		k := min(j+1, frames-1)
		for c := range channels {
			a := in[j*channels+c]
			b := in[k*channels+c]
			out[i*channels+c] = a + (b-a)*frac
		}
	}
	return out
}
