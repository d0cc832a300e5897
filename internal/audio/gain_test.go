package audio

import (
	"math"
	"testing"
	"time"
)

func TestApplyGainDB(t *testing.T) {
	tr := Track{Format: mono16, Samples: []int32{1000, -1000, 0, 20000}}

	tests := []struct {
		name string
		db   float64
		want []int32
	}{
		{"unity", 0, []int32{1000, -1000, 0, 20000}},
		{"+6.0206 doubles", 20 * math.Log10(2), []int32{2000, -2000, 0, 32767}},
		{"-20 divides by ten", -20, []int32{100, -100, 0, 2000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyGainDB(tr, tt.db)
			for i := range tt.want {
				if got.Samples[i] != tt.want[i] {
					t.Errorf("ApplyGainDB(%v) sample %d = %d, want %d", tt.db, i, got.Samples[i], tt.want[i])
				}
			}
		})
	}
}

func TestApplyGainDBClipsFullScale(t *testing.T) {
	for _, depth := range []int{8, 16, 24, 32} {
		tr := generateTone(t, toneOptions{Duration: 200 * time.Millisecond, BitDepth: depth, ToneLevel: -0.1})
		got := ApplyGainDB(tr, 50)

		lo, hi := got.limits()
		if got.Frames() != tr.Frames() {
			t.Errorf("%d-bit: frames changed %d -> %d", depth, tr.Frames(), got.Frames())
		}
		if int64(got.Peak()) < hi {
			t.Errorf("%d-bit: peak %d, want clipped at %d", depth, got.Peak(), hi)
		}
		for i, s := range got.Samples {
			if int64(s) < lo || int64(s) > hi {
				t.Fatalf("%d-bit: sample %d = %d outside [%d, %d]", depth, i, s, lo, hi)
			}
		}
	}
}

func TestApplyGainDBDoesNotMutateInput(t *testing.T) {
	tr := Track{Format: mono16, Samples: []int32{100}}
	ApplyGainDB(tr, 12)
	if tr.Samples[0] != 100 {
		t.Errorf("input mutated to %d", tr.Samples[0])
	}
}
