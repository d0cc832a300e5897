package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/linuxmatters/arianator/internal/mediaerr"
)

func TestMixDurationIsLongerInput(t *testing.T) {
	f := Format{SampleRate: 8000, Channels: 2, BitDepth: 16}
	short := generateTone(t, toneOptions{Duration: time.Second, SampleRate: 8000, Channels: 2})
	long := generateTone(t, toneOptions{Duration: 3 * time.Second, SampleRate: 8000, Channels: 2, ToneFreq: 220})

	for _, pair := range [][2]Track{{short, long}, {long, short}} {
		got, err := Mix(pair[0], pair[1])
		if err != nil {
			t.Fatalf("Mix() error = %v", err)
		}
		if got.Duration() != 3*time.Second {
			t.Errorf("Mix(%v, %v) duration = %v, want 3s", pair[0].Duration(), pair[1].Duration(), got.Duration())
		}
		if got.Format != f {
			t.Errorf("format = %v, want %v", got.Format, f)
		}
	}
}

func TestMixSumsAndSaturates(t *testing.T) {
	a := Track{Format: mono16, Samples: []int32{100, 30000, -30000, 5}}
	b := Track{Format: mono16, Samples: []int32{-50, 10000, -10000}}

	got, err := Mix(a, b)
	if err != nil {
		t.Fatalf("Mix() error = %v", err)
	}
	want := []int32{50, 32767, -32768, 5}
	for i := range want {
		if got.Samples[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got.Samples[i], want[i])
		}
	}
}

func TestMixFormatMismatch(t *testing.T) {
	base := Silent(time.Second, Format{SampleRate: 44100, Channels: 1, BitDepth: 16})
	tests := []struct {
		name  string
		other Format
	}{
		{"rate", Format{SampleRate: 48000, Channels: 1, BitDepth: 16}},
		{"channels", Format{SampleRate: 44100, Channels: 2, BitDepth: 16}},
		{"depth", Format{SampleRate: 44100, Channels: 1, BitDepth: 24}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Mix(base, Silent(time.Second, tt.other))
			var mismatch *mediaerr.FormatMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("Mix() error = %v, want FormatMismatchError", err)
			}
			if mismatch.Op != "mix" {
				t.Errorf("Op = %q, want mix", mismatch.Op)
			}
		})
	}
}
