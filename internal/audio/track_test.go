package audio

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/linuxmatters/arianator/internal/mediaerr"
)

var mono16 = Format{SampleRate: 1000, Channels: 1, BitDepth: 16}

func TestNewTrackRejectsPartialFrames(t *testing.T) {
	stereo := Format{SampleRate: 1000, Channels: 2, BitDepth: 16}
	if _, err := NewTrack(stereo, []int32{1, 2, 3}); err == nil {
		t.Fatal("expected error for 3 samples in a stereo track")
	}
	tr, err := NewTrack(stereo, []int32{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("NewTrack() error = %v", err)
	}
	if tr.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", tr.Frames())
	}
}

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{"16-bit mono", Format{44100, 1, 16}, false},
		{"24-bit stereo", Format{48000, 2, 24}, false},
		{"zero rate", Format{0, 1, 16}, true},
		{"zero channels", Format{44100, 0, 16}, true},
		{"12-bit", Format{44100, 1, 12}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	tr := Silent(2500*time.Millisecond, Format{SampleRate: 44100, Channels: 2, BitDepth: 16})
	if tr.Frames() != 110250 {
		t.Errorf("Frames() = %d, want 110250", tr.Frames())
	}
	if tr.Duration() != 2500*time.Millisecond {
		t.Errorf("Duration() = %v, want 2.5s", tr.Duration())
	}
	if (Track{}).Duration() != 0 {
		t.Error("zero Track should have zero duration")
	}
}

func TestSliceClamps(t *testing.T) {
	tr := Track{Format: mono16, Samples: []int32{1, 2, 3, 4, 5}}

	tests := []struct {
		start, end int
		want       []int32
	}{
		{1, 3, []int32{2, 3}},
		{-5, 2, []int32{1, 2}},
		{3, 99, []int32{4, 5}},
		{4, 2, []int32{}},
	}

	for _, tt := range tests {
		got := tr.SliceFrames(tt.start, tt.end)
		if len(got.Samples) != len(tt.want) {
			t.Errorf("SliceFrames(%d, %d) = %v, want %v", tt.start, tt.end, got.Samples, tt.want)
			continue
		}
		for i := range tt.want {
			if got.Samples[i] != tt.want[i] {
				t.Errorf("SliceFrames(%d, %d) = %v, want %v", tt.start, tt.end, got.Samples, tt.want)
				break
			}
		}
	}

	// Slices are copies
	s := tr.SliceFrames(0, 2)
	s.Samples[0] = 99
	if tr.Samples[0] != 1 {
		t.Error("SliceFrames aliased the source buffer")
	}
}

func TestReverseKeepsChannelsTogether(t *testing.T) {
	tr := Track{Format: Format{SampleRate: 1000, Channels: 2, BitDepth: 16}, Samples: []int32{1, -1, 2, -2, 3, -3}}
	got := tr.Reverse().Samples
	want := []int32{3, -3, 2, -2, 1, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Reverse() = %v, want %v", got, want)
		}
	}
}

func TestAppendAndConcatRequireMatchingFormat(t *testing.T) {
	a := Silent(time.Second, mono16)
	b := Silent(time.Second, Format{SampleRate: 2000, Channels: 1, BitDepth: 16})

	var mismatch *mediaerr.FormatMismatchError
	if err := a.Append(b); !errors.As(err, &mismatch) {
		t.Errorf("Append() error = %v, want FormatMismatchError", err)
	}
	if _, err := Concat(mono16, a, b); !errors.As(err, &mismatch) {
		t.Errorf("Concat() error = %v, want FormatMismatchError", err)
	}

	if err := a.Append(Silent(time.Second, mono16)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if a.Duration() != 2*time.Second {
		t.Errorf("Duration after Append = %v, want 2s", a.Duration())
	}
}

func TestDBFS(t *testing.T) {
	if got := Silent(time.Second, mono16).DBFS(); !math.IsInf(got, -1) {
		t.Errorf("silence DBFS = %v, want -Inf", got)
	}

	full := Track{Format: mono16, Samples: []int32{32767, -32768, 32767, -32768}}
	if got := full.DBFS(); math.Abs(got) > 0.01 {
		t.Errorf("full-scale square DBFS = %.3f, want ~0", got)
	}
	if got := full.PeakDBFS(); math.Abs(got) > 0.01 {
		t.Errorf("full-scale PeakDBFS = %.3f, want ~0", got)
	}

	sine := generateTone(t, toneOptions{Duration: time.Second, ToneLevel: -6})
	// RMS of a sine is 3 dB below its peak
	if got := sine.DBFS(); math.Abs(got-(-9.01)) > 0.1 {
		t.Errorf("sine DBFS = %.2f, want ~-9.0", got)
	}
}
