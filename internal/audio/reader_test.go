package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linuxmatters/arianator/internal/mediaerr"
)

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	var decodeErr *mediaerr.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Decode() error = %v, want DecodeError", err)
	}
	if decodeErr.Path == "" {
		t.Error("DecodeError should carry the source path")
	}
}

func TestDecodeWAVFile(t *testing.T) {
	tr := generateTone(t, toneOptions{Duration: 300 * time.Millisecond, Channels: 2})

	path := filepath.Join(t.TempDir(), "tone.wav")
	var buf bytes.Buffer
	if err := WriteWAV(&buf, tr); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Format != tr.Format || got.Frames() != tr.Frames() {
		t.Errorf("Decode() = %v/%d frames, want %v/%d frames", got.Format, got.Frames(), tr.Format, tr.Frames())
	}
}

func TestDecodeUnsupportedContainer(t *testing.T) {
	requireFFmpeg(t)

	path := filepath.Join(t.TempDir(), "garbage.mp3")
	if err := os.WriteFile(path, []byte("definitely not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Decode(context.Background(), path)
	var decodeErr *mediaerr.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Decode() error = %v, want DecodeError", err)
	}
}

func TestDecodeBytes(t *testing.T) {
	fallback := Format{SampleRate: 22050, Channels: 1, BitDepth: 16}

	t.Run("raw pcm", func(t *testing.T) {
		got, err := DecodeBytes([]byte{0x01, 0x00, 0xff, 0xff, 0x00}, fallback)
		if err != nil {
			t.Fatalf("DecodeBytes() error = %v", err)
		}
		if got.Format != fallback || len(got.Samples) != 2 || got.Samples[0] != 1 || got.Samples[1] != -1 {
			t.Errorf("DecodeBytes() = %v %v, want [1 -1] in %v", got.Format, got.Samples, fallback)
		}
	})

	t.Run("wav", func(t *testing.T) {
		var buf bytes.Buffer
		src := Track{Format: Format{SampleRate: 16000, Channels: 1, BitDepth: 16}, Samples: []int32{5, 6, 7}}
		if err := WriteWAV(&buf, src); err != nil {
			t.Fatal(err)
		}
		got, err := DecodeBytes(buf.Bytes(), fallback)
		if err != nil {
			t.Fatalf("DecodeBytes() error = %v", err)
		}
		if got.SampleRate != 16000 || got.Frames() != 3 {
			t.Errorf("DecodeBytes() = %v with %d frames, want 16000Hz with 3", got.Format, got.Frames())
		}
	})

	t.Run("empty", func(t *testing.T) {
		var decodeErr *mediaerr.DecodeError
		if _, err := DecodeBytes(nil, fallback); !errors.As(err, &decodeErr) {
			t.Errorf("DecodeBytes(nil) error = %v, want DecodeError", err)
		}
	})
}
