package mux

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/arianator/internal/ffmpeg"
	"github.com/linuxmatters/arianator/internal/mediaerr"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}
}

func TestMuxCombinesStreams(t *testing.T) {
	requireFFmpeg(t)
	ctx := context.Background()
	bin := ffmpeg.Default()
	dir := t.TempDir()

	video := filepath.Join(dir, "video.mp4")
	if _, err := bin.Run(ctx, nil, "-f", "lavfi", "-i", "testsrc=size=64x48:rate=10:duration=1",
		"-c:v", "mpeg4", "-y", video); err != nil {
		t.Fatalf("generate video: %v", err)
	}
	audio := filepath.Join(dir, "audio.wav")
	if _, err := bin.Run(ctx, nil, "-f", "lavfi", "-i", "sine=frequency=440:duration=1",
		"-y", audio); err != nil {
		t.Fatalf("generate audio: %v", err)
	}

	outDir := t.TempDir()
	out := filepath.Join(outDir, "final.mp4")
	if err := (Muxer{Binaries: bin}).Mux(ctx, video, audio, out); err != nil {
		t.Fatalf("Mux: %v", err)
	}

	result, err := bin.Inspect(ctx, out, false)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if _, ok := result.FirstStream("video"); !ok {
		t.Fatal("output has no video stream")
	}
	a, ok := result.FirstStream("audio")
	if !ok {
		t.Fatal("output has no audio stream")
	}
	if a.CodecName != "aac" {
		t.Errorf("audio codec = %q, want aac", a.CodecName)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the final file, found %d entries", len(entries))
	}
}

func TestMuxMissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "final.mp4")
	err := (Muxer{}).Mux(context.Background(), filepath.Join(dir, "nope.mp4"), filepath.Join(dir, "nope.wav"), out)

	var target *mediaerr.DecodeError
	if !errors.As(err, &target) {
		t.Fatalf("want DecodeError, got %T: %v", err, err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("output should not exist after failure")
	}
}

func TestMuxFailureLeavesNoTemp(t *testing.T) {
	requireFFmpeg(t)
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.mp4")
	if err := os.WriteFile(bogus, []byte("not a video"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()
	err := (Muxer{Binaries: ffmpeg.Default()}).Mux(context.Background(), bogus, bogus, filepath.Join(outDir, "final.mp4"))

	var target *mediaerr.EncodeError
	if !errors.As(err, &target) {
		t.Fatalf("want EncodeError, got %T: %v", err, err)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("temp output left behind: %v", entries)
	}
}

func TestAudioCodec(t *testing.T) {
	tests := map[string]string{
		".mp4":  "aac",
		".MOV":  "aac",
		".mkv":  "aac",
		".webm": "libopus",
		".avi":  "libmp3lame",
	}
	for ext, want := range tests {
		if got := audioCodec(ext); got != want {
			t.Errorf("audioCodec(%q) = %q, want %q", ext, got, want)
		}
	}
}
