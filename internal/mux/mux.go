// Package mux combines the rendered video and the narration into the final
// file.
package mux

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/arianator/internal/ffmpeg"
	"github.com/linuxmatters/arianator/internal/mediaerr"
)

// Muxer copies the first video stream of one file and the first audio
// stream of another into a new container.
type Muxer struct {
	Binaries ffmpeg.Binaries
	// Shortest ends the output with the shorter input. The narration is
	// fitted to the clip, so this only matters for hand-made inputs.
	Shortest bool
}

// Mux writes outPath. The video stream is copied; audio is encoded with the
// container's usual codec. Output goes to a hidden temporary file in the
// destination directory and is renamed into place on success, so outPath is
// never left half written.
func (m Muxer) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	for _, in := range []string{videoPath, audioPath} {
		if _, err := os.Stat(in); err != nil {
			return &mediaerr.DecodeError{Path: in, Reason: "mux input", Err: err}
		}
	}

	dir, base := filepath.Split(outPath)
	if dir == "" {
		dir = "."
	}
	ext := filepath.Ext(base)
	tmp, err := os.CreateTemp(dir, "."+strings.TrimSuffix(base, ext)+"-*"+ext)
	if err != nil {
		return &mediaerr.EncodeError{Path: outPath, Reason: "create temp output", Err: err}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", audioCodec(ext),
	}
	if m.Shortest {
		args = append(args, "-shortest")
	}
	if strings.EqualFold(ext, ".mp4") || strings.EqualFold(ext, ".mov") {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, "-y", tmpPath)

	if _, err := m.Binaries.Run(ctx, nil, args...); err != nil {
		return &mediaerr.EncodeError{Path: outPath, Reason: "mux", Err: err}
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return &mediaerr.EncodeError{Path: outPath, Reason: "move into place", Err: err}
	}
	committed = true
	return nil
}

// audioCodec picks the audio encoder for a container extension.
func audioCodec(ext string) string {
	switch strings.ToLower(ext) {
	case ".webm", ".ogg", ".ogv":
		return "libopus"
	case ".avi":
		return "libmp3lame"
	default:
		return "aac"
	}
}
