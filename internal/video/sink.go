package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/linuxmatters/arianator/internal/ffmpeg"
	"github.com/linuxmatters/arianator/internal/mediaerr"
)

// Sink encodes frame sequences to video files.
type Sink struct {
	Binaries ffmpeg.Binaries
}

// Write encodes seq to path in frame order at the sequence's rate, size and
// codec. An existing file is replaced; partial output is removed on error.
func (s Sink) Write(ctx context.Context, path string, seq *FrameSequence) error {
	if err := seq.Validate(); err != nil {
		return &mediaerr.EncodeError{Path: path, Reason: "invalid sequence", Err: err}
	}
	if len(seq.Frames) == 0 {
		return &mediaerr.EncodeError{Path: path, Reason: "no frames to encode"}
	}
	encoder, err := Encoder(seq.CodecTag)
	if err != nil {
		return &mediaerr.EncodeError{Path: path, Reason: "unsupported codec", Err: err}
	}

	pix := pixelFormat(encoder, seq.Width, seq.Height)
	chain := &ffmpeg.FilterChain{PixelFormat: pix}
	args := []string{
		"-f", "rawvideo", "-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", seq.Width, seq.Height),
		"-framerate", strconv.FormatFloat(seq.FPS, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
	}
	args = append(args, chain.VideoArgs()...)
	args = append(args, "-c:v", encoder, "-pix_fmt", pix)
	if tag := normalizeTag(seq.CodecTag); writableTags[tag] {
		args = append(args, "-tag:v", seq.CodecTag)
	}
	args = append(args, "-y", path)

	if err := s.encode(ctx, seq, args); err != nil {
		os.Remove(path)
		return &mediaerr.EncodeError{Path: path, Reason: encoder, Err: err}
	}
	return nil
}

func (s Sink) encode(ctx context.Context, seq *FrameSequence, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stdin, wait, err := s.Binaries.Sink(ctx, args...)
	if err != nil {
		return err
	}

	var writeErr error
	for i, frame := range seq.Frames {
		if _, err := stdin.Write(pixels(frame)); err != nil {
			writeErr = fmt.Errorf("write frame %d: %w", i, err)
			break
		}
	}
	closeErr := stdin.Close()

	// The exit status explains a broken pipe better than the write error
	if err := wait(); err != nil {
		return err
	}
	return errors.Join(writeErr, closeErr)
}
