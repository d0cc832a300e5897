package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/linuxmatters/arianator/internal/ffmpeg"
	"github.com/linuxmatters/arianator/internal/mediaerr"
)

// Source decodes video files into frame sequences.
type Source struct {
	Binaries ffmpeg.Binaries
}

// Read decodes every frame of path's first video stream into memory, in
// presentation order, keeping fps, size and codec tag.
func (s Source) Read(ctx context.Context, path string) (*FrameSequence, error) {
	info, err := Prober(s).Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	seq := &FrameSequence{
		Width:    info.Width,
		Height:   info.Height,
		FPS:      info.FPS,
		CodecTag: info.CodecTag,
		Frames:   make([]*image.RGBA, 0, info.FrameCount),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chain := &ffmpeg.FilterChain{PixelFormat: "rgba"}
	args := []string{"-i", path, "-map", "0:v:0", "-fps_mode", "passthrough"}
	args = append(args, chain.VideoArgs()...)
	args = append(args, "-f", "rawvideo", "-pix_fmt", "rgba", "pipe:1")
	stdout, wait, err := s.Binaries.Stream(ctx, args...)
	if err != nil {
		return nil, &mediaerr.DecodeError{Path: path, Reason: "start decoder", Err: err}
	}

	readErr := s.readFrames(stdout, seq)
	if readErr != nil {
		cancel()
		io.Copy(io.Discard, stdout)
	}
	waitErr := wait()

	switch {
	case readErr != nil:
		return nil, &mediaerr.DecodeError{Path: path, Reason: readErr.Error(), Err: waitErr}
	case waitErr != nil:
		return nil, &mediaerr.DecodeError{Path: path, Reason: "decode failed", Err: waitErr}
	case len(seq.Frames) == 0:
		return nil, &mediaerr.DecodeError{Path: path, Reason: "no frames decoded"}
	}
	return seq, nil
}

func (s Source) readFrames(r io.Reader, seq *FrameSequence) error {
	size := seq.frameBytes()
	for {
		frame := image.NewRGBA(image.Rect(0, 0, seq.Width, seq.Height))
		_, err := io.ReadFull(r, frame.Pix[:size])
		switch {
		case err == nil:
			seq.Frames = append(seq.Frames, frame)
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("truncated frame %d", len(seq.Frames))
		default:
			return fmt.Errorf("read frame %d: %w", len(seq.Frames), err)
		}
	}
}
