package video

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/linuxmatters/arianator/internal/ffmpeg"
	"github.com/linuxmatters/arianator/internal/mediaerr"
)

// Info describes the first video stream of a file.
type Info struct {
	Width      int
	Height     int
	FPS        float64
	CodecTag   string
	CodecName  string
	FrameCount int
}

// Duration is FrameCount/FPS, the length the narration is fitted to.
func (i Info) Duration() time.Duration {
	if i.FPS <= 0 {
		return 0
	}
	return time.Duration(float64(i.FrameCount) / i.FPS * float64(time.Second))
}

// Prober reads stream metadata with ffprobe.
type Prober struct {
	Binaries ffmpeg.Binaries
}

// Probe inspects path. When the container carries no frame count the
// stream is decoded once to count frames.
func (p Prober) Probe(ctx context.Context, path string) (Info, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, &mediaerr.DecodeError{Path: path, Reason: "file not found", Err: err}
		}
		return Info{}, &mediaerr.DecodeError{Path: path, Err: err}
	}

	result, err := p.Binaries.Inspect(ctx, path, false)
	if err != nil {
		return Info{}, &mediaerr.DecodeError{Path: path, Reason: "probe failed", Err: err}
	}
	stream, ok := result.FirstStream("video")
	if !ok {
		return Info{}, &mediaerr.DecodeError{Path: path, Reason: "no video stream found"}
	}
	if stream.FrameCount() == 0 {
		counted, err := p.Binaries.Inspect(ctx, path, true)
		if err != nil {
			return Info{}, &mediaerr.DecodeError{Path: path, Reason: "frame count failed", Err: err}
		}
		if s, ok := counted.FirstStream("video"); ok {
			stream = s
		}
	}

	info := Info{
		Width:      stream.Width,
		Height:     stream.Height,
		FPS:        stream.FrameRate(),
		CodecName:  stream.CodecName,
		FrameCount: stream.FrameCount(),
	}
	info.CodecTag = stream.CodecName
	if isFourCC(stream.CodecTag) {
		info.CodecTag = stream.CodecTag
	}

	if info.Width <= 0 || info.Height <= 0 {
		return Info{}, &mediaerr.DecodeError{Path: path, Reason: fmt.Sprintf("invalid frame size %dx%d", info.Width, info.Height)}
	}
	if info.FPS <= 0 {
		return Info{}, &mediaerr.DecodeError{Path: path, Reason: "unknown frame rate"}
	}
	return info, nil
}

// Duration returns frameCount/fps for the clip at path.
func Duration(ctx context.Context, path string) (time.Duration, error) {
	info, err := Prober{Binaries: ffmpeg.Default()}.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration(), nil
}
