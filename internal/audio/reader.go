package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/linuxmatters/arianator/internal/ffmpeg"
	"github.com/linuxmatters/arianator/internal/mediaerr"
)

// Metadata contains audio file metadata
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	Codec      string
}

// Decoder reads audio files into tracks. WAV is parsed directly; any other
// container goes through ffmpeg.
type Decoder struct {
	Binaries ffmpeg.Binaries
}

// Decode reads path with the ffmpeg binaries found on PATH.
func Decode(ctx context.Context, path string) (Track, error) {
	return Decoder{Binaries: ffmpeg.Default()}.Decode(ctx, path)
}

// Probe returns the first audio stream's parameters.
func (d Decoder) Probe(ctx context.Context, path string) (*Metadata, error) {
	if err := checkReadable(path); err != nil {
		return nil, err
	}
	result, err := d.Binaries.Inspect(ctx, path, false)
	if err != nil {
		return nil, &mediaerr.DecodeError{Path: path, Reason: "probe failed", Err: err}
	}
	stream, ok := result.FirstStream("audio")
	if !ok {
		return nil, &mediaerr.DecodeError{Path: path, Reason: "no audio stream found"}
	}
	meta := &Metadata{
		Duration:   result.DurationSeconds(),
		SampleRate: stream.SampleRateHz(),
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
	}
	if meta.SampleRate <= 0 || meta.Channels <= 0 {
		return nil, &mediaerr.DecodeError{Path: path, Reason: "audio stream has no sample rate or channel layout"}
	}
	return meta, nil
}

// Decode reads the first audio stream of path. Non-WAV input is decoded
// to 16-bit PCM at the stream's native rate and channel count.
func (d Decoder) Decode(ctx context.Context, path string) (Track, error) {
	if err := checkReadable(path); err != nil {
		return Track{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Track{}, &mediaerr.DecodeError{Path: path, Reason: "read failed", Err: err}
	}
	if IsWAV(data) {
		t, err := ReadWAV(data)
		if err == nil {
			return t, nil
		}
		// Compressed or unusual WAV payloads are left to ffmpeg
	}

	meta, err := d.Probe(ctx, path)
	if err != nil {
		return Track{}, err
	}
	f := Format{SampleRate: meta.SampleRate, Channels: meta.Channels, BitDepth: 16}
	chain := &ffmpeg.FilterChain{
		SampleFormat: ffmpeg.SampleFormat(f.BitDepth),
		SampleRate:   f.SampleRate,
		Channels:     f.Channels,
	}
	args := []string{"-i", path, "-map", "0:a:0"}
	args = append(args, chain.AudioArgs()...)
	args = append(args,
		"-f", "s16le", "-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(f.SampleRate), "-ac", strconv.Itoa(f.Channels),
		"pipe:1",
	)
	out, err := d.Binaries.Run(ctx, nil, args...)
	if err != nil {
		return Track{}, &mediaerr.DecodeError{Path: path, Reason: "ffmpeg decode failed", Err: err}
	}
	samples, err := DecodePCM(out, f)
	if err != nil {
		return Track{}, &mediaerr.DecodeError{Path: path, Err: err}
	}
	return Track{Format: f, Samples: samples}, nil
}

// DecodeBytes turns synthesized audio into a track. RIFF/WAVE data is
// parsed; anything else is taken as headerless little-endian PCM in the
// fallback format.
func DecodeBytes(data []byte, fallback Format) (Track, error) {
	if len(data) == 0 {
		return Track{}, &mediaerr.DecodeError{Reason: "no audio data"}
	}
	if IsWAV(data) {
		t, err := ReadWAV(data)
		if err != nil {
			return Track{}, &mediaerr.DecodeError{Reason: "invalid wav data", Err: err}
		}
		return t, nil
	}
	samples, err := DecodePCM(data, fallback)
	if err != nil {
		return Track{}, &mediaerr.DecodeError{Reason: "invalid raw pcm", Err: err}
	}
	return Track{Format: fallback, Samples: samples}, nil
}

func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &mediaerr.DecodeError{Path: path, Reason: "file not found", Err: err}
		}
		return &mediaerr.DecodeError{Path: path, Err: err}
	}
	if info.IsDir() {
		return &mediaerr.DecodeError{Path: path, Reason: fmt.Sprintf("%s is a directory", path)}
	}
	return nil
}
