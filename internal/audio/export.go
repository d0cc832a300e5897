package audio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/thesyncim/gopus"
	"github.com/thesyncim/gopus/container/ogg"

	"github.com/linuxmatters/arianator/internal/ffmpeg"
	"github.com/linuxmatters/arianator/internal/mediaerr"
)

// FileFormat is an export container.
type FileFormat string

const (
	FormatWAV  FileFormat = "wav"
	FormatMP3  FileFormat = "mp3"
	FormatOpus FileFormat = "opus"
)

const (
	opusSampleRate = 48000
	opusFrameSize  = 960 // 20ms at 48kHz
)

// FormatFromPath maps a file extension to an export format.
func FormatFromPath(path string) (FileFormat, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "wav", "wave":
		return FormatWAV, nil
	case "mp3":
		return FormatMP3, nil
	case "opus", "ogg":
		return FormatOpus, nil
	default:
		return "", &mediaerr.EncodeError{Path: path, Reason: fmt.Sprintf("unsupported audio format %q", ext)}
	}
}

// Exporter writes tracks to disk.
type Exporter struct {
	Binaries ffmpeg.Binaries
	// Bitrate for lossy formats in bits per second; zero uses the encoder default.
	Bitrate int
}

// Export writes the track with the ffmpeg binaries found on PATH.
func Export(ctx context.Context, t Track, path string, format FileFormat) error {
	return Exporter{Binaries: ffmpeg.Default()}.Export(ctx, t, path, format)
}

// Export writes t to path. Partial output is removed on failure.
func (e Exporter) Export(ctx context.Context, t Track, path string, format FileFormat) error {
	if err := t.Format.Validate(); err != nil {
		return &mediaerr.EncodeError{Path: path, Reason: "invalid track", Err: err}
	}

	var err error
	switch format {
	case FormatWAV:
		err = e.writeWAVFile(t, path)
	case FormatMP3:
		err = e.writeMP3(ctx, t, path)
	case FormatOpus:
		err = e.writeOpus(t, path)
	default:
		return &mediaerr.EncodeError{Path: path, Reason: fmt.Sprintf("unsupported audio format %q", format)}
	}
	if err != nil {
		os.Remove(path)
		return &mediaerr.EncodeError{Path: path, Reason: string(format), Err: err}
	}
	return nil
}

func (e Exporter) writeWAVFile(t Track, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := WriteWAV(w, t); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e Exporter) writeMP3(ctx context.Context, t Track, path string) error {
	args := []string{
		"-f", rawSampleFormat(t.BitDepth),
		"-ar", strconv.Itoa(t.SampleRate),
		"-ac", strconv.Itoa(t.Channels),
		"-i", "pipe:0",
		"-c:a", "libmp3lame",
	}
	if e.Bitrate > 0 {
		args = append(args, "-b:a", strconv.Itoa(e.Bitrate))
	} else {
		args = append(args, "-q:a", "2")
	}
	args = append(args, "-y", path)
	_, err := e.Binaries.Run(ctx, bytes.NewReader(EncodePCM(t)), args...)
	return err
}

// writeOpus encodes to Ogg Opus at 48 kHz. More than two channels fold to
// stereo; the final frame is padded with silence.
func (e Exporter) writeOpus(t Track, path string) error {
	channels := min(t.Channels, 2)
	pcm, err := t.Convert(Format{SampleRate: opusSampleRate, Channels: channels, BitDepth: 16})
	if err != nil {
		return err
	}

	enc, err := gopus.NewEncoder(gopus.EncoderConfig{SampleRate: opusSampleRate, Channels: channels, Application: gopus.ApplicationAudio})
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}
	if e.Bitrate > 0 {
		if err := enc.SetBitrate(e.Bitrate); err != nil {
			return fmt.Errorf("set bitrate: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := e.writeOgg(f, enc, pcm.Samples, channels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e Exporter) writeOgg(f io.Writer, enc *gopus.Encoder, samples []int32, channels int) error {
	w := bufio.NewWriter(f)
	oggWriter, err := ogg.NewWriter(w, opusSampleRate, uint8(channels))
	if err != nil {
		return fmt.Errorf("create ogg writer: %w", err)
	}

	frame := make([]int16, opusFrameSize*channels)
	for start := 0; start < len(samples); start += len(frame) {
		clear(frame)
		end := min(start+len(frame), len(samples))
		for i, s := range samples[start:end] {
			frame[i] = int16(s)
		}
		packet, err := enc.EncodeInt16Slice(frame)
		if err != nil {
			return fmt.Errorf("encode frame at %d: %w", start/channels, err)
		}
		if err := oggWriter.WritePacket(packet, opusFrameSize); err != nil {
			return fmt.Errorf("write packet: %w", err)
		}
	}

	if err := oggWriter.Close(); err != nil {
		return fmt.Errorf("close ogg: %w", err)
	}
	return w.Flush()
}
