package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

var errNotWAV = errors.New("not a RIFF/WAVE stream")

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// ReadWAV parses a RIFF/WAVE stream holding integer PCM (8, 16, 24 or 32
// bit) or 32-bit IEEE float. Float input is converted to 32-bit integers.
// A data chunk whose declared size exceeds the stream, as written by
// encoders that cannot seek back, is read to the end.
func ReadWAV(data []byte) (Track, error) {
	if !IsWAV(data) {
		return Track{}, errNotWAV
	}

	var (
		format   Format
		tag      uint16
		haveFmt  bool
		payload  []byte
		havePCM  bool
		position = 12
	)

	for position+8 <= len(data) && !havePCM {
		id := string(data[position : position+4])
		size := int(binary.LittleEndian.Uint32(data[position+4 : position+8]))
		body := position + 8
		end := body + size
		if end > len(data) || end < body {
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return Track{}, errors.New("fmt chunk too short")
			}
			chunk := data[body:end]
			tag = binary.LittleEndian.Uint16(chunk[0:2])
			format.Channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(chunk[4:8]))
			format.BitDepth = int(binary.LittleEndian.Uint16(chunk[14:16]))
			if tag == wavFormatExtensible && len(chunk) >= 26 {
				tag = binary.LittleEndian.Uint16(chunk[24:26])
			}
			haveFmt = true
		case "data":
			payload = data[body:end]
			havePCM = true
		}

		// Chunks are word aligned
		position = end + size%2
	}

	if !haveFmt {
		return Track{}, errors.New("missing fmt chunk")
	}
	if !havePCM {
		return Track{}, errors.New("missing data chunk")
	}

	switch tag {
	case wavFormatPCM:
	case wavFormatIEEEFloat:
		if format.BitDepth != 32 {
			return Track{}, fmt.Errorf("unsupported float bit depth %d", format.BitDepth)
		}
		return decodeFloat32(format, payload)
	default:
		return Track{}, fmt.Errorf("unsupported wav format tag %#x", tag)
	}

	if err := format.Validate(); err != nil {
		return Track{}, err
	}
	samples, err := DecodePCM(payload, format)
	if err != nil {
		return Track{}, err
	}
	return Track{Format: format, Samples: samples}, nil
}

func decodeFloat32(format Format, payload []byte) (Track, error) {
	format.BitDepth = 32
	if err := format.Validate(); err != nil {
		return Track{}, err
	}
	frameBytes := 4 * format.Channels
	n := len(payload) / frameBytes * format.Channels
	out := Track{Format: format, Samples: make([]int32, n)}
	for i := range n {
		v := float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:])))
		out.Samples[i] = out.clamp(int64(math.Round(v * out.MaxAmplitude())))
	}
	return out, nil
}

// WriteWAV writes the track as integer PCM WAV at its own bit depth.
func WriteWAV(w io.Writer, t Track) error {
	if err := t.Format.Validate(); err != nil {
		return err
	}
	pcm := EncodePCM(t)
	bytesPerSample := t.BitDepth / 8
	blockAlign := t.Channels * bytesPerSample

	var hdr bytes.Buffer
	hdr.WriteString("RIFF")
	binary.Write(&hdr, binary.LittleEndian, uint32(36+len(pcm)))
	hdr.WriteString("WAVE")
	hdr.WriteString("fmt ")
	binary.Write(&hdr, binary.LittleEndian, uint32(16))
	binary.Write(&hdr, binary.LittleEndian, uint16(wavFormatPCM))
	binary.Write(&hdr, binary.LittleEndian, uint16(t.Channels))
	binary.Write(&hdr, binary.LittleEndian, uint32(t.SampleRate))
	binary.Write(&hdr, binary.LittleEndian, uint32(t.SampleRate*blockAlign))
	binary.Write(&hdr, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&hdr, binary.LittleEndian, uint16(t.BitDepth))
	hdr.WriteString("data")
	binary.Write(&hdr, binary.LittleEndian, uint32(len(pcm)))

	if _, err := w.Write(hdr.Bytes()); err != nil {
		return err
	}
	if _, err := w.Write(pcm); err != nil {
		return err
	}
	if len(pcm)%2 == 1 {
		_, err := w.Write([]byte{0})
		return err
	}
	return nil
}

// DecodePCM converts little-endian PCM bytes to samples. 8-bit input is
// unsigned, as in WAV; wider depths are signed. Trailing bytes that do not
// form a whole frame are dropped.
func DecodePCM(data []byte, f Format) ([]int32, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	width := f.BitDepth / 8
	frameBytes := width * f.Channels
	n := len(data) / frameBytes * f.Channels
	out := make([]int32, n)
	for i := range n {
		b := data[i*width:]
		switch width {
		case 1:
			out[i] = int32(b[0]) - 128
		case 2:
			out[i] = int32(int16(binary.LittleEndian.Uint16(b)))
		case 3:
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			out[i] = v << 8 >> 8
		case 4:
			out[i] = int32(binary.LittleEndian.Uint32(b))
		}
	}
	return out, nil
}

// EncodePCM converts the track's samples to little-endian PCM bytes in the
// layout DecodePCM reads.
func EncodePCM(t Track) []byte {
	width := t.BitDepth / 8
	out := make([]byte, len(t.Samples)*width)
	for i, s := range t.Samples {
		b := out[i*width:]
		switch width {
		case 1:
			b[0] = byte(s + 128)
		case 2:
			binary.LittleEndian.PutUint16(b, uint16(int16(s)))
		case 3:
			b[0] = byte(s)
			b[1] = byte(s >> 8)
			b[2] = byte(s >> 16)
		case 4:
			binary.LittleEndian.PutUint32(b, uint32(s))
		}
	}
	return out
}

// rawSampleFormat names the ffmpeg raw demuxer matching EncodePCM output.
func rawSampleFormat(depth int) string {
	switch depth {
	case 8:
		return "u8"
	case 24:
		return "s24le"
	case 32:
		return "s32le"
	default:
		return "s16le"
	}
}
