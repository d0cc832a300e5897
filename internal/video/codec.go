package video

import (
	"fmt"
	"strings"
)

// encoderForTag maps four-character codec tags and ffprobe codec names to
// ffmpeg encoders.
var encoderForTag = map[string]string{
	"avc1":  "libx264",
	"h264":  "libx264",
	"x264":  "libx264",
	"mp4v":  "mpeg4",
	"fmp4":  "mpeg4",
	"xvid":  "mpeg4",
	"divx":  "mpeg4",
	"mpeg4": "mpeg4",
	"mjpg":  "mjpeg",
	"mjpeg": "mjpeg",
	"hvc1":  "libx265",
	"hev1":  "libx265",
	"hevc":  "libx265",
	"vp09":  "libvpx-vp9",
	"vp9":   "libvpx-vp9",
	"vp80":  "libvpx",
	"vp8":   "libvpx",
}

// writableTags are fourcc values ffmpeg accepts back through -tag:v.
var writableTags = map[string]bool{
	"avc1": true, "hvc1": true, "hev1": true, "mp4v": true, "vp09": true,
	"xvid": true, "divx": true, "fmp4": true, "mjpg": true,
}

// Encoder returns the ffmpeg encoder for a codec tag.
func Encoder(tag string) (string, error) {
	enc, ok := encoderForTag[normalizeTag(tag)]
	if !ok {
		return "", fmt.Errorf("unsupported codec tag %q", tag)
	}
	return enc, nil
}

// pixelFormat picks an input layout the encoder accepts for the frame size.
func pixelFormat(encoder string, width, height int) string {
	switch encoder {
	case "mjpeg":
		return "yuvj420p"
	case "libx264", "libx265", "libvpx-vp9":
		if width%2 != 0 || height%2 != 0 {
			return "yuv444p"
		}
	}
	return "yuv420p"
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// isFourCC reports whether ffprobe's codec_tag_string is a printable tag
// rather than a placeholder such as "[0][0][0][0]".
func isFourCC(tag string) bool {
	if len(tag) != 4 {
		return false
	}
	for _, r := range tag {
		if r < 0x20 || r > 0x7e || r == '[' {
			return false
		}
	}
	return true
}
