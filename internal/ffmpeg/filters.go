package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterID identifies a filter in an ffmpeg chain
type FilterID string

// Filter identifiers
const (
	// Audio
	FilterTempo  FilterID = "tempo"  // atempo chain, pitch preserved
	FilterFormat FilterID = "format" // aformat: sample format, rate and channel layout

	// Video
	FilterPixels FilterID = "pixels" // format: pixel format handed to the encoder or pipe
)

// AudioFilterOrder is the default order for audio chains. Tempo runs on the
// source samples; the format filter pins what comes out.
var AudioFilterOrder = []FilterID{
	FilterTempo,
	FilterFormat,
}

// VideoFilterOrder is the default order for video chains.
var VideoFilterOrder = []FilterID{
	FilterPixels,
}

type filterBuilderFunc func(*FilterChain) string

var filterBuilders = map[FilterID]filterBuilderFunc{
	FilterTempo:  (*FilterChain).buildTempoFilter,
	FilterFormat: (*FilterChain).buildFormatFilter,
	FilterPixels: (*FilterChain).buildPixelsFilter,
}

// FilterChain describes the filters for one ffmpeg invocation. Zero fields
// disable the filter that reads them.
type FilterChain struct {
	// Tempo is the playback speed factor; 0 or 1 leaves timing alone
	Tempo float64

	// Output audio format. SampleFormat is an ffmpeg sample_fmt name such
	// as s16 or s32.
	SampleFormat string
	SampleRate   int
	Channels     int

	// PixelFormat is an ffmpeg pix_fmt name such as rgba or yuv420p
	PixelFormat string

	// Order overrides the default order. Filters absent from it are not built.
	Order []FilterID
}

// buildTempoFilter expresses Tempo as chained atempo filters, each within
// the [0.5, 2] range every ffmpeg release accepts.
func (c *FilterChain) buildTempoFilter() string {
	tempo := c.Tempo
	if tempo <= 0 || tempo == 1 {
		return ""
	}
	var parts []string
	for tempo > 2 {
		parts = append(parts, "atempo=2")
		tempo /= 2
	}
	for tempo < 0.5 {
		parts = append(parts, "atempo=0.5")
		tempo /= 0.5
	}
	parts = append(parts, "atempo="+strconv.FormatFloat(tempo, 'f', -1, 64))
	return strings.Join(parts, ",")
}

func (c *FilterChain) buildFormatFilter() string {
	var opts []string
	if c.SampleFormat != "" {
		opts = append(opts, "sample_fmts="+c.SampleFormat)
	}
	if c.SampleRate > 0 {
		opts = append(opts, "sample_rates="+strconv.Itoa(c.SampleRate))
	}
	if c.Channels > 0 {
		opts = append(opts, "channel_layouts="+ChannelLayout(c.Channels))
	}
	if len(opts) == 0 {
		return ""
	}
	return "aformat=" + strings.Join(opts, ":")
}

func (c *FilterChain) buildPixelsFilter() string {
	if c.PixelFormat == "" {
		return ""
	}
	return "format=" + c.PixelFormat
}

// BuildFilterSpec joins the enabled filters in order. An empty result means
// no filter argument is needed.
func (c *FilterChain) BuildFilterSpec() string {
	order := c.Order
	if len(order) == 0 {
		order = AudioFilterOrder
	}

	var filters []string
	for _, id := range order {
		if builder, ok := filterBuilders[id]; ok {
			if spec := builder(c); spec != "" {
				filters = append(filters, spec)
			}
		}
	}
	return strings.Join(filters, ",")
}

// AudioArgs returns "-filter:a <spec>", or nothing when the chain is empty.
func (c *FilterChain) AudioArgs() []string {
	if spec := c.BuildFilterSpec(); spec != "" {
		return []string{"-filter:a", spec}
	}
	return nil
}

// VideoArgs returns "-filter:v <spec>" for the video filters in the chain.
func (c *FilterChain) VideoArgs() []string {
	v := *c
	if len(v.Order) == 0 {
		v.Order = VideoFilterOrder
	}
	if spec := v.BuildFilterSpec(); spec != "" {
		return []string{"-filter:v", spec}
	}
	return nil
}

// ChannelLayout names the default ffmpeg layout for a channel count.
func ChannelLayout(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%dc", channels)
	}
}

// SampleFormat maps a PCM bit depth to the ffmpeg sample format that
// carries it without loss.
func SampleFormat(bitDepth int) string {
	switch bitDepth {
	case 8:
		return "u8"
	case 24, 32:
		return "s32"
	default:
		return "s16"
	}
}
