package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/linuxmatters/arianator/internal/audio"
	"github.com/linuxmatters/arianator/internal/config"
	"github.com/linuxmatters/arianator/internal/ffmpeg"
	"github.com/linuxmatters/arianator/internal/locale"
	"github.com/linuxmatters/arianator/internal/overlay"
	"github.com/linuxmatters/arianator/internal/pipeline"
	"github.com/linuxmatters/arianator/internal/processor"
	"github.com/linuxmatters/arianator/internal/synth"
)

// apply copies explicitly set flags over the loaded configuration.
func (c *CLI) apply(cfg *config.Config) {
	if c.SpeedMul != nil {
		cfg.Audio.Speed = *c.SpeedMul
	}
	if c.Gain != nil {
		cfg.Audio.GainDB = *c.Gain
	}
	if c.Aggressive {
		cfg.Audio.AggressiveSilence = true
	}
	if c.Sleep != nil {
		cfg.Audio.SleepSeconds = *c.Sleep
	}
	if c.Video != "" {
		cfg.Video.Background = c.Video
	}
	if c.Font != "" {
		cfg.Video.Font = c.Font
	}
	if c.FontSize != nil {
		cfg.Video.FontSize = *c.FontSize
	}
	if c.Music != "" {
		cfg.Audio.Music = c.Music
	}
	if c.NoMusic {
		cfg.Audio.Music = ""
	}
	if c.Voice != "" {
		cfg.Synth.Voice = c.Voice
	}
	if s := strings.ToLower(strings.TrimSpace(c.Stretcher)); s != "" {
		cfg.Audio.Stretcher = s
	}
	if c.Workers != nil {
		cfg.Video.Workers = max(*c.Workers, 0)
	}
	if c.Verbose {
		cfg.Logging.Level = "debug"
	}
}

// buildOptions resolves assets and backends into pipeline options. It
// returns the voice name used, which also picks the text direction.
func buildOptions(cfg *config.Config, c *CLI, logger *slog.Logger) (pipeline.Options, string, error) {
	voice := cfg.Synth.Voice
	if voice == "" {
		voice = locale.Voice()
	}
	model, err := cfg.VoiceModel(voice)
	if err != nil {
		return pipeline.Options{}, "", err
	}

	synthesizer, err := synth.New(cfg)
	if err != nil {
		return pipeline.Options{}, "", err
	}

	background, err := cfg.AssetPath(cfg.Video.Background)
	if err != nil {
		return pipeline.Options{}, "", fmt.Errorf("video.background: %w", err)
	}
	font, err := cfg.AssetPath(cfg.Video.Font)
	if err != nil {
		return pipeline.Options{}, "", fmt.Errorf("video.font: %w", err)
	}
	music, err := cfg.AssetPath(cfg.Audio.Music)
	if err != nil {
		return pipeline.Options{}, "", fmt.Errorf("audio.music: %w", err)
	}

	binaries := ffmpeg.Binaries{FFmpeg: cfg.Paths.FFmpeg, FFprobe: cfg.Paths.FFprobe}

	plan := processor.DefaultPlan()
	plan.StretchRatio = cfg.Audio.Speed
	plan.GainDB = cfg.Audio.GainDB
	plan.Aggressive = cfg.Audio.AggressiveSilence
	plan.Gap = cfg.Gap()

	opts := pipeline.Options{
		Text:      c.Text,
		Voice:     model,
		Synth:     synthesizer,
		Binaries:  binaries,
		Stretcher: newStretcher(cfg.Audio.Stretcher, binaries),
		Plan:      *plan,
		MusicPath: music,
		RawFormat: audio.Format{SampleRate: cfg.Audio.SampleRate, Channels: 1, BitDepth: 16},

		BackgroundPath: background,
		Overlay: overlay.Spec{
			FontPath:  font,
			FontSize:  cfg.Video.FontSize,
			Direction: locale.Direction(voice),
		},
		Workers: cfg.Video.Workers,

		AudioOutput: c.AudioOutput,
		VideoOutput: c.VideoOutput,
		Logger:      logger,
	}
	return opts, voice, nil
}

func newStretcher(name string, binaries ffmpeg.Binaries) audio.Stretcher {
	if name == "ffmpeg" {
		return audio.FFmpegStretcher{Binaries: binaries}
	}
	return audio.WSOLAStretcher{}
}
