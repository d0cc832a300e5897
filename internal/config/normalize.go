package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeVideo()
	c.normalizeSynth()
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	c.Paths.AssetsDir = strings.TrimSpace(c.Paths.AssetsDir)
	if c.Paths.AssetsDir == "" {
		c.Paths.AssetsDir = defaultAssetsDir()
	}
	var err error
	if c.Paths.AssetsDir, err = expandPath(c.Paths.AssetsDir); err != nil {
		return fmt.Errorf("paths.assets_dir: %w", err)
	}
	c.Paths.FFmpeg = strings.TrimSpace(c.Paths.FFmpeg)
	if c.Paths.FFmpeg == "" {
		c.Paths.FFmpeg = defaultFFmpeg
	}
	c.Paths.FFprobe = strings.TrimSpace(c.Paths.FFprobe)
	if c.Paths.FFprobe == "" {
		c.Paths.FFprobe = defaultFFprobe
	}
	return nil
}

func (c *Config) normalizeAudio() {
	c.Audio.Music = strings.TrimSpace(c.Audio.Music)
	c.Audio.Stretcher = strings.ToLower(strings.TrimSpace(c.Audio.Stretcher))
	if c.Audio.Stretcher == "" {
		c.Audio.Stretcher = defaultStretcher
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
}

func (c *Config) normalizeVideo() {
	c.Video.Background = strings.TrimSpace(c.Video.Background)
	if c.Video.Background == "" {
		c.Video.Background = defaultBackground
	}
	c.Video.Font = strings.TrimSpace(c.Video.Font)
	if c.Video.Font == "" {
		c.Video.Font = defaultFont
	}
	if c.Video.Workers < 0 {
		c.Video.Workers = 0
	}
}

func (c *Config) normalizeSynth() {
	c.Synth.Backend = strings.ToLower(strings.TrimSpace(c.Synth.Backend))
	if c.Synth.Backend == "" {
		c.Synth.Backend = defaultSynthBackend
	}
	c.Synth.Voice = strings.TrimSpace(c.Synth.Voice)
	c.Synth.URL = strings.TrimSpace(c.Synth.URL)
	if c.Synth.URL == "" {
		if value, ok := os.LookupEnv("ARIANATOR_TTS_URL"); ok {
			c.Synth.URL = strings.TrimSpace(value)
		}
	}
	c.Synth.PiperBinary = strings.TrimSpace(c.Synth.PiperBinary)
	if c.Synth.PiperBinary == "" {
		c.Synth.PiperBinary = defaultPiperBinary
	}
	if c.Synth.TimeoutSeconds <= 0 {
		c.Synth.TimeoutSeconds = defaultSynthTimeout
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
