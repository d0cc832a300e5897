package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateSynth(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAudio() error {
	if math.IsNaN(c.Audio.Speed) || math.IsInf(c.Audio.Speed, 0) || c.Audio.Speed <= 0 {
		return fmt.Errorf("audio.speed must be positive, got %v", c.Audio.Speed)
	}
	if math.IsNaN(c.Audio.GainDB) || math.IsInf(c.Audio.GainDB, 0) {
		return errors.New("audio.gain_db must be finite")
	}
	if math.IsNaN(c.Audio.SleepSeconds) || c.Audio.SleepSeconds < 0 {
		return fmt.Errorf("audio.sleep_seconds must not be negative, got %v", c.Audio.SleepSeconds)
	}
	if c.Audio.SampleRate < 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	switch c.Audio.Stretcher {
	case "native", "ffmpeg":
	default:
		return fmt.Errorf("audio.stretcher: unsupported value %q (want native or ffmpeg)", c.Audio.Stretcher)
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.FontSize <= 0 {
		return fmt.Errorf("video.font_size must be positive, got %d", c.Video.FontSize)
	}
	return nil
}

func (c *Config) validateSynth() error {
	switch c.Synth.Backend {
	case "piper":
	case "http":
		if c.Synth.URL == "" {
			return errors.New("synth.url must be set when synth.backend is http (or set ARIANATOR_TTS_URL)")
		}
	default:
		return fmt.Errorf("synth.backend: unsupported value %q (want piper or http)", c.Synth.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
