package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates assets and external tools.
type Paths struct {
	AssetsDir string `toml:"assets_dir"`
	FFmpeg    string `toml:"ffmpeg"`
	FFprobe   string `toml:"ffprobe"`
}

// Audio controls narration composition.
type Audio struct {
	Speed             float64 `toml:"speed"`
	GainDB            float64 `toml:"gain_db"`
	SleepSeconds      float64 `toml:"sleep_seconds"`
	AggressiveSilence bool    `toml:"aggressive_silence"`
	Music             string  `toml:"music"` // empty disables mixing
	SampleRate        int     `toml:"sample_rate"`
	Stretcher         string  `toml:"stretcher"` // native or ffmpeg
}

// Video controls the background clip and the text overlay.
type Video struct {
	Background string `toml:"background"`
	Font       string `toml:"font"`
	FontSize   int    `toml:"font_size"`
	Workers    int    `toml:"workers"` // zero uses GOMAXPROCS
}

// Synth selects the speech synthesis backend.
type Synth struct {
	Backend        string `toml:"backend"` // piper or http
	Voice          string `toml:"voice"`
	URL            string `toml:"url"`
	PiperBinary    string `toml:"piper_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging configures the slog logger.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Config is the complete arianator configuration.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Audio   Audio   `toml:"audio"`
	Video   Video   `toml:"video"`
	Synth   Synth   `toml:"synth"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigLocation)
}

// Load locates, parses, normalizes and validates a configuration file. An
// empty path checks the per-user location and then ./arianator.toml; a
// missing file is not an error and yields the defaults. The returned string
// is the resolved path and the bool reports whether it existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config %s: unknown keys %s\n%s",
					resolvedPath, strings.Join(unknownKeys(strict), ", "), strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// unknownKeys lists the dotted paths go-toml could not map.
func unknownKeys(strict *toml.StrictMissingError) []string {
	keys := make([]string, 0, len(strict.Errors))
	for _, e := range strict.Errors {
		keys = append(keys, strings.Join(e.Key(), "."))
	}
	return keys
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// AssetPath resolves name against the assets directory. Absolute and
// home-relative names are only expanded; an empty name stays empty.
func (c *Config) AssetPath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	if strings.HasPrefix(name, "~") || filepath.IsAbs(name) {
		return expandPath(name)
	}
	return filepath.Join(c.Paths.AssetsDir, name), nil
}

// VoiceModel returns the path of the piper model for voice. A bare voice
// name such as fa_IR-gyro-medium maps to <assets>/fa_IR-gyro-medium.onnx.
func (c *Config) VoiceModel(voice string) (string, error) {
	voice = strings.TrimSpace(voice)
	if voice == "" {
		return "", errors.New("no voice selected")
	}
	if c.Synth.Backend == "http" {
		return voice, nil
	}
	if !strings.HasSuffix(voice, ".onnx") {
		voice += ".onnx"
	}
	return c.AssetPath(voice)
}

// Gap returns the silence between narration repetitions.
func (c *Config) Gap() time.Duration {
	return time.Duration(c.Audio.SleepSeconds * float64(time.Second))
}

// SynthTimeout returns the per-request synthesis timeout.
func (c *Config) SynthTimeout() time.Duration {
	return time.Duration(c.Synth.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for flag values.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// defaultAssetsDir is the assets directory next to the running executable,
// falling back to ./assets.
func defaultAssetsDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Join(filepath.Dir(exe), defaultAssetsDirName)
	}
	return defaultAssetsDirName
}

// CreateSample writes a commented sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
