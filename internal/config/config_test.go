package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linuxmatters/arianator/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARIANATOR_TTS_URL", "")

	missing := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to report exists=false")
	}
	if resolved != missing {
		t.Fatalf("resolved = %q, want %q", resolved, missing)
	}

	def := config.Default()
	if cfg.Audio.Speed != def.Audio.Speed || cfg.Audio.GainDB != def.Audio.GainDB {
		t.Fatalf("audio defaults changed: %+v", cfg.Audio)
	}
	if cfg.Gap() != 3*time.Second {
		t.Fatalf("Gap() = %v, want 3s", cfg.Gap())
	}
	if cfg.Video.FontSize != 128 {
		t.Fatalf("font size = %d, want 128", cfg.Video.FontSize)
	}
	if !filepath.IsAbs(cfg.Paths.AssetsDir) {
		t.Fatalf("assets dir %q is not absolute", cfg.Paths.AssetsDir)
	}
	if filepath.Base(cfg.Paths.AssetsDir) != "assets" {
		t.Fatalf("assets dir %q does not end in assets", cfg.Paths.AssetsDir)
	}
	if cfg.Synth.Backend != "piper" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected backend/format: %q %q", cfg.Synth.Backend, cfg.Logging.Format)
	}
}

func TestLoadOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assets := t.TempDir()

	path := writeConfig(t, `
[paths]
assets_dir = "`+filepath.ToSlash(assets)+`"

[audio]
speed = 1.5
gain_db = 12
sleep_seconds = 0.5
aggressive_silence = true
music = ""
stretcher = "FFmpeg"

[video]
background = "clip.mp4"
font = "~/fonts/Vazir.ttf"
font_size = 64
workers = 3

[synth]
backend = "http"
url = "http://localhost:5000/tts"
voice = "fa_IR-amir-medium"

[logging]
level = "DEBUG"
format = "json"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Audio.Speed != 1.5 || cfg.Audio.GainDB != 12 || !cfg.Audio.AggressiveSilence {
		t.Fatalf("audio not parsed: %+v", cfg.Audio)
	}
	if cfg.Audio.Music != "" {
		t.Fatalf("music should be disabled, got %q", cfg.Audio.Music)
	}
	if cfg.Audio.Stretcher != "ffmpeg" {
		t.Fatalf("stretcher not normalized: %q", cfg.Audio.Stretcher)
	}
	if cfg.Gap() != 500*time.Millisecond {
		t.Fatalf("Gap() = %v", cfg.Gap())
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}

	bg, err := cfg.AssetPath(cfg.Video.Background)
	if err != nil {
		t.Fatalf("AssetPath: %v", err)
	}
	if bg != filepath.Join(assets, "clip.mp4") {
		t.Fatalf("background = %q", bg)
	}
	font, err := cfg.AssetPath(cfg.Video.Font)
	if err != nil {
		t.Fatalf("AssetPath: %v", err)
	}
	if font != filepath.Join(home, "fonts", "Vazir.ttf") {
		t.Fatalf("font = %q", font)
	}

	model, err := cfg.VoiceModel(cfg.Synth.Voice)
	if err != nil {
		t.Fatalf("VoiceModel: %v", err)
	}
	if model != "fa_IR-amir-medium" {
		t.Fatalf("http backend should pass the voice through, got %q", model)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARIANATOR_TTS_URL", "")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero speed", "[audio]\nspeed = 0\n", "audio.speed"},
		{"negative speed", "[audio]\nspeed = -2\n", "audio.speed"},
		{"negative sleep", "[audio]\nsleep_seconds = -1\n", "audio.sleep_seconds"},
		{"unknown stretcher", "[audio]\nstretcher = \"rubberband\"\n", "audio.stretcher"},
		{"zero font size", "[video]\nfont_size = 0\n", "video.font_size"},
		{"unknown backend", "[synth]\nbackend = \"espeak\"\n", "synth.backend"},
		{"http without url", "[synth]\nbackend = \"http\"\n", "synth.url"},
		{"unknown format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"unknown level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"unknown key", "[audio]\nvolume = 3\n", "audio.volume"},
		{"misspelled key", "[video]\nfontsize = 12\n", "video.fontsize"},
		{"unknown section", "[display]\nwidth = 640\n", "display"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := config.Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestVoiceModelPiper(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.AssetsDir = "/opt/arianator/assets"

	tests := []struct {
		voice string
		want  string
	}{
		{"fa_IR-gyro-medium", "/opt/arianator/assets/fa_IR-gyro-medium.onnx"},
		{"custom.onnx", "/opt/arianator/assets/custom.onnx"},
		{"/models/en_US-lessac.onnx", "/models/en_US-lessac.onnx"},
	}
	for _, tt := range tests {
		got, err := cfg.VoiceModel(tt.voice)
		if err != nil {
			t.Fatalf("VoiceModel(%q): %v", tt.voice, err)
		}
		if filepath.ToSlash(got) != tt.want {
			t.Errorf("VoiceModel(%q) = %q, want %q", tt.voice, got, tt.want)
		}
	}

	if _, err := cfg.VoiceModel(""); err == nil {
		t.Fatal("expected error for empty voice")
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARIANATOR_TTS_URL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Audio.Music != "main_music.mp3" {
		t.Fatalf("sample music = %q", cfg.Audio.Music)
	}
}
