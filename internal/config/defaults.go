package config

const (
	defaultAssetsDirName  = "assets"
	defaultFFmpeg         = "ffmpeg"
	defaultFFprobe        = "ffprobe"
	defaultSpeed          = 2.0
	defaultGainDB         = 50.0
	defaultSleepSeconds   = 3.0
	defaultMusic          = "main_music.mp3"
	defaultSampleRate     = 22050
	defaultStretcher      = "native"
	defaultBackground     = "vid_low_q.mp4"
	defaultFont           = "bmashhad.ttf"
	defaultFontSize       = 128
	defaultSynthBackend   = "piper"
	defaultPiperBinary    = "piper"
	defaultSynthTimeout   = 60
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultConfigLocation = "~/.config/arianator/config.toml"
	projectConfigName     = "arianator.toml"
)

// Default returns a Config populated with repository defaults. The assets
// directory is left empty and resolved by Load.
func Default() Config {
	return Config{
		Paths: Paths{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
		},
		Audio: Audio{
			Speed:        defaultSpeed,
			GainDB:       defaultGainDB,
			SleepSeconds: defaultSleepSeconds,
			Music:        defaultMusic,
			SampleRate:   defaultSampleRate,
			Stretcher:    defaultStretcher,
		},
		Video: Video{
			Background: defaultBackground,
			Font:       defaultFont,
			FontSize:   defaultFontSize,
		},
		Synth: Synth{
			Backend:        defaultSynthBackend,
			PiperBinary:    defaultPiperBinary,
			TimeoutSeconds: defaultSynthTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
