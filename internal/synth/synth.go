// Package synth turns text into speech audio. Backends return the encoded
// audio bytes (WAV, or headerless PCM) and leave decoding to the caller.
package synth

import (
	"context"
	"fmt"

	"github.com/linuxmatters/arianator/internal/config"
)

// Synthesizer produces speech for text using the named voice model.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, model string) ([]byte, error)
}

// New builds the backend selected in the [synth] section.
func New(cfg *config.Config) (Synthesizer, error) {
	switch cfg.Synth.Backend {
	case "http":
		return NewHTTPClient(Config{URL: cfg.Synth.URL, Timeout: cfg.SynthTimeout()}), nil
	case "piper":
		return &Piper{Binary: cfg.Synth.PiperBinary, Timeout: cfg.SynthTimeout()}, nil
	default:
		return nil, fmt.Errorf("synth backend: unsupported value %q", cfg.Synth.Backend)
	}
}
