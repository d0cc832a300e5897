package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Piper runs the piper command-line synthesizer. The text goes in on stdin
// and the WAV is written to a temporary file, removed on every path.
type Piper struct {
	Binary  string        // defaults to "piper" on PATH
	TempDir string        // where the intermediate WAV goes; empty uses os.TempDir
	Timeout time.Duration // zero means no limit beyond ctx
}

// Synthesize runs piper with model as the .onnx voice file.
func (p *Piper) Synthesize(ctx context.Context, text, model string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("synthesize: text required")
	}
	if _, err := os.Stat(model); err != nil {
		return nil, fmt.Errorf("synthesize: voice model: %w", err)
	}

	binary := p.Binary
	if binary == "" {
		binary = "piper"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %s not found: %w", binary, err)
	}

	tmp, err := os.CreateTemp(p.TempDir, "arianator-tts-*.wav")
	if err != nil {
		return nil, fmt.Errorf("synthesize: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, "--model", model, "--output_file", tmpPath)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("synthesize: piper: %w: %s", err, truncate(msg, 512))
		}
		return nil, fmt.Errorf("synthesize: piper: %w", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("synthesize: read output: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("synthesize: piper produced no audio")
	}
	return data, nil
}
