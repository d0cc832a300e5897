// Package ffmpeg runs the ffmpeg and ffprobe binaries used as the media
// decode/encode collaborator.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when a binary cannot be located on PATH.
var ErrNotFound = errors.New("ffmpeg binary not found")

// Binaries holds the resolved tool paths. Empty fields fall back to the
// bare command names.
type Binaries struct {
	FFmpeg  string
	FFprobe string
}

// Default returns the binaries looked up by name on PATH.
func Default() Binaries {
	return Binaries{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}
}

func (b Binaries) ffmpeg() string {
	if s := strings.TrimSpace(b.FFmpeg); s != "" {
		return s
	}
	return "ffmpeg"
}

func (b Binaries) ffprobe() string {
	if s := strings.TrimSpace(b.FFprobe); s != "" {
		return s
	}
	return "ffprobe"
}

// Available reports whether both binaries can be resolved.
func (b Binaries) Available() error {
	if _, err := exec.LookPath(b.ffmpeg()); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, b.ffmpeg())
	}
	if _, err := exec.LookPath(b.ffprobe()); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, b.ffprobe())
	}
	return nil
}

// Run executes ffmpeg with the given arguments. stdin may be nil. Output
// written to stdout is returned; stderr is folded into the error on failure.
func (b Binaries) Run(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	full := append([]string{"-hide_banner", "-loglevel", "error", "-nostdin"}, args...)
	if stdin != nil {
		// -nostdin would stop ffmpeg from reading piped input
		full = append([]string{"-hide_banner", "-loglevel", "error"}, args...)
	}
	cmd := exec.CommandContext(ctx, b.ffmpeg(), full...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, commandError("ffmpeg", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Stream starts ffmpeg with stdout attached to the returned reader. The
// caller must drain the reader and call wait to collect the exit status.
func (b Binaries) Stream(ctx context.Context, args ...string) (io.ReadCloser, func() error, error) {
	full := append([]string{"-hide_banner", "-loglevel", "error", "-nostdin"}, args...)
	cmd := exec.CommandContext(ctx, b.ffmpeg(), full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, commandError("ffmpeg", err, "")
	}
	wait := func() error {
		if err := cmd.Wait(); err != nil {
			return commandError("ffmpeg", err, stderr.String())
		}
		return nil
	}
	return stdout, wait, nil
}

// Sink starts ffmpeg with stdin attached to the returned writer. Closing
// the writer signals end of input; wait collects the exit status.
func (b Binaries) Sink(ctx context.Context, args ...string) (io.WriteCloser, func() error, error) {
	full := append([]string{"-hide_banner", "-loglevel", "error"}, args...)
	cmd := exec.CommandContext(ctx, b.ffmpeg(), full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, commandError("ffmpeg", err, "")
	}
	wait := func() error {
		if err := cmd.Wait(); err != nil {
			return commandError("ffmpeg", err, stderr.String())
		}
		return nil
	}
	return stdin, wait, nil
}

func commandError(name string, err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		return fmt.Errorf("%s: %w", name, err)
	}
	return fmt.Errorf("%s: %w: %s", name, err, msg)
}
