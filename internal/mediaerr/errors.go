// Package mediaerr defines the error taxonomy shared by the audio, video,
// synthesis and pipeline packages.
//
// Every failure that aborts a run is one of these types so callers can
// classify it with errors.As regardless of which stage produced it.
package mediaerr

import (
	"fmt"
	"strings"
)

// DecodeError reports media that could not be read: a missing file, an
// unsupported container or codec, or a corrupt stream.
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	return describe("decode", e.Path, e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports media that could not be written, usually because the
// requested format or codec is not supported by the encoder.
type EncodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *EncodeError) Error() string {
	return describe("encode", e.Path, e.Reason, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// NetworkError reports an unreachable synthesis backend or a non-success
// HTTP status. Status is zero when no response was received.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("network: %s returned status %d: %v", e.URL, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("network: %s returned status %d", e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("network: %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("network: %s: request failed", e.URL)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UnexpectedResponseFormatError reports a synthesis backend that answered
// with structured data (its error payload) instead of audio.
type UnexpectedResponseFormatError struct {
	ContentType string
	Payload     string
}

func (e *UnexpectedResponseFormatError) Error() string {
	payload := strings.TrimSpace(e.Payload)
	if len(payload) > 512 {
		payload = payload[:512] + "..."
	}
	if e.ContentType == "" {
		return fmt.Sprintf("unexpected response format: expected audio, got %s", payload)
	}
	return fmt.Sprintf("unexpected response format (%s): expected audio, got %s", e.ContentType, payload)
}

// FormatMismatchError reports two tracks whose sample layout differs where
// an operation requires them to match.
type FormatMismatchError struct {
	Op    string
	Left  string
	Right string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("%s: format mismatch: %s vs %s", e.Op, e.Left, e.Right)
}

// EmptyResultError reports an operation that removed all content.
type EmptyResultError struct {
	Op string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: no audio left", e.Op)
}

func describe(kind, path, reason string, err error) string {
	var b strings.Builder
	b.WriteString(kind)
	if path != "" {
		b.WriteString(" ")
		b.WriteString(path)
	}
	if reason != "" {
		b.WriteString(": ")
		b.WriteString(reason)
	}
	if err != nil {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}
