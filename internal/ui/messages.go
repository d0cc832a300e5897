package ui

import (
	"time"

	"github.com/linuxmatters/arianator/internal/pipeline"
)

// EventMsg carries one pipeline progress event
type EventMsg struct {
	Event pipeline.Event
}

// DoneMsg indicates the pipeline has returned
type DoneMsg struct {
	Summary *pipeline.Summary
	Err     error
}

// tickMsg drives the spinner and the elapsed clock
type tickMsg time.Time
