package pipeline

import (
	"math"
	"time"
)

// Step identifies one unit of pipeline work.
type Step string

const (
	StepSynthesize Step = "synthesize"
	StepDecode     Step = "decode"
	StepProbe      Step = "probe"
	StepMusic      Step = "music"
	StepCompose    Step = "compose"
	StepExport     Step = "export"
	StepFrames     Step = "frames"
	StepOverlay    Step = "overlay"
	StepEncode     Step = "encode"
	StepMux        Step = "mux"
)

// StepOrder is the order Run executes steps in.
var StepOrder = []Step{
	StepSynthesize,
	StepDecode,
	StepProbe,
	StepMusic,
	StepCompose,
	StepExport,
	StepFrames,
	StepOverlay,
	StepEncode,
	StepMux,
}

var stepLabels = map[Step]string{
	StepSynthesize: "Synthesizing speech",
	StepDecode:     "Decoding speech",
	StepProbe:      "Probing background",
	StepMusic:      "Loading music",
	StepCompose:    "Composing narration",
	StepExport:     "Exporting audio",
	StepFrames:     "Reading frames",
	StepOverlay:    "Drawing text",
	StepEncode:     "Encoding video",
	StepMux:        "Muxing",
}

// Label returns the display label for the step.
func (s Step) Label() string {
	if label, ok := stepLabels[s]; ok {
		return label
	}
	return string(s)
}

// State is a step's lifecycle position.
type State int

const (
	Queued State = iota
	Running
	Done
	Skipped
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "queued"
	}
}

// Event reports progress of one step.
type Event struct {
	Step     Step
	State    State
	Progress float64 // 0..1 within the step
	Detail   string  // e.g. the composition stage being run
	Level    float64 // narration RMS in dBFS, NaN when not applicable
	Elapsed  time.Duration
	Err      error // set when State is Failed
}

// HasLevel reports whether the event carries an audio level.
func (e Event) HasLevel() bool {
	return !math.IsNaN(e.Level)
}

// Progress receives pipeline events. It is called from the goroutine
// running the pipeline and from overlay workers, so it must be safe for
// concurrent use.
type Progress func(Event)
