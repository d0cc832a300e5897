package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/linuxmatters/arianator/internal/audio"
	"github.com/linuxmatters/arianator/internal/mediaerr"
)

// StageID identifies a stage in the narration chain
type StageID string

// Stage identifiers for the narration chain
const (
	StageTrim    StageID = "trim"    // Leading/trailing silence removal
	StageStretch StageID = "stretch" // Pitch-preserving slow down
	StageSplit   StageID = "split"   // Aggressive interior silence removal (optional)
	StageGain    StageID = "gain"    // Loudness distortion, clipping allowed
	StageLoop    StageID = "loop"    // Repeat with gaps to fit the background clip
	StageMix     StageID = "mix"     // Background music overlay (optional)
)

// StageOrder defines the narration chain.
// Trim first so the stretch does not slow down dead air; split after the
// stretch because the stretched silences are what the threshold is tuned
// for; gain before the loop so the gaps stay digitally silent; mix last.
var StageOrder = []StageID{
	StageTrim,
	StageStretch,
	StageSplit,
	StageGain,
	StageLoop,
	StageMix,
}

// stageNames are the labels shown in progress output.
var stageNames = map[StageID]string{
	StageTrim:    "Trimming silence",
	StageStretch: "Stretching",
	StageSplit:   "Removing silences",
	StageGain:    "Distorting",
	StageLoop:    "Looping",
	StageMix:     "Mixing music",
}

// Name returns the display label for the stage.
func (id StageID) Name() string {
	if name, ok := stageNames[id]; ok {
		return name
	}
	return string(id)
}

// stageFunc applies one stage to the track being threaded through.
type stageFunc func(c *Composer, ctx context.Context, t audio.Track, plan *Plan) (audio.Track, error)

// stageRunners maps StageID to its implementation.
var stageRunners = map[StageID]stageFunc{
	StageTrim:    (*Composer).runTrim,
	StageStretch: (*Composer).runStretch,
	StageSplit:   (*Composer).runSplit,
	StageGain:    (*Composer).runGain,
	StageLoop:    (*Composer).runLoop,
	StageMix:     (*Composer).runMix,
}

func (c *Composer) runTrim(_ context.Context, t audio.Track, plan *Plan) (audio.Track, error) {
	out := audio.TrimSilence(t, plan.Trim)
	if out.Empty() {
		return audio.Track{}, &mediaerr.EmptyResultError{Op: "trim silence"}
	}
	return out, nil
}

func (c *Composer) runStretch(ctx context.Context, t audio.Track, plan *Plan) (audio.Track, error) {
	return c.stretcher().Stretch(ctx, t, plan.StretchRatio)
}

func (c *Composer) runSplit(_ context.Context, t audio.Track, plan *Plan) (audio.Track, error) {
	return audio.SplitOnSilenceAndRejoin(t, plan.Split)
}

func (c *Composer) runGain(_ context.Context, t audio.Track, plan *Plan) (audio.Track, error) {
	return audio.ApplyGainDB(t, plan.GainDB), nil
}

func (c *Composer) runLoop(_ context.Context, t audio.Track, plan *Plan) (audio.Track, error) {
	return audio.LoopToDuration(t, plan.Gap, plan.TargetDuration), nil
}

func (c *Composer) runMix(_ context.Context, t audio.Track, plan *Plan) (audio.Track, error) {
	bg, err := plan.Background.Convert(t.Format)
	if err != nil {
		return audio.Track{}, fmt.Errorf("normalise background: %w", err)
	}
	return audio.Mix(t, bg)
}

// Plan is the declarative recipe the composer replays. It holds no I/O:
// the narration arrives decoded and the background music, when set, is
// already a track.
type Plan struct {
	// Order overrides StageOrder; used by tests
	Order []StageID

	Trim audio.SilenceThreshold

	// StretchRatio > 1 slows the narration down
	StretchRatio float64

	// Aggressive enables interior silence removal with Split
	Aggressive bool
	Split      audio.SilenceThreshold

	// GainDB is added without limiting
	GainDB float64

	// Gap is the silence before and after each repetition; TargetDuration
	// is the background clip length the loop must not exceed
	Gap            time.Duration
	TargetDuration time.Duration

	// Background music, mixed under the narration when non-nil
	Background *audio.Track
}

// DefaultPlan returns the stock settings: half speed, +50 dB, 3 s gaps.
// TargetDuration must still be set from the background clip.
func DefaultPlan() *Plan {
	return &Plan{
		Trim:         audio.TrimThreshold(),
		StretchRatio: 2,
		Split:        audio.SplitThreshold(),
		GainDB:       50,
		Gap:          3 * time.Second,
	}
}

// Enabled reports whether the stage runs under this plan.
func (p *Plan) Enabled(id StageID) bool {
	switch id {
	case StageSplit:
		return p.Aggressive
	case StageMix:
		return p.Background != nil
	default:
		return true
	}
}

// Stages returns the enabled stages in execution order.
func (p *Plan) Stages() []StageID {
	order := p.Order
	if len(order) == 0 {
		order = StageOrder
	}
	var stages []StageID
	for _, id := range order {
		if p.Enabled(id) {
			stages = append(stages, id)
		}
	}
	return stages
}

// Validate checks the plan before any audio is touched.
func (p *Plan) Validate() error {
	if !(p.StretchRatio > 0) {
		return fmt.Errorf("stretch ratio must be positive, got %v", p.StretchRatio)
	}
	if p.Gap < 0 {
		return fmt.Errorf("gap must not be negative, got %v", p.Gap)
	}
	if p.TargetDuration <= 0 {
		return fmt.Errorf("target duration must be positive, got %v", p.TargetDuration)
	}
	if p.Trim.MinSilence <= 0 {
		return fmt.Errorf("trim chunk must be positive, got %v", p.Trim.MinSilence)
	}
	if p.Aggressive && p.Split.MinSilence <= 0 {
		return fmt.Errorf("split minimum silence must be positive, got %v", p.Split.MinSilence)
	}
	for _, id := range p.Order {
		if _, ok := stageRunners[id]; !ok {
			return fmt.Errorf("unknown stage %q", id)
		}
	}
	return nil
}
