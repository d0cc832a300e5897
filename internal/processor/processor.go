// Package processor composes the narration track: it threads a decoded
// track through trim, stretch, optional silence removal, gain, loop and
// optional music mixing.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/linuxmatters/arianator/internal/audio"
)

// ProgressFunc receives stage updates. progress is 0 when a stage starts and
// 1 when it finishes; level is the track's RMS in dBFS after the stage.
type ProgressFunc func(stage StageID, progress float64, level float64)

// StageReport records what one stage did.
type StageReport struct {
	ID      StageID
	Input   time.Duration // audio length in
	Output  time.Duration // audio length out
	LevelDB float64       // RMS dBFS after the stage
	PeakDB  float64       // peak dBFS after the stage
	Elapsed time.Duration // wall clock
}

// Result is the composed narration plus per-stage reports.
type Result struct {
	Track  audio.Track
	Stages []StageReport
}

// Composer runs a Plan. It keeps no audio between calls.
type Composer struct {
	// Stretcher defaults to the pure Go WSOLA implementation
	Stretcher audio.Stretcher
}

func (c *Composer) stretcher() audio.Stretcher {
	if c.Stretcher == nil {
		return audio.WSOLAStretcher{}
	}
	return c.Stretcher
}

// Compose applies the plan to track. Any stage error aborts the run and is
// returned wrapped with the stage name; an empty track after trimming or
// splitting is reported as mediaerr.EmptyResultError.
func (c *Composer) Compose(ctx context.Context, track audio.Track, plan *Plan, progress ProgressFunc) (*Result, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	result := &Result{}
	current := track
	for _, id := range plan.Stages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(id, 0, current.DBFS())
		}

		start := time.Now()
		next, err := stageRunners[id](c, ctx, current, plan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}

		report := StageReport{
			ID:      id,
			Input:   current.Duration(),
			Output:  next.Duration(),
			LevelDB: next.DBFS(),
			PeakDB:  next.PeakDBFS(),
			Elapsed: time.Since(start),
		}
		result.Stages = append(result.Stages, report)
		current = next

		if progress != nil {
			progress(id, 1, report.LevelDB)
		}
	}

	result.Track = current
	return result, nil
}
