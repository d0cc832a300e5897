// Package pipeline drives one arianator run: speech synthesis, narration
// composition, text overlay and the final mux. Steps run in sequence; each
// one's output feeds the next and any failure aborts the run after the
// scoped workspace has been cleaned up.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/linuxmatters/arianator/internal/audio"
	"github.com/linuxmatters/arianator/internal/ffmpeg"
	"github.com/linuxmatters/arianator/internal/logging"
	"github.com/linuxmatters/arianator/internal/mux"
	"github.com/linuxmatters/arianator/internal/overlay"
	"github.com/linuxmatters/arianator/internal/processor"
	"github.com/linuxmatters/arianator/internal/synth"
	"github.com/linuxmatters/arianator/internal/video"
)

// ErrLocked is returned when another run is writing the same video output.
var ErrLocked = errors.New("output is locked by another run")

// Options configures a run.
type Options struct {
	Text  string
	Voice string // model passed to the synthesizer

	Synth     synth.Synthesizer
	Binaries  ffmpeg.Binaries
	Stretcher audio.Stretcher // nil uses the pure Go stretcher

	// Plan carries the composition settings; TargetDuration and Background
	// are filled in from the background clip and MusicPath.
	Plan      processor.Plan
	MusicPath string // empty disables mixing

	// RawFormat interprets synthesis output that has no WAV header.
	RawFormat audio.Format

	BackgroundPath string
	Overlay        overlay.Spec // Text is taken from Options.Text
	Workers        int

	AudioOutput string
	VideoOutput string

	TempDir string // parent of the run workspace; empty uses os.TempDir
	RunID   string // empty generates a UUID
	Logger  *slog.Logger
}

// Summary describes a finished run.
type Summary struct {
	RunID       string
	Start, End  time.Time
	Steps       []logging.Step
	Stages      []processor.StageReport
	Background  video.Info
	AudioOutput string
	VideoOutput string
	AudioSize   int64
	VideoSize   int64
}

// Report converts the summary into run report data.
func (s *Summary) Report(text, voice string) logging.ReportData {
	return logging.ReportData{
		RunID:     s.RunID,
		Text:      text,
		Voice:     voice,
		StartTime: s.Start,
		EndTime:   s.End,
		Steps:     s.Steps,
		Stages:    s.Stages,
		Video: logging.VideoSummary{
			Width:    s.Background.Width,
			Height:   s.Background.Height,
			FPS:      s.Background.FPS,
			Frames:   s.Background.FrameCount,
			CodecTag: s.Background.CodecTag,
		},
		Outputs: []logging.OutputFile{
			{Label: "audio", Path: s.AudioOutput, Size: s.AudioSize},
			{Label: "video", Path: s.VideoOutput, Size: s.VideoSize},
		},
	}
}

func (o *Options) validate() error {
	switch {
	case o.Text == "":
		return errors.New("no text given")
	case o.Synth == nil:
		return errors.New("no synthesizer configured")
	case o.BackgroundPath == "":
		return errors.New("no background video given")
	case o.AudioOutput == "" || o.VideoOutput == "":
		return errors.New("audio and video outputs are required")
	}
	if _, err := audio.FormatFromPath(o.AudioOutput); err != nil {
		return err
	}
	abs := func(p string) string {
		if a, err := filepath.Abs(p); err == nil {
			return a
		}
		return p
	}
	if abs(o.AudioOutput) == abs(o.VideoOutput) {
		return errors.New("audio and video outputs must differ")
	}
	return nil
}

// runner carries per-run state between steps.
type runner struct {
	opts     Options
	progress Progress
	logger   *slog.Logger
	summary  *Summary
	work     string
}

// Run executes the pipeline. It holds an exclusive lock on
// <VideoOutput>.lock for the whole run and works in a private temporary
// directory that is removed before Run returns.
func Run(ctx context.Context, opts Options, progress Progress) (*Summary, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if progress == nil {
		progress = func(Event) {}
	}
	logger := logging.NewComponentLogger(opts.Logger, "pipeline").With(logging.String(logging.FieldRunID, opts.RunID))

	lock := flock.New(opts.VideoOutput + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", opts.VideoOutput, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, opts.VideoOutput)
	}
	defer func() {
		lock.Unlock()
		os.Remove(lock.Path())
	}()

	work := filepath.Join(opts.TempDir, "arianator-"+opts.RunID)
	if opts.TempDir == "" {
		work = filepath.Join(os.TempDir(), "arianator-"+opts.RunID)
	}
	if err := os.Mkdir(work, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(work)

	r := &runner{
		opts:     opts,
		progress: progress,
		logger:   logger,
		work:     work,
		summary: &Summary{
			RunID:       opts.RunID,
			Start:       time.Now(),
			AudioOutput: opts.AudioOutput,
			VideoOutput: opts.VideoOutput,
		},
	}
	logger.Info("run started", logging.Args(
		logging.String("background", opts.BackgroundPath),
		logging.String("voice", opts.Voice),
	)...)

	if err := r.run(ctx); err != nil {
		logger.Error("run failed", logging.Args(logging.Error(err))...)
		return nil, err
	}

	r.summary.End = time.Now()
	r.summary.AudioSize = fileSize(opts.AudioOutput)
	r.summary.VideoSize = fileSize(opts.VideoOutput)
	logger.Info("run finished", logging.Args(
		logging.Elapsed(r.summary.End.Sub(r.summary.Start)),
		logging.Path(opts.VideoOutput),
	)...)
	return r.summary, nil
}

func (r *runner) run(ctx context.Context) error {
	var (
		speech   []byte
		track    audio.Track
		composed audio.Track
		seq      *video.FrameSequence
	)
	plan := r.opts.Plan
	tmpVideo := filepath.Join(r.work, "overlay"+filepath.Ext(r.opts.VideoOutput))

	steps := []struct {
		id  Step
		run func(ctx context.Context) error
	}{
		{StepSynthesize, func(ctx context.Context) (err error) {
			speech, err = r.synthesizer().Synthesize(ctx, r.opts.Text, r.opts.Voice)
			return err
		}},
		{StepDecode, func(context.Context) (err error) {
			track, err = audio.DecodeBytes(speech, r.opts.RawFormat)
			speech = nil
			return err
		}},
		{StepProbe, func(ctx context.Context) (err error) {
			r.summary.Background, err = video.Prober{Binaries: r.opts.Binaries}.Probe(ctx, r.opts.BackgroundPath)
			plan.TargetDuration = r.summary.Background.Duration()
			return err
		}},
		{StepMusic, func(ctx context.Context) error {
			if r.opts.MusicPath == "" {
				return errSkipped
			}
			music, err := audio.Decoder{Binaries: r.opts.Binaries}.Decode(ctx, r.opts.MusicPath)
			if err != nil {
				return err
			}
			plan.Background = &music
			return nil
		}},
		{StepCompose, func(ctx context.Context) error {
			result, err := r.compose(ctx, track, &plan)
			if err != nil {
				return err
			}
			composed = result.Track
			r.summary.Stages = result.Stages
			return nil
		}},
		{StepExport, func(ctx context.Context) error {
			format, err := audio.FormatFromPath(r.opts.AudioOutput)
			if err != nil {
				return err
			}
			return audio.Exporter{Binaries: r.opts.Binaries}.Export(ctx, composed, r.opts.AudioOutput, format)
		}},
		{StepFrames, func(ctx context.Context) (err error) {
			seq, err = video.Source{Binaries: r.opts.Binaries}.Read(ctx, r.opts.BackgroundPath)
			return err
		}},
		{StepOverlay, func(ctx context.Context) error {
			spec := r.opts.Overlay
			spec.Text = r.opts.Text
			renderer := &overlay.Renderer{
				Workers: r.opts.Workers,
				Progress: func(done, total int) {
					r.emit(Event{Step: StepOverlay, State: Running, Progress: float64(done) / float64(total), Level: math.NaN()})
				},
			}
			_, err := renderer.Render(ctx, seq, spec)
			return err
		}},
		{StepEncode, func(ctx context.Context) error {
			err := video.Sink{Binaries: r.opts.Binaries}.Write(ctx, tmpVideo, seq)
			seq = nil
			return err
		}},
		{StepMux, func(ctx context.Context) error {
			return mux.Muxer{Binaries: r.opts.Binaries}.Mux(ctx, tmpVideo, r.opts.AudioOutput, r.opts.VideoOutput)
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(ctx, step.id, step.run); err != nil {
			return err
		}
	}
	return nil
}

var errSkipped = errors.New("step skipped")

// step runs fn with start/finish events, timing and logging.
func (r *runner) step(ctx context.Context, id Step, fn func(context.Context) error) error {
	r.emit(Event{Step: id, State: Running, Level: math.NaN()})
	r.logger.Debug("step started", logging.Args(logging.Stage(string(id)))...)

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, errSkipped):
		r.emit(Event{Step: id, State: Skipped, Level: math.NaN()})
		return nil
	case err != nil:
		r.emit(Event{Step: id, State: Failed, Elapsed: elapsed, Err: err, Level: math.NaN()})
		return fmt.Errorf("%s: %w", id, err)
	}

	r.summary.Steps = append(r.summary.Steps, logging.Step{Name: id.Label(), Elapsed: elapsed})
	r.emit(Event{Step: id, State: Done, Progress: 1, Elapsed: elapsed, Level: math.NaN()})
	r.logger.Info("step finished", logging.Args(logging.Stage(string(id)), logging.Elapsed(elapsed))...)
	return nil
}

// compose runs the narration plan, translating stage callbacks into
// compose-step progress.
func (r *runner) compose(ctx context.Context, track audio.Track, plan *processor.Plan) (*processor.Result, error) {
	stages := plan.Stages()
	index := make(map[processor.StageID]int, len(stages))
	for i, id := range stages {
		index[id] = i
	}

	composer := &processor.Composer{Stretcher: r.opts.Stretcher}
	return composer.Compose(ctx, track, plan, func(stage processor.StageID, p, level float64) {
		r.emit(Event{
			Step:     StepCompose,
			State:    Running,
			Progress: (float64(index[stage]) + p) / float64(len(stages)),
			Detail:   stage.Name(),
			Level:    level,
		})
		if p == 1 {
			r.logger.Debug("stage finished", logging.Args(
				logging.String("compose_stage", string(stage)),
				logging.Float64("level_dbfs", level),
			)...)
		}
	})
}

// synthesizer points a piper backend's scratch files at the run workspace.
func (r *runner) synthesizer() synth.Synthesizer {
	if p, ok := r.opts.Synth.(*synth.Piper); ok && p.TempDir == "" {
		scoped := *p
		scoped.TempDir = r.work
		return &scoped
	}
	return r.opts.Synth
}

func (r *runner) emit(e Event) {
	r.progress(e)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
