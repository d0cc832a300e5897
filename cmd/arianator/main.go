package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/linuxmatters/arianator/internal/cli"
	"github.com/linuxmatters/arianator/internal/config"
	"github.com/linuxmatters/arianator/internal/locale"
	"github.com/linuxmatters/arianator/internal/logging"
	"github.com/linuxmatters/arianator/internal/pipeline"
	"github.com/linuxmatters/arianator/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface. Pointer flags stay nil unless
// given, so only explicit flags override the config file.
type CLI struct {
	Text string `arg:"" name:"text" help:"Text to speak and draw" optional:""`

	AudioOutput string `short:"o" name:"audio-output" default:"mammad.wav" group:"output" help:"Narration output (wav, mp3 or opus)"`
	VideoOutput string `short:"O" name:"video-output" default:"mammad.mp4" group:"output" help:"Video output"`

	SpeedMul   *float64 `name:"speed-mul" placeholder:"2" group:"audio" help:"Slow-down ratio"`
	Gain       *float64 `short:"G" placeholder:"50" group:"audio" help:"Gain in dB, clipping allowed"`
	Aggressive bool     `name:"aggressive-silence-rm" group:"audio" help:"Also remove silences inside the speech"`
	Sleep      *float64 `short:"s" placeholder:"3" group:"audio" help:"Seconds of silence around each repetition"`
	Video      string   `short:"V" type:"path" group:"video" help:"Background video"`
	Font       string   `short:"f" type:"path" group:"video" help:"Font file"`
	FontSize   *int     `short:"S" name:"font-size" placeholder:"128" group:"video" help:"Font size in pixels"`
	Music      string   `short:"m" type:"path" group:"audio" help:"Background music"`
	NoMusic    bool     `name:"no-music" group:"audio" help:"Do not mix background music"`
	Voice      string   `group:"audio" help:"Voice model (default from config or timezone)"`
	Stretcher  string   `group:"audio" help:"Time-stretch implementation (native or ffmpeg)"`
	Workers    *int     `placeholder:"N" group:"video" help:"Parallel overlay workers"`

	Verbose    bool   `short:"v" help:"Debug logging"`
	Config     string `short:"c" type:"path" help:"Path to TOML config file (optional)"`
	InitConfig bool   `name:"init-config" help:"Write a sample config file and exit"`
	Logs       bool   `help:"Save a run report next to the video"`
	Version    bool   `help:"Show version information"`
}

func main() {
	cliArgs := &CLI{}
	kctx := kong.Parse(cliArgs,
		kong.Name("arianator"),
		kong.Description("Announcements in the voice of a Tehran bus terminal"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.ExplicitGroups([]kong.Group{
			{Key: "output", Title: "Output"},
			{Key: "audio", Title: "Audio"},
			{Key: "video", Title: "Video"},
		}),
		kong.Help(cli.StyledHelpPrinter(helpInfo())),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if cliArgs.InitConfig {
		path, err := samplePath(cliArgs.Config)
		if err == nil {
			err = config.CreateSample(path)
		}
		if err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
		cli.PrintInfo("Config written:", path)
		os.Exit(0)
	}

	if cliArgs.Text == "" {
		cli.PrintError("No text specified")
		kctx.PrintUsage(false)
		os.Exit(1)
	}

	if err := run(cliArgs); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// helpInfo reports where defaults come from on this machine.
func helpInfo() cli.HelpInfo {
	voice := locale.Voice()
	info := cli.HelpInfo{Voice: voice, Direction: locale.Direction(voice).String()}
	if path, err := config.DefaultConfigPath(); err == nil {
		info.ConfigPath = path
	}
	return info
}

func samplePath(flagPath string) (string, error) {
	if flagPath != "" {
		return config.ExpandPath(flagPath)
	}
	return config.DefaultConfigPath()
}

func run(cliArgs *CLI) error {
	cfg, cfgPath, found, err := config.Load(cliArgs.Config)
	if err != nil {
		return err
	}
	cliArgs.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	logger, err := logging.NewFromConfig(cfg, interactive)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if found {
		logger.Debug("config loaded", logging.Args(logging.Path(cfgPath))...)
	}

	opts, voice, err := buildOptions(cfg, cliArgs, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var summary *pipeline.Summary
	if interactive {
		summary, err = runInteractive(ctx, opts, voice)
	} else {
		summary, err = pipeline.Run(ctx, opts, nil)
	}
	if err != nil {
		return err
	}

	if cliArgs.Logs {
		path, err := logging.GenerateReport(opts.VideoOutput, summary.Report(opts.Text, voice))
		if err != nil {
			logger.Warn("report not written", logging.Args(logging.Error(err))...)
		} else if !interactive {
			cli.PrintInfo("Report:", path)
		}
	}
	if !interactive {
		cli.PrintInfo("Audio:", summary.AudioOutput)
		cli.PrintInfo("Video:", summary.VideoOutput)
	}
	return nil
}

type outcome struct {
	summary *pipeline.Summary
	err     error
}

// runInteractive drives the pipeline behind the Bubbletea UI. Quitting the
// UI cancels the run; Run's cleanup still completes before returning.
func runInteractive(ctx context.Context, opts pipeline.Options, voice string) (*pipeline.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(opts.Text, voice, pipeline.StepOrder, cancel)
	p := tea.NewProgram(model, tea.WithAltScreen())

	done := make(chan outcome, 1)
	go func() {
		summary, err := pipeline.Run(ctx, opts, func(ev pipeline.Event) {
			p.Send(ui.EventMsg{Event: ev})
		})
		p.Send(ui.DoneMsg{Summary: summary, Err: err})
		done <- outcome{summary: summary, err: err}
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("UI error: %w", err)
	}

	res := <-done
	if m, ok := final.(ui.Model); ok && m.Interrupted && res.err != nil {
		return nil, errors.New("interrupted")
	}
	if res.err == nil {
		// the alt screen is gone; leave the summary on the terminal
		fmt.Println(ui.Model{Done: true, Summary: res.summary}.View())
	}
	return res.summary, res.err
}
