package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

type helpCLI struct {
	Text    string  `arg:"" name:"text" help:"Text to speak" optional:""`
	Gain    float64 `short:"G" default:"50" group:"audio" help:"Gain in dB"`
	NoMusic bool    `name:"no-music" group:"audio" help:"Skip music"`
	Font    string  `short:"f" group:"video" help:"Font file"`
	Secret  bool    `hidden:"" help:"Not shown"`
}

func renderHelp(t *testing.T, info HelpInfo) string {
	t.Helper()
	var out bytes.Buffer
	parser, err := kong.New(&helpCLI{},
		kong.Name("arianator"),
		kong.Description("test description"),
		kong.Writers(&out, &out),
		kong.ExplicitGroups([]kong.Group{
			{Key: "audio", Title: "Audio"},
			{Key: "video", Title: "Video"},
		}),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	ctx, err := kong.Trace(parser, nil)
	if err != nil {
		t.Fatalf("kong.Trace: %v", err)
	}
	if err := StyledHelpPrinter(info)(kong.HelpOptions{}, ctx); err != nil {
		t.Fatalf("help printer: %v", err)
	}
	return out.String()
}

func TestStyledHelpPrinter(t *testing.T) {
	help := renderHelp(t, HelpInfo{
		ConfigPath: "/home/u/.config/arianator/config.toml",
		Voice:      "fa_IR-gyro-medium",
		Direction:  "rtl",
	})

	for _, want := range []string{
		"Arianator",
		"test description",
		"arianator [flags] <text>",
		"<text>  Text to speak",
		"-h, --help",
		"Audio:",
		"-G, --gain",
		"(default: 50)",
		"--no-music",
		"Video:",
		"-f, --font",
		"Examples:",
		`arianator "اتوبوس`,
		"Defaults:",
		"/home/u/.config/arianator/config.toml",
		"fa_IR-gyro-medium (rtl)",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help output missing %q:\n%s", want, help)
		}
	}
	if strings.Contains(help, "--secret") {
		t.Errorf("hidden flag rendered:\n%s", help)
	}
	if strings.Index(help, "Audio:") > strings.Index(help, "Video:") {
		t.Errorf("groups out of declaration order:\n%s", help)
	}
}

func TestStyledHelpPrinterWithoutDefaults(t *testing.T) {
	if help := renderHelp(t, HelpInfo{}); strings.Contains(help, "Defaults:") {
		t.Errorf("empty HelpInfo should omit the defaults section:\n%s", help)
	}
}
