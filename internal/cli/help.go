package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Italic(true)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFA500")).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// HelpInfo is the runtime context shown under "Defaults".
type HelpInfo struct {
	ConfigPath string // per-user config file
	Voice      string // voice picked from the system timezone
	Direction  string // "rtl" or "ltr"
}

// Example invocations shown in help output
var helpExamples = []struct{ cmd, note string }{
	{`%s "اتوبوس تهران مشهد حرکت کرد"`, "default voice, music and background"},
	{`%s -G 30 --no-music -O out.mp4 "سلام"`, "quieter, no music"},
	{`%s --voice en_US-lessac-medium "Now boarding"`, "left-to-right text"},
}

// StyledHelpPrinter renders help with flags grouped by their kong group.
func StyledHelpPrinter(info HelpInfo) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder
		name := ctx.Model.Name

		sb.WriteString(helpTitleStyle.Render("Arianator 📢"))
		sb.WriteString("\n")
		if ctx.Model.Help != "" {
			sb.WriteString(helpDescStyle.Render(ctx.Model.Help))
			sb.WriteString("\n")
		}

		section(&sb, "Usage:")
		fmt.Fprintf(&sb, "  %s [flags] <text>\n", name)

		if args := ctx.Model.Node.Positional; len(args) > 0 {
			section(&sb, "Arguments:")
			for _, arg := range args {
				fmt.Fprintf(&sb, "  %s  %s\n", helpArgStyle.Render("<"+arg.Name+">"), arg.Help)
			}
		}

		for _, g := range groupFlags(ctx.Model.Node.Flags) {
			section(&sb, g.title+":")
			for _, f := range g.flags {
				writeFlag(&sb, f)
			}
		}

		section(&sb, "Examples:")
		for _, ex := range helpExamples {
			fmt.Fprintf(&sb, "  %s\n    %s\n", fmt.Sprintf(ex.cmd, name), helpDefaultStyle.Render(ex.note))
		}

		writeDefaults(&sb, info)

		sb.WriteString("\n")
		_, err := io.WriteString(ctx.Stdout, sb.String())
		return err
	}
}

func section(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
}

type flagGroup struct {
	title string
	flags []*kong.Flag
}

// groupFlags keeps groups in first-seen order; ungrouped flags and the
// built-in help flag go under "Flags".
func groupFlags(flags []*kong.Flag) []flagGroup {
	var groups []flagGroup
	index := map[string]int{}
	for _, f := range flags {
		if f.Hidden {
			continue
		}
		title := "Flags"
		if f.Group != nil && f.Group.Title != "" {
			title = f.Group.Title
		}
		i, ok := index[title]
		if !ok {
			i = len(groups)
			index[title] = i
			groups = append(groups, flagGroup{title: title})
		}
		groups[i].flags = append(groups[i].flags, f)
	}
	return groups
}

func writeFlag(sb *strings.Builder, f *kong.Flag) {
	names := "--" + f.Name
	if f.Short != 0 {
		names = fmt.Sprintf("-%c, %s", f.Short, names)
	}
	if !f.IsBool() {
		names += "=" + f.FormatPlaceHolder()
	}

	sb.WriteString("  ")
	sb.WriteString(helpFlagStyle.Render(names))
	if f.Help != "" {
		sb.WriteString("  ")
		sb.WriteString(f.Help)
	}
	if f.HasDefault && f.Default != "" {
		sb.WriteString(" ")
		sb.WriteString(helpDefaultStyle.Render("(default: " + f.Default + ")"))
	}
	sb.WriteString("\n")
}

func writeDefaults(sb *strings.Builder, info HelpInfo) {
	if info == (HelpInfo{}) {
		return
	}
	section(sb, "Defaults:")
	if info.ConfigPath != "" {
		fmt.Fprintf(sb, "  %s %s\n", KeyStyle.Render("Config:"), info.ConfigPath)
	}
	if info.Voice != "" {
		voice := info.Voice
		if info.Direction != "" {
			voice += " (" + info.Direction + ")"
		}
		fmt.Fprintf(sb, "  %s %s\n", KeyStyle.Render("Voice: "), voice)
	}
}
