package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/linuxmatters/arianator/internal/processor"
)

// Step is the wall-clock time of one pipeline step.
type Step struct {
	Name    string
	Elapsed time.Duration
}

// OutputFile is a file the run produced.
type OutputFile struct {
	Label string
	Path  string
	Size  int64
}

// VideoSummary describes the background clip.
type VideoSummary struct {
	Width, Height int
	FPS           float64
	Frames        int
	CodecTag      string
}

// ReportData contains everything written to the run report.
type ReportData struct {
	RunID     string
	Text      string
	Voice     string
	StartTime time.Time
	EndTime   time.Time
	Steps     []Step
	Stages    []processor.StageReport
	Video     VideoSummary
	Outputs   []OutputFile
}

// ReportPath names the report for a video output: clip.mp4 → clip-report.txt
func ReportPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "-report.txt"
}

// GenerateReport writes the run report next to the video output and
// returns its path.
func GenerateReport(videoPath string, data ReportData) (string, error) {
	path := ReportPath(videoPath)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	if err := WriteReport(f, data); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// WriteReport renders the report: header, step timings, composition stages,
// background clip and output files.
func WriteReport(w io.Writer, data ReportData) error {
	ew := &errWriter{w: w}

	fmt.Fprintln(ew, "Arianator Run Report")
	fmt.Fprintln(ew, "====================")
	if data.RunID != "" {
		fmt.Fprintf(ew, "Run:      %s\n", data.RunID)
	}
	fmt.Fprintf(ew, "Text:     %s\n", data.Text)
	if data.Voice != "" {
		fmt.Fprintf(ew, "Voice:    %s\n", data.Voice)
	}
	if !data.EndTime.IsZero() {
		fmt.Fprintf(ew, "Finished: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintln(ew)

	writeSteps(ew, data)
	writeStages(ew, data.Stages)
	writeVideo(ew, data.Video)
	writeOutputs(ew, data.Outputs)

	return ew.err
}

// writeSection writes a section header with title and dashed underline.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

func writeSteps(w io.Writer, data ReportData) {
	if len(data.Steps) == 0 {
		return
	}
	writeSection(w, "Processing Summary")
	table := NewMetricTable("Time")
	for _, step := range data.Steps {
		table.AddRow(step.Name, []string{formatDuration(step.Elapsed)}, "", "")
	}
	if !data.StartTime.IsZero() && data.EndTime.After(data.StartTime) {
		table.AddRow("total", []string{formatDuration(data.EndTime.Sub(data.StartTime))}, "", "")
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w)
}

func writeStages(w io.Writer, stages []processor.StageReport) {
	if len(stages) == 0 {
		return
	}
	writeSection(w, "Narration")
	table := NewMetricTable("In", "Out", "RMS", "Peak", "Time")
	for _, st := range stages {
		table.AddRow(st.ID.Name(), []string{
			formatMetric(st.Input.Seconds(), 2),
			formatMetric(st.Output.Seconds(), 2),
			formatMetricDB(st.LevelDB, 1),
			formatMetricDB(st.PeakDB, 1),
			formatDuration(st.Elapsed),
		}, "", interpretStage(st))
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w)
}

// interpretStage flags notable outcomes: clipping after gain, and stages
// that changed the length.
func interpretStage(st processor.StageReport) string {
	switch {
	case st.PeakDB >= -0.01 && !math.IsInf(st.PeakDB, 0):
		return "clipping"
	case st.Output < st.Input:
		return fmt.Sprintf("%s removed", formatDuration(st.Input-st.Output))
	case st.Output > st.Input:
		return fmt.Sprintf("%s added", formatDuration(st.Output-st.Input))
	default:
		return ""
	}
}

func writeVideo(w io.Writer, v VideoSummary) {
	if v.Frames == 0 {
		return
	}
	writeSection(w, "Background")
	fmt.Fprintf(w, "Size:     %dx%d\n", v.Width, v.Height)
	fmt.Fprintf(w, "Rate:     %s fps\n", formatMetric(v.FPS, 3))
	fmt.Fprintf(w, "Frames:   %s\n", humanize.Comma(int64(v.Frames)))
	if v.FPS > 0 {
		fmt.Fprintf(w, "Duration: %s\n", formatDuration(time.Duration(float64(v.Frames)/v.FPS*float64(time.Second))))
	}
	if v.CodecTag != "" {
		fmt.Fprintf(w, "Codec:    %s\n", v.CodecTag)
	}
	fmt.Fprintln(w)
}

func writeOutputs(w io.Writer, files []OutputFile) {
	if len(files) == 0 {
		return
	}
	writeSection(w, "Outputs")
	table := NewMetricTable("Size")
	for _, f := range files {
		table.AddRow(f.Label, []string{humanize.Bytes(uint64(max(f.Size, 0)))}, "", f.Path)
	}
	fmt.Fprint(w, table.String())
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// errWriter keeps the first write error so the report code can use
// fmt.Fprint freely.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
