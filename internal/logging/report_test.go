package logging

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linuxmatters/arianator/internal/processor"
)

func sampleReport() ReportData {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return ReportData{
		RunID:     "run-1",
		Text:      "سلام",
		Voice:     "fa_IR-gyro-medium",
		StartTime: start,
		EndTime:   start.Add(75 * time.Second),
		Steps: []Step{
			{Name: "synthesize", Elapsed: 2 * time.Second},
			{Name: "overlay", Elapsed: 70 * time.Second},
		},
		Stages: []processor.StageReport{
			{ID: processor.StageTrim, Input: 1500 * time.Millisecond, Output: 1200 * time.Millisecond, LevelDB: -20, PeakDB: -6},
			{ID: processor.StageGain, Input: 2400 * time.Millisecond, Output: 2400 * time.Millisecond, LevelDB: -1, PeakDB: 0},
			{ID: processor.StageLoop, Input: 2400 * time.Millisecond, Output: 10 * time.Second, LevelDB: math.Inf(-1), PeakDB: 0},
		},
		Video: VideoSummary{Width: 640, Height: 360, FPS: 25, Frames: 250, CodecTag: "avc1"},
		Outputs: []OutputFile{
			{Label: "audio", Path: "mammad.wav", Size: 441000},
			{Label: "video", Path: "mammad.mp4", Size: 2_500_000},
		},
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Arianator Run Report",
		"Text:     سلام",
		"Processing Summary",
		"1m 10s",
		"1m 15s", // total
		"Narration",
		"Trimming silence",
		"0.3s removed",
		"clipping",
		"< -120",
		"640x360",
		"Frames:   250",
		"441 kB",
		"2.5 MB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportSkipsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, ReportData{Text: "x"}); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	for _, section := range []string{"Processing Summary", "Narration", "Background", "Outputs"} {
		if strings.Contains(buf.String(), section) {
			t.Errorf("empty report should not contain %q", section)
		}
	}
}

func TestGenerateReport(t *testing.T) {
	video := filepath.Join(t.TempDir(), "mammad.mp4")
	path, err := GenerateReport(video, sampleReport())
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if filepath.Base(path) != "mammad-report.txt" {
		t.Fatalf("report path = %q", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(content), "run-1") {
		t.Fatalf("report missing run id:\n%s", content)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
		{3725 * time.Second, "1h 2m 5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
