package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotRecall(t *testing.T) {
	var buf bytes.Buffer
	err := PlotRecall(&buf, "Mean recall", []Series{
		{Name: "All", Values: []float64{1, 0.8, 0.6, 0.5, 0.4}},
		{Name: "m2", Values: []float64{1, 1, 0.9, 0.9, 0.8}},
	}, 12, 4, false)
	if err != nil {
		t.Fatalf("PlotRecall failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Mean recall") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend: All (solid)  m2 (dashed)") {
		t.Fatalf("expected legend in output, got %q", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "100% │ ") || !strings.HasPrefix(lines[4], "  0% │ ") {
		t.Fatalf("unexpected axis labels: %q / %q", lines[1], lines[4])
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected colour codes")
	}
}

func TestPlotRecallTopRowHoldsFullRecall(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotRecall(&buf, "", []Series{{Name: "flat", Values: []float64{1, 1}}}, 10, 3, false); err != nil {
		t.Fatalf("PlotRecall failed: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	blank := string(rune(0x2800))
	top := strings.TrimPrefix(lines[0], "100% │ ")
	if strings.Trim(top, blank) == "" {
		t.Fatalf("expected dots in the top row, got %q", top)
	}
	bottom := strings.TrimPrefix(lines[2], "  0% │ ")
	if strings.Trim(bottom, blank) != "" {
		t.Fatalf("expected empty bottom row, got %q", bottom)
	}
}

func TestPlotRecallNoSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotRecall(&buf, "x", []Series{{Name: "empty"}}, 10, 3, false); err != nil {
		t.Fatalf("PlotRecall failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 80-len("100%")-3 {
		t.Fatalf("unexpected width %d", got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(5); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestResampleSeries(t *testing.T) {
	got := resampleSeries([]float64{0, 1}, 3)
	if got[0] != 0 || got[1] != 0.5 || got[2] != 1 {
		t.Fatalf("unexpected stretch: %v", got)
	}
	got = resampleSeries([]float64{1, 3, 5, 7}, 2)
	if got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected average: %v", got)
	}
}
