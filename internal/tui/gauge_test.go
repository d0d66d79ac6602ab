package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestRenderUsageGauge_Percentages(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, "0.0%"},
		{42.5, "42.5%"},
		{100, "100.0%"},
		{150, "100.0%"}, // capped
	}
	for _, tt := range tests {
		out := ansi.Strip(RenderUsageGauge(tt.percent, 20, 0.20, 0.05))
		if !strings.Contains(out, tt.want) {
			t.Errorf("gauge(%.1f) = %q, want it to contain %q", tt.percent, out, tt.want)
		}
	}
}

func TestRenderUsageGauge_Negative(t *testing.T) {
	out := ansi.Strip(RenderUsageGauge(-1, 20, 0.20, 0.05))
	if !strings.Contains(out, "N/A") {
		t.Errorf("negative percent should render N/A, got %q", out)
	}
}

func TestRenderUsageGauge_MinimumWidth(t *testing.T) {
	out := RenderUsageGauge(50, 1, 0.20, 0.05)
	if out == "" {
		t.Error("expected non-empty output at tiny width")
	}
}
