package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/san-kum/physim/internal/sim"
)

var (
	GlassPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusFailed = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(14)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// ProgressBar renders percent in [0, 1] as a bar of width cells.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// SparklineChart renders a mini sparkline from values
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	rng := max - min
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - min) / rng
		idx := int(norm * float64(len(chars)-1))
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		if idx < 0 {
			idx = 0
		}
		result.WriteRune(chars[idx])
	}

	return result.String()
}

func row(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value)
}

// Summary is what RenderSummary reports about a finished run.
type Summary struct {
	Scenario string
	Library  string
	Result   *sim.Result
}

func RenderSummary(s Summary) string {
	res := s.Result
	var b strings.Builder
	b.WriteString(TitleStyle.Render(s.Scenario) + "  " + Subtle.Render(s.Library) + "\n\n")

	simTime := 0.0
	if len(res.Times) > 0 {
		simTime = res.Times[len(res.Times)-1]
	}
	b.WriteString(row("steps", fmt.Sprintf("%d", res.StepsTaken)) + "\n")
	b.WriteString(row("sim time", fmt.Sprintf("%.2fs", simTime)) + "\n")
	b.WriteString(row("objects", fmt.Sprintf("%d", len(res.Final))) + "\n")
	if len(res.Active) > 0 {
		b.WriteString(row("active", fmt.Sprintf("%d", res.Active[len(res.Active)-1])) + "\n")
	}
	if res.SettledAt >= 0 {
		b.WriteString(row("settled at", fmt.Sprintf("%.2fs", res.SettledAt)) + "\n")
	} else {
		b.WriteString(row("settled at", "never") + "\n")
	}

	if len(res.Metrics) > 0 {
		names := make([]string, 0, len(res.Metrics))
		for name := range res.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\n")
		for _, name := range names {
			b.WriteString(row(name, fmt.Sprintf("%.4f", res.Metrics[name])) + "\n")
		}
	}

	if len(res.Active) > 1 {
		active := make([]float64, len(res.Active))
		for i, a := range res.Active {
			active[i] = float64(a)
		}
		b.WriteString("\n" + Subtle.Render("active ") + SparklineChart(active, 40) + "\n")
	}

	return GlassPanel.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderBounds lists each object's collision bounds.
func RenderBounds(ids []int, boxes []cube.BBox) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%-6s %-30s %-30s", "id", "min", "max")) + "\n")
	for i, id := range ids {
		if i >= len(boxes) {
			break
		}
		bb := boxes[i]
		b.WriteString(fmt.Sprintf("%-6d %-30s %-30s\n", id, formatVec(bb.Min()), formatVec(bb.Max())))
	}
	return b.String()
}

func formatVec(v [3]float32) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v[0], v[1], v[2])
}
