package visuals

import (
	"fmt"
	"math"
	"strings"

	"schedrisk-mcp/internal/simulation"
)

// GenerateHistogramChart creates a Mermaid xychart-beta bar chart of the
// total-duration histogram.
func GenerateHistogramChart(bins []simulation.HistogramBin) string {
	if len(bins) == 0 {
		return ""
	}

	var labels []string
	var values []string

	maxCount := 0
	for _, b := range bins {
		labels = append(labels, fmt.Sprintf("\"%.0f\"", b.Max))
		values = append(values, fmt.Sprintf("%d", b.Count))
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Completion Duration Distribution\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	// Headroom above the tallest bar
	sb.WriteString(fmt.Sprintf("    y-axis \"Iterations\" 0 --> %d\n", int(math.Ceil(float64(maxCount)*1.1))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateCriticalityChart creates a Mermaid bar chart of the criticality
// index, capped at the ten most critical tasks to keep the chart readable.
func GenerateCriticalityChart(entries []simulation.CriticalityEntry) string {
	if len(entries) == 0 {
		return ""
	}

	limit := len(entries)
	if limit > 10 {
		limit = 10
	}

	var labels []string
	var values []string
	for _, e := range entries[:limit] {
		labels = append(labels, fmt.Sprintf("\"%s\"", chartLabel(e)))
		values = append(values, fmt.Sprintf("%.1f", e.CriticalityPercent))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Criticality Index (Top Tasks)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"% of Iterations on Critical Path\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

func chartLabel(e simulation.CriticalityEntry) string {
	name := e.TaskName
	if name == "" {
		name = e.TaskID
	}
	if len(name) > 16 {
		name = name[:16]
	}
	return name
}
