// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelWidth      = 6
	axisSeparator       = " │ "
	terminalWidthBackup = 80
)

// Eighth blocks, from empty to full.
var blockLevels = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// PlotSeries renders each series as a column chart, one band per series,
// with the band scaled to the series' own min and max.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		for _, line := range plotBand(s, width, height) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func plotBand(s Series, width, height int) []string {
	values := resampleSeries(s.Values, width)
	lo, hi := minMax(values)
	if math.Abs(hi-lo) < 1e-9 {
		lo--
		hi++
	}
	// Column heights in eighths of a row.
	levels := make([]int, len(values))
	total := height * 8
	for i, v := range values {
		levels[i] = max(1, int(math.Round((v-lo)/(hi-lo)*float64(total))))
	}

	lines := make([]string, 0, height+1)
	lines = append(lines, fmt.Sprintf("%s (min %.1f, max %.1f)", s.Name, lo, hi))
	for row := 0; row < height; row++ {
		label := ""
		switch row {
		case 0:
			label = fmt.Sprintf("%.0f", hi)
		case height - 1:
			label = fmt.Sprintf("%.0f", lo)
		}
		var b strings.Builder
		b.WriteString(fmt.Sprintf("%*s%s", axisLabelWidth, label, axisSeparator))
		floor := (height - 1 - row) * 8
		for _, lvl := range levels {
			fill := max(0, min(lvl-floor, 8))
			b.WriteRune(blockLevels[fill])
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - utf8.RuneCountInString(axisSeparator)
	return max(plotWidth, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// resampleSeries stretches or averages values to exactly width points.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	if len(values) >= width {
		for i := 0; i < width; i++ {
			start := i * len(values) / width
			end := max((i+1)*len(values)/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	for i := range out {
		out[i] = values[i*len(values)/width]
	}
	return out
}
