package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typetest/internal/model"
)

// HistoryRows formats results as table rows, oldest first.
func HistoryRows(results []model.TestResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%ds", r.Duration),
			fmt.Sprintf("%.1f", r.WPM),
			fmt.Sprintf("%.1f", r.AdjustedWPM),
			fmt.Sprintf("%.1f%%", r.AccuracyPercent),
			fmt.Sprintf("%.1f", r.PeakWPM),
			fmt.Sprintf("%.1f", r.ConsistencyScore),
			fmt.Sprintf("%d", r.Errors),
		})
	}
	return rows
}

// HistoryHeaders are the column titles for HistoryRows.
var HistoryHeaders = []string{"Date", "Test", "WPM", "Adj", "Acc", "Peak", "Cons", "Err"}

// RenderHistoryTable prints results as an aligned table.
func RenderHistoryTable(w io.Writer, results []model.TestResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(HistoryHeaders, HistoryRows(results), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// MistakeRows formats mistake aggregates as table rows.
func MistakeRows(aggs []MistakeAggregate) [][]string {
	total := 0
	for _, a := range aggs {
		total += a.Count
	}
	rows := make([][]string, 0, len(aggs))
	for _, a := range aggs {
		share := 0.0
		if total > 0 {
			share = float64(a.Count) / float64(total) * 100
		}
		rows = append(rows, []string{
			charLabel(a.Char),
			fmt.Sprintf("%d", a.Count),
			fmt.Sprintf("%.1f%%", share),
			charLabel(a.CommonSub),
		})
	}
	return rows
}

// MistakeHeaders are the column titles for MistakeRows.
var MistakeHeaders = []string{"Char", "Errors", "Share", "Typed instead"}

// RenderMistakeTable prints mistyped character aggregates.
func RenderMistakeTable(w io.Writer, aggs []MistakeAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No mistakes recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Mistyped Characters"); err != nil {
		return err
	}
	for _, line := range formatTable(MistakeHeaders, MistakeRows(aggs), map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	cells := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		pad := strings.Repeat(" ", max(0, widths[i]-runewidth.StringWidth(cell)))
		if rightAlignCols[i] {
			cells[i] = pad + cell
		} else {
			cells[i] = cell + pad
		}
	}
	return strings.Join(cells, " ")
}
