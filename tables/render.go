package tables

import (
	"strings"
	"unicode/utf8"
)

// Render rebuilds a Markdown table from a header and data rows, left
// justified and padded so every column is as wide as its widest cell, with a
// minimum column width of three. Rows are padded or truncated to the header
// length. An empty header renders as an empty string.
//
// Converters elsewhere in this module use Render for every table they emit,
// so spreadsheet sheets, CSV files, and slide tables all come out aligned
// the same way as cleaned tables.
func Render(header []string, rows [][]string) string {
	if len(header) == 0 {
		return ""
	}
	colCount := len(header)

	normalized := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, colCount)
		copy(row, r)
		normalized[i] = row
	}

	widths := make([]int, colCount)
	for i, h := range header {
		widths[i] = max(3, utf8.RuneCountInString(h))
	}
	for _, r := range normalized {
		for ci, cell := range r {
			if w := utf8.RuneCountInString(cell); w > widths[ci] {
				widths[ci] = w
			}
		}
	}

	formatRow := func(cells []string) string {
		parts := make([]string, len(cells))
		for ci, cell := range cells {
			pad := widths[ci] - utf8.RuneCountInString(cell)
			if pad < 0 {
				pad = 0
			}
			parts[ci] = " " + cell + strings.Repeat(" ", pad) + " "
		}
		return "|" + strings.Join(parts, "|") + "|"
	}

	lines := make([]string, 0, len(normalized)+2)
	lines = append(lines, formatRow(header))

	seps := make([]string, colCount)
	for ci, w := range widths {
		seps[ci] = strings.Repeat("-", w+2)
	}
	lines = append(lines, "|"+strings.Join(seps, "|")+"|")

	for _, r := range normalized {
		lines = append(lines, formatRow(r))
	}

	return strings.Join(lines, "\n")
}
