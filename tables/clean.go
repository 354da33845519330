package tables

import (
	"strconv"
	"strings"
)

// cleanBr replaces <br> tags with a space and collapses whitespace runs.
func cleanBr(text string) string {
	cleaned := brTagRe.ReplaceAllString(text, " ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// stripBold removes Markdown bold markers around spans.
func stripBold(text string) string {
	return boldRe.ReplaceAllString(text, "$1")
}

// isRedundantSubheader reports whether row merely repeats or annotates the
// header: a cell counts as redundant when it is empty, matches a format hint
// such as "hh:mm" or "n/a", or is a substring of (or contains) the header
// cell at the same index. The row qualifies when at least 70% of its cells
// are redundant.
func isRedundantSubheader(row, header []string) bool {
	if len(row) == 0 {
		return false
	}

	matches := 0
	for i, cell := range row {
		cleaned := cleanBr(cell)
		if cleaned == "" {
			matches++
			continue
		}
		if formatHintRe.MatchString(cleaned) {
			matches++
			continue
		}
		if i < len(header) {
			headerClean := cleanBr(header[i])
			if headerClean != "" && (strings.Contains(headerClean, cleaned) || strings.Contains(cleaned, headerClean)) {
				matches++
			}
		}
	}

	return float64(matches)/float64(len(row)) >= redundantRowRatioThreshold
}

// inferColumnName tries to find a meaningful name for a generic-header
// column. Only one rule exists: a column whose values are consecutive
// integers counting up from the first value is a "Day" column. Returns ""
// when nothing can be inferred.
func inferColumnName(colIndex int, dataRows [][]string) string {
	var values []string
	for _, row := range dataRows {
		if colIndex < len(row) {
			if v := cleanBr(row[colIndex]); v != "" {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return ""
	}

	first, err := strconv.Atoi(values[0])
	if err != nil {
		return ""
	}
	for i, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil || n != first+i {
			return ""
		}
	}
	return "Day"
}

// CleanTable repairs a normal table and returns it as aligned Markdown.
//
// Cleaning replaces <br> tags with spaces, renames generic headers where a
// name can be inferred from the column's values, drops a leading redundant
// sub-header row, drops columns that are entirely empty and still carry a
// generic header, and re-emits the table padded to column widths.
func CleanTable(t ParsedTable) string {
	header := make([]string, len(t.HeaderCells))
	for i, h := range t.HeaderCells {
		header[i] = cleanBr(h)
	}
	rows := make([][]string, len(t.DataRows))
	for i, row := range t.DataRows {
		cleaned := make([]string, len(row))
		for j, c := range row {
			cleaned[j] = cleanBr(c)
		}
		rows[i] = cleaned
	}

	// Fix generic headers.
	for i, h := range header {
		if genericHeaderRe.MatchString(strings.TrimSpace(h)) {
			if inferred := inferColumnName(i, t.DataRows); inferred != "" {
				header[i] = inferred
			}
		}
	}

	// Remove a redundant sub-header row (usually the first data row).
	if len(rows) > 0 && isRedundantSubheader(rows[0], header) {
		rows = rows[1:]
	}

	// Detect and remove fully empty columns with generic headers.
	colCount := len(header)
	var keepCols []int
	for ci := 0; ci < colCount; ci++ {
		isEmpty := true
		for _, r := range rows {
			if ci < len(r) && strings.TrimSpace(r[ci]) != "" {
				isEmpty = false
				break
			}
		}
		if isEmpty && genericHeaderRe.MatchString(strings.TrimSpace(header[ci])) {
			continue
		}
		keepCols = append(keepCols, ci)
	}

	if len(keepCols) > 0 && len(keepCols) < colCount {
		newHeader := make([]string, 0, len(keepCols))
		for _, ci := range keepCols {
			newHeader = append(newHeader, header[ci])
		}
		newRows := make([][]string, len(rows))
		for ri, r := range rows {
			nr := make([]string, len(keepCols))
			for k, ci := range keepCols {
				if ci < len(r) {
					nr[k] = r[ci]
				}
			}
			newRows[ri] = nr
		}
		header, rows = newHeader, newRows
	}

	return Render(header, rows)
}
