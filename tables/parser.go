package tables

import (
	"regexp"
	"strings"
)

// Thresholds for classification and cleaning.
const (
	minColumnsForDegenerate     = 10
	duplicationRatioThreshold   = 0.5
	genericHeaderRatioThreshold = 0.5
	redundantRowRatioThreshold  = 0.7
)

var (
	genericHeaderRe = regexp.MustCompile(`(?i)^col\d+$`)
	separatorCellRe = regexp.MustCompile(`^:?-+:?$`)
	formatHintRe    = regexp.MustCompile(`(?i)^\s*(?:hh:mm|dd/mm|yyyy|mm/dd|n[./]a\.?|start\s*time|end\s*time|-\s*end)\s*$`)
	brTagRe         = regexp.MustCompile(`(?i)<br\s*/?>`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	boldRe          = regexp.MustCompile(`\*\*(.+?)\*\*`)
	strikethroughRe = regexp.MustCompile(`~~(.+?)~~`)
)

// ParsedTable is one pipe table found in a Markdown document. StartLine and
// EndLine are inclusive 0-based line indices; the line at StartLine is the
// header row and StartLine+1 is the separator row, which is structural only
// and not stored. DataRows may be ragged relative to HeaderCells.
type ParsedTable struct {
	HeaderCells []string
	DataRows    [][]string
	StartLine   int
	EndLine     int
}

// splitRow splits a Markdown table row into cells, respecting escaped pipes.
// An escaped pipe (`\|`) is kept verbatim in the cell content so that the
// rebuilt table keeps the escape intact.
func splitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")

	var cells []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '|':
			cur.WriteString(`\|`)
			i++
		case s[i] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}

// isSeparatorLine reports whether line is a table separator row: every
// non-empty cell is hyphens with optional alignment colons.
func isSeparatorLine(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return false
	}
	for _, c := range splitRow(s) {
		c = strings.TrimSpace(c)
		if c != "" && !separatorCellRe.MatchString(c) {
			return false
		}
	}
	return true
}

// isTableRow reports whether line looks like a Markdown table row.
func isTableRow(line string) bool {
	s := strings.TrimSpace(line)
	return len(s) > 1 && strings.HasPrefix(s, "|") && strings.HasSuffix(s, "|")
}

// FindTables finds and parses all Markdown pipe tables in the document.
//
// A table is anchored at a separator line whose preceding line is a table
// row (the header); header and separator cell counts may differ by at most
// one to tolerate trailing-pipe ambiguity. Data rows are collected greedily
// until the first line that is not a table row. Lines consumed by one table
// are never re-used as the start of another.
func FindTables(markdown string) []ParsedTable {
	lines := strings.Split(markdown, "\n")
	var tables []ParsedTable
	used := make(map[int]bool)

	for i, line := range lines {
		if used[i] {
			continue
		}
		if !isSeparatorLine(line) {
			continue
		}
		// Separator found at line i. Header must be the line before.
		if i == 0 || !isTableRow(lines[i-1]) {
			continue
		}

		headerCells := splitRow(lines[i-1])
		sepCells := splitRow(line)

		// Column count must roughly match.
		if diff := len(headerCells) - len(sepCells); diff > 1 || diff < -1 {
			continue
		}

		var dataRows [][]string
		j := i + 1
		for j < len(lines) && isTableRow(lines[j]) && !isSeparatorLine(lines[j]) {
			dataRows = append(dataRows, splitRow(lines[j]))
			j++
		}

		start, end := i-1, j-1
		for k := start; k <= end; k++ {
			used[k] = true
		}

		tables = append(tables, ParsedTable{
			HeaderCells: headerCells,
			DataRows:    dataRows,
			StartLine:   start,
			EndLine:     end,
		})
	}

	return tables
}
