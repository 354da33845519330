package tables

import (
	"fmt"
	"math"
	"testing"
)

// Helper to build a repeated cell slice.
func repeatCells(value string, n int) []string {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = value
	}
	return cells
}

func TestRowDuplicationRatio(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  float64
	}{
		{
			name:  "no duplicates",
			cells: []string{"A", "B", "C"},
			want:  0.0,
		},
		{
			name:  "all duplicates",
			cells: []string{"X", "X", "X", "X"},
			want:  0.75,
		},
		{
			name:  "empty cells ignored",
			cells: []string{"", "", ""},
			want:  0.0,
		},
		{
			name:  "half duplicated",
			cells: []string{"A", "B", "A", "B"},
			want:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowDuplicationRatio(tt.cells)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("rowDuplicationRatio(%q) = %v, want %v", tt.cells, got, tt.want)
			}
		})
	}
}

func TestIsDegenerate_WideDuplicatedTable(t *testing.T) {
	// 21-column table with massive duplication, the flowchart shape.
	header := append([]string{"Title", "Role"}, genericHeaders(3, 22)...)
	dup := "Same content<br>repeated everywhere"
	row1 := append([]string{"Title", "Role A"}, repeatCells(dup, 19)...)
	row2 := append([]string{"Title", "Role B"}, repeatCells(dup, 19)...)

	tab := ParsedTable{HeaderCells: header, DataRows: [][]string{row1, row2}, StartLine: 0, EndLine: 3}
	if !IsDegenerate(tab) {
		t.Error("Expected wide duplicated table to be degenerate")
	}
}

func TestIsDegenerate_TimesheetNotDegenerate(t *testing.T) {
	header := []string{"Day", "Sig", "1st In", "1st Out", "2nd In", "2nd Out", "Total", "Shift"}
	row := []string{"1", "", "", "", "", "", "", "n.a."}

	tab := ParsedTable{HeaderCells: header, DataRows: [][]string{row}, StartLine: 0, EndLine: 2}
	if IsDegenerate(tab) {
		t.Error("Expected 8-column timesheet table to not be degenerate")
	}
}

func TestIsDegenerate_SmallTableNeverFlagged(t *testing.T) {
	tab := ParsedTable{
		HeaderCells: []string{"A", "B", "C"},
		DataRows:    [][]string{{"X", "X", "X"}},
		StartLine:   0,
		EndLine:     2,
	}
	if IsDegenerate(tab) {
		t.Error("Expected small table to not be degenerate despite duplication")
	}
}

func TestIsDegenerate_NineColumnBoundary(t *testing.T) {
	// Nine columns sits below the minimum, so even full duplication does
	// not flag the table.
	tab := ParsedTable{
		HeaderCells: repeatCells("H", 9),
		DataRows:    [][]string{repeatCells("X", 9)},
		StartLine:   0,
		EndLine:     2,
	}
	if IsDegenerate(tab) {
		t.Error("Expected 9-column table to never be degenerate")
	}
}

func TestIsDegenerate_ExactDuplicationThreshold(t *testing.T) {
	// Ten columns with an average row duplication ratio of exactly 0.5:
	// the threshold is inclusive.
	header := make([]string, 10)
	for i := range header {
		header[i] = fmt.Sprintf("H%d", i+1)
	}
	row := []string{"A", "A", "B", "B", "", "", "", "", "", ""}

	tab := ParsedTable{HeaderCells: header, DataRows: [][]string{row}, StartLine: 0, EndLine: 2}
	if !IsDegenerate(tab) {
		t.Error("Expected duplication ratio of exactly 0.5 to flag the table")
	}
}

func TestIsDegenerate_WideUniqueNotDegenerate(t *testing.T) {
	header := make([]string, 12)
	row := make([]string, 12)
	for i := range header {
		header[i] = fmt.Sprintf("H%d", i)
		row[i] = fmt.Sprintf("val%d", i)
	}

	tab := ParsedTable{HeaderCells: header, DataRows: [][]string{row}, StartLine: 0, EndLine: 2}
	if IsDegenerate(tab) {
		t.Error("Expected wide table with unique content to not be degenerate")
	}
}

func TestIsDegenerate_GenericHeadersTrigger(t *testing.T) {
	header := append([]string{"Title", "Name"}, genericHeaders(3, 15)...)
	row := make([]string, 14)
	for i := range row {
		row[i] = fmt.Sprintf("unique%d", i)
	}

	tab := ParsedTable{HeaderCells: header, DataRows: [][]string{row}, StartLine: 0, EndLine: 2}
	if !IsDegenerate(tab) {
		t.Error("Expected mostly generic headers to flag a wide table")
	}
}

// Helper to build Col<n> headers for n in [from, to).
func genericHeaders(from, to int) []string {
	headers := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		headers = append(headers, fmt.Sprintf("Col%d", i))
	}
	return headers
}
