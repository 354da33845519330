// Package xlsxdoc converts Excel workbooks to Markdown.
//
// Each sheet becomes a "## <name>" section holding an aligned table
// with the first data row as header. Sheets without content render an
// *Empty sheet* placeholder.
package xlsxdoc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/babissal/filetomd/tables"
)

// Config configures the workbook converter.
type Config struct {
	// Logger for debug messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter turns Excel workbooks into Markdown.
type Converter struct {
	cfg Config
}

// New creates a Converter with the given configuration.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{cfg: cfg}
}

// Convert reads the workbook at path and returns one Markdown section
// per sheet.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var parts []string
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %q: %w", name, err)
		}

		parts = append(parts, "## "+name+"\n")

		rows = trimEmpty(rows)
		if len(rows) == 0 {
			parts = append(parts, "*Empty sheet*\n")
			continue
		}

		parts = append(parts, renderSheet(rows), "")
	}

	c.cfg.Logger.Debug("converted workbook", "path", path, "sheets", len(sheets))

	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// trimEmpty drops rows with no content and right-trims columns past
// the last non-empty cell.
func trimEmpty(rows [][]string) [][]string {
	var kept [][]string
	maxCol := 0
	for _, row := range rows {
		hasContent := false
		for i, cell := range row {
			if strings.TrimSpace(cell) != "" {
				hasContent = true
				if i+1 > maxCol {
					maxCol = i + 1
				}
			}
		}
		if hasContent {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	for i, row := range kept {
		if len(row) > maxCol {
			kept[i] = row[:maxCol]
		}
	}
	return kept
}

// renderSheet renders rows as an aligned table with the first row as
// header.
func renderSheet(rows [][]string) string {
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	formatted := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, colCount)
		for j := 0; j < colCount && j < len(row); j++ {
			cells[j] = formatCell(row[j])
		}
		formatted[i] = cells
	}

	return tables.Render(formatted[0], formatted[1:])
}

// formatCell cleans a sheet value for a table cell: trimmed, pipes
// escaped, newlines flattened to spaces.
func formatCell(cell string) string {
	cell = strings.TrimSpace(cell)
	cell = strings.ReplaceAll(cell, "|", `\|`)
	cell = strings.ReplaceAll(cell, "\r", "")
	cell = strings.ReplaceAll(cell, "\n", " ")
	return cell
}
