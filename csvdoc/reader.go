// Package csvdoc converts CSV files to aligned Markdown tables.
//
// The delimiter is sniffed from a sample of the file (comma, semicolon
// or tab) and input that is not valid UTF-8 is decoded as Windows-1252.
// When the first row does not look like a header the columns are named
// "Column 1".."Column N".
package csvdoc

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/babissal/filetomd/tables"
)

// ErrEmpty is returned when the CSV file contains no rows.
var ErrEmpty = errors.New("csvdoc: file is empty")

// sniffSampleSize caps how much of the file the delimiter sniffer reads.
const sniffSampleSize = 8192

// Config configures the CSV converter.
type Config struct {
	// Logger for debug messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter turns CSV files into Markdown tables.
type Converter struct {
	cfg Config
}

// New creates a Converter with the given configuration.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{cfg: cfg}
}

// Convert reads the CSV file at path and returns it as an aligned
// Markdown table.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read CSV: %w", err)
	}

	text := decodeText(data)
	delim := sniffDelimiter(text)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return "", ErrEmpty
	}

	c.cfg.Logger.Debug("parsed CSV", "path", path, "rows", len(rows), "delimiter", string(delim))

	return renderTable(rows, hasHeader(rows)), nil
}

// decodeText strips a UTF-8 BOM and decodes the bytes as UTF-8, or as
// Windows-1252 when they are not valid UTF-8.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// sniffDelimiter picks the candidate delimiter that appears most often
// outside quotes in the first sniffSampleSize bytes. Comma wins ties.
func sniffDelimiter(text string) rune {
	sample := text
	if len(sample) > sniffSampleSize {
		sample = sample[:sniffSampleSize]
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, r := range sample {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ',', ';', '\t':
			if !inQuotes {
				counts[r]++
			}
		}
	}

	best := ','
	for _, cand := range []rune{';', '\t'} {
		if counts[cand] > counts[best] {
			best = cand
		}
	}
	return best
}

// hasHeader reports whether the first row looks like a header. For each
// column whose data cells all parse as numbers, a non-numeric first
// cell votes for a header and a numeric one against. A single row or a
// tie counts as a header.
func hasHeader(rows [][]string) bool {
	if len(rows) < 2 {
		return true
	}

	votes := 0
	for col := range rows[0] {
		sawNumber := false
		allNumeric := true
		for _, row := range rows[1:] {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			if !isNumeric(cell) {
				allNumeric = false
				break
			}
			sawNumber = true
		}
		if !sawNumber || !allNumeric {
			continue
		}
		if isNumeric(strings.TrimSpace(rows[0][col])) {
			votes--
		} else {
			votes++
		}
	}
	return votes >= 0
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// renderTable normalizes rows to a rectangle, escapes cells, and
// renders an aligned table.
func renderTable(rows [][]string, header bool) string {
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	normalized := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, colCount)
		for j := 0; j < colCount && j < len(row); j++ {
			cells[j] = escapeCell(row[j])
		}
		normalized[i] = cells
	}

	if header {
		return tables.Render(normalized[0], normalized[1:])
	}

	generic := make([]string, colCount)
	for i := range generic {
		generic[i] = "Column " + strconv.Itoa(i+1)
	}
	return tables.Render(generic, normalized)
}

// escapeCell makes a raw CSV value safe inside a table cell: pipes are
// escaped and embedded newlines become <br>.
func escapeCell(cell string) string {
	cell = strings.ReplaceAll(cell, "|", `\|`)
	cell = strings.ReplaceAll(cell, "\r\n", "<br>")
	cell = strings.ReplaceAll(cell, "\n", "<br>")
	return cell
}
