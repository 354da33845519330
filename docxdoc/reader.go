// Package docxdoc converts Word documents to Markdown.
//
// Heading styles map to #-prefixed lines, document tables render as
// aligned Markdown tables, and remaining paragraphs pass through as
// text blocks separated by blank lines.
package docxdoc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/babissal/filetomd/tables"
)

// Config configures the Word converter.
type Config struct {
	// Logger for debug messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter turns Word documents into Markdown.
type Converter struct {
	cfg Config
}

// New creates a Converter with the given configuration.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{cfg: cfg}
}

// Convert reads the document at path and returns its Markdown
// rendering.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat document: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}

	var parts []string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := paragraphText(it)
			if text == "" {
				continue
			}
			if level := headingLevel(it); level > 0 {
				parts = append(parts, strings.Repeat("#", level)+" "+text)
			} else {
				parts = append(parts, text)
			}
		case *docx.Table:
			if md := renderDocTable(it); md != "" {
				parts = append(parts, md)
			}
		}
	}

	c.cfg.Logger.Debug("converted document", "path", path, "blocks", len(parts))

	return strings.Join(parts, "\n\n"), nil
}

// headingLevel maps Word heading styles to Markdown levels, 0 for body
// text. Both "Heading1" and "heading 1" style ids appear in the wild.
func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

// paragraphText concatenates the text runs of a paragraph.
func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// renderDocTable flattens a document table into an aligned Markdown
// table with the first row as header. Multi-paragraph cells join with
// <br>.
func renderDocTable(tbl *docx.Table) string {
	var rows [][]string
	for _, tr := range tbl.TableRows {
		var cells []string
		for _, tc := range tr.TableCells {
			var lines []string
			for _, p := range tc.Paragraphs {
				if text := paragraphText(p); text != "" {
					lines = append(lines, text)
				}
			}
			cells = append(cells, strings.ReplaceAll(strings.Join(lines, "<br>"), "|", `\|`))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}

	if len(rows) == 0 {
		return ""
	}
	return tables.Render(rows[0], rows[1:])
}
