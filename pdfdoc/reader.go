// Package pdfdoc converts PDF documents to Markdown.
//
// Text is extracted page by page with the pdf library. When extraction
// fails or produces no text, the external pdftotext command is used as
// a fallback if it is installed. The result is normalized and run
// through the table post-processor, since PDF text extraction is the
// main source of malformed tables.
package pdfdoc

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/babissal/filetomd/tables"
)

// Config holds the options for a PDF converter.
type Config struct {
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter converts PDF files to Markdown.
type Converter struct {
	logger *slog.Logger
}

// New creates a PDF converter.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{logger: cfg.Logger}
}

// Convert reads the PDF at path and returns its text content as
// Markdown, with pages separated by blank lines.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := extractText(ctx, path)
	if err != nil || strings.TrimSpace(text) == "" {
		if fallback, ferr := pdftotext(ctx, path); ferr == nil {
			c.logger.Debug("used pdftotext fallback", "path", path)
			text, err = fallback, nil
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	markdown := renderMarkdown(text)
	c.logger.Debug("converted pdf", "path", path, "chars", len(markdown))
	return markdown, nil
}

// extractText pulls plain text from every page, separated by form
// feeds. Pages that cannot be decoded are skipped.
func extractText(ctx context.Context, path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

// pdftotext shells out to the pdftotext command, if installed.
func pdftotext(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", err
	}
	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// renderMarkdown joins form-feed separated pages with blank lines,
// collapses runs of blank lines and repairs any extracted tables.
func renderMarkdown(text string) string {
	var pages []string
	for _, page := range strings.Split(text, "\f") {
		if page = strings.TrimSpace(page); page != "" {
			pages = append(pages, page)
		}
	}
	markdown := cleanMarkdown(strings.Join(pages, "\n\n"))
	return tables.PostprocessTables(markdown)
}

// cleanMarkdown collapses runs of blank lines down to a single blank
// line and trims surrounding whitespace.
func cleanMarkdown(markdown string) string {
	lines := strings.Split(markdown, "\n")
	cleaned := make([]string, 0, len(lines))
	prevBlank := false
	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if blank && prevBlank {
			continue
		}
		cleaned = append(cleaned, line)
		prevBlank = blank
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
