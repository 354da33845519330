package filetomd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/babissal/filetomd/csvdoc"
	"github.com/babissal/filetomd/docxdoc"
	"github.com/babissal/filetomd/format"
	"github.com/babissal/filetomd/htmldoc"
	"github.com/babissal/filetomd/imagedoc"
	"github.com/babissal/filetomd/msgdoc"
	"github.com/babissal/filetomd/pdfdoc"
	"github.com/babissal/filetomd/pptxdoc"
	"github.com/babissal/filetomd/quality"
	"github.com/babissal/filetomd/tables"
	"github.com/babissal/filetomd/urldoc"
	"github.com/babissal/filetomd/videodoc"
	"github.com/babissal/filetomd/xlsxdoc"
)

// ErrUnsupportedFormat is returned when a source has no converter for
// its file type.
var ErrUnsupportedFormat = errors.New("filetomd: unsupported file format")

// Converter provides a fluent interface for converting documents to
// Markdown. Each configuration method returns a new Converter
// instance, making it safe for concurrent use and allowing method
// chaining.
type Converter struct {
	options convertOptions
}

// clone creates a copy of the Converter with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (c *Converter) clone() *Converter {
	return &Converter{options: c.options.clone()}
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// WithFormats restricts directory discovery to the given formats.
// Multiple calls are cumulative. Single-file conversions are not
// affected.
//
// Example:
//
//	results, err := filetomd.New().
//	    WithFormats(format.PDF, format.DOCX).
//	    ConvertDir(ctx, "./docs", true)
func (c *Converter) WithFormats(formats ...format.Format) *Converter {
	newConv := c.clone()
	newConv.options.formats = append(newConv.options.formats, formats...)
	return newConv
}

// WithWorkers sets how many conversions run concurrently in batch
// operations. Values below 1 are treated as 1.
//
// Example:
//
//	results := filetomd.New().WithWorkers(8).ConvertBatch(ctx, paths)
func (c *Converter) WithWorkers(n int) *Converter {
	newConv := c.clone()
	if n < 1 {
		n = 1
	}
	newConv.options.workers = n
	return newConv
}

// WithOCRLanguages sets the Tesseract language codes used for image
// and video text extraction, such as "eng" or "deu". Multiple calls
// are cumulative.
//
// Example:
//
//	result, err := filetomd.New().WithOCRLanguages("eng", "fra").ConvertFile(ctx, "scan.png")
func (c *Converter) WithOCRLanguages(languages ...string) *Converter {
	newConv := c.clone()
	newConv.options.languages = append(newConv.options.languages, languages...)
	return newConv
}

// WithTimeout bounds each individual conversion. Zero means no limit.
//
// Example:
//
//	results := filetomd.New().WithTimeout(2 * time.Minute).ConvertBatch(ctx, paths)
func (c *Converter) WithTimeout(d time.Duration) *Converter {
	newConv := c.clone()
	newConv.options.timeout = d
	return newConv
}

// WithPostprocess enables table repair on the converted Markdown of
// every format. Pipe tables are normalized and degenerate single-row
// tables are restructured. PDF output is always repaired regardless of
// this setting.
//
// Example:
//
//	result, err := filetomd.New().WithPostprocess(true).ConvertFile(ctx, "notes.docx")
func (c *Converter) WithPostprocess(on bool) *Converter {
	newConv := c.clone()
	newConv.options.postprocess = on
	return newConv
}

// WithLogger sets the logger passed to every underlying converter.
// A nil logger restores slog.Default().
func (c *Converter) WithLogger(logger *slog.Logger) *Converter {
	newConv := c.clone()
	if logger == nil {
		logger = slog.Default()
	}
	newConv.options.logger = logger
	return newConv
}

// ============================================================================
// Terminal Operations (execute conversion and return results)
// ============================================================================

// ConvertFile converts a single document to Markdown.
//
// The returned Result always carries the source name; on failure its
// Err field matches the returned error.
//
// Example:
//
//	result, err := filetomd.New().ConvertFile(ctx, "report.pdf")
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(result.Markdown)
func (c *Converter) ConvertFile(ctx context.Context, filePath string) (Result, error) {
	result := c.convertOne(ctx, filePath)
	return result, result.Err
}

// ConvertURL fetches a web page, extracts its main article content,
// and converts it to Markdown.
//
// Example:
//
//	result, err := filetomd.New().ConvertURL(ctx, "https://example.com/guide")
func (c *Converter) ConvertURL(ctx context.Context, rawURL string) (Result, error) {
	result := c.convertOne(ctx, rawURL)
	return result, result.Err
}

// ConvertBatch converts files and URLs concurrently, up to the
// configured worker count at a time. It returns one Result per source,
// ordered by source name. Individual failures are reported in the
// Result rather than aborting the batch.
//
// Example:
//
//	results := filetomd.New().ConvertBatch(ctx, []string{"a.pdf", "b.docx"})
//	for _, r := range results {
//	    if r.Err != nil {
//	        log.Printf("%s: %v", r.Source, r.Err)
//	    }
//	}
func (c *Converter) ConvertBatch(ctx context.Context, sources []string) []Result {
	c.options.logger.Debug("converting batch", "sources", len(sources), "workers", c.options.workers)

	results := make([]Result, len(sources))
	sem := make(chan struct{}, c.options.workers)
	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = c.convertOne(ctx, source)
		}()
	}
	wg.Wait()

	sortResults(results)
	return results
}

// ConvertDir discovers convertible files in a directory and converts
// them as a batch. When recursive is true, subdirectories are searched
// too. Formats configured with WithFormats limit what is picked up.
//
// Example:
//
//	results, err := filetomd.New().ConvertDir(ctx, "./docs", true)
func (c *Converter) ConvertDir(ctx context.Context, dir string, recursive bool) ([]Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return c.ConvertBatch(ctx, Discover([]string{dir}, recursive, c.options.formats)), nil
}

// ConvertAndMerge converts sources as a batch and writes every
// successful conversion into a single Markdown file at outPath, each
// section titled with its source name and separated by a horizontal
// rule. No per-source files are written. When nothing converts
// successfully, no file is written.
//
// Example:
//
//	results, err := filetomd.New().ConvertAndMerge(ctx, paths, "combined.md")
func (c *Converter) ConvertAndMerge(ctx context.Context, sources []string, outPath string) ([]Result, error) {
	results := c.ConvertBatch(ctx, sources)

	merged := MergeResults(results)
	if merged == "" {
		return results, nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return results, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(merged), 0o644); err != nil {
		return results, fmt.Errorf("failed to write merged output: %w", err)
	}

	c.options.logger.Debug("wrote merged output", "path", outPath)
	return results, nil
}

// MergeResults combines the successful results into one Markdown
// document. Each section is headed by its source name and sections are
// separated by horizontal rules. It returns "" when no result
// succeeded.
func MergeResults(results []Result) string {
	var sections []string
	for _, r := range results {
		if r.Err == nil {
			sections = append(sections, "# "+sourceName(r.Source)+"\n\n"+r.Markdown)
		}
	}
	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n\n---\n\n") + "\n"
}

// ============================================================================
// Conversion Dispatch
// ============================================================================

// convertOne runs a single conversion and captures any failure,
// including panics from malformed input deep inside format libraries,
// in the Result.
func (c *Converter) convertOne(ctx context.Context, source string) (result Result) {
	result.Source = source
	defer func() {
		if r := recover(); r != nil {
			result = Result{Source: source, Err: fmt.Errorf("conversion panicked: %v", r)}
		}
	}()

	if c.options.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.timeout)
		defer cancel()
	}

	markdown, err := c.dispatch(ctx, source)
	if err != nil {
		c.options.logger.Debug("conversion failed", "source", source, "error", err)
		result.Err = err
		return result
	}

	if c.options.postprocess {
		markdown = tables.PostprocessTables(markdown)
	}
	result.Markdown = markdown
	result.Quality = quality.Score(markdown)
	return result
}

// dispatch routes a source to the converter for its format.
func (c *Converter) dispatch(ctx context.Context, source string) (string, error) {
	if IsURL(source) {
		conv := urldoc.New(urldoc.Config{Logger: c.options.logger, Timeout: c.options.timeout})
		return conv.Convert(ctx, source)
	}

	switch format.Detect(source) {
	case format.PDF:
		return pdfdoc.New(pdfdoc.Config{Logger: c.options.logger}).Convert(ctx, source)
	case format.DOCX:
		return docxdoc.New(docxdoc.Config{Logger: c.options.logger}).Convert(ctx, source)
	case format.XLSX:
		return xlsxdoc.New(xlsxdoc.Config{Logger: c.options.logger}).Convert(ctx, source)
	case format.PPTX:
		return pptxdoc.New(pptxdoc.Config{Logger: c.options.logger}).Convert(ctx, source)
	case format.HTML:
		return htmldoc.New(htmldoc.Config{Logger: c.options.logger}).Convert(ctx, source)
	case format.CSV:
		return csvdoc.New(csvdoc.Config{Logger: c.options.logger}).Convert(ctx, source)
	case format.MSG:
		return msgdoc.New(msgdoc.Config{Logger: c.options.logger}).Convert(ctx, source)
	case format.Image:
		conv := imagedoc.New(imagedoc.Config{Logger: c.options.logger, Languages: c.options.languages})
		return conv.Convert(ctx, source)
	case format.Video:
		conv := videodoc.New(videodoc.Config{Logger: c.options.logger, Languages: c.options.languages})
		return conv.Convert(ctx, source)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, strings.ToLower(filepath.Ext(source)))
	}
}

// sortResults orders results by lowercased source name so batch output
// is stable regardless of completion order.
func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return strings.ToLower(sourceName(results[i].Source)) < strings.ToLower(sourceName(results[j].Source))
	})
}

// sourceName returns the display name for a source: the base filename
// for paths, or the last path segment (falling back to the host) for
// URLs.
func sourceName(source string) string {
	if IsURL(source) {
		if u, err := url.Parse(source); err == nil {
			name := path.Base(u.Host + strings.TrimRight(u.Path, "/"))
			if name != "" && name != "." && name != "/" {
				return name
			}
		}
		return source
	}
	return filepath.Base(source)
}
