// Package filetomd provides a fluent API for converting documents to
// Markdown.
//
// It handles PDF, Word, Excel, PowerPoint, HTML, CSV, Outlook message,
// image, and video files, plus web pages fetched by URL. Every
// conversion is scored for quality, and pipe tables in the output can
// be repaired after conversion.
//
// Basic usage:
//
//	result, err := filetomd.New().ConvertFile(ctx, "report.pdf")
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(result.Markdown)
//
// With options:
//
//	results, err := filetomd.New().
//	    WithWorkers(8).
//	    WithOCRLanguages("eng", "deu").
//	    ConvertDir(ctx, "./docs", true)
//
// For advanced use cases, the per-format packages (pdfdoc, htmldoc,
// and so on) are also available.
package filetomd

import "strings"

// New returns a Converter with default options for fluent
// configuration. Converters are immutable: every With* method returns
// a configured copy, so a single Converter is safe to share across
// goroutines.
//
// Example:
//
//	result, err := filetomd.New().ConvertFile(ctx, "report.pdf")
func New() *Converter {
	return &Converter{
		options: defaultOptions(),
	}
}

// Result holds the outcome of a single conversion.
type Result struct {
	// Source is the file path or URL that was converted.
	Source string

	// Markdown is the converted document. Empty when Err is set.
	Markdown string

	// Quality estimates how faithfully the Markdown preserved the
	// source content, from 0.0 (unusable) to 1.0.
	Quality float64

	// Err reports why the conversion failed, if it did.
	Err error
}

// IsURL reports whether source names a web address rather than a
// local file.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	markdown := filetomd.Must(filetomd.New().ConvertFile(ctx, "report.pdf")).Markdown
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
