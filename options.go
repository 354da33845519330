package filetomd

import (
	"log/slog"
	"time"

	"github.com/babissal/filetomd/format"
)

// defaultWorkers is the number of concurrent conversions used by batch
// operations unless WithWorkers overrides it.
const defaultWorkers = 4

// convertOptions holds configuration for document conversion.
type convertOptions struct {
	// Format selection (nil means all supported formats)
	formats []format.Format

	// Batch processing
	workers int
	timeout time.Duration

	// OCR
	languages []string

	// Output
	postprocess bool

	logger *slog.Logger
}

// defaultOptions returns the default conversion options.
func defaultOptions() convertOptions {
	return convertOptions{
		formats:     nil, // nil means every supported format
		workers:     defaultWorkers,
		timeout:     0, // 0 means no per-file timeout
		languages:   nil,
		postprocess: false,
		logger:      slog.Default(),
	}
}

// clone creates a deep copy of convertOptions.
func (o convertOptions) clone() convertOptions {
	newOpts := convertOptions{
		workers:     o.workers,
		timeout:     o.timeout,
		postprocess: o.postprocess,
		logger:      o.logger,
	}

	// Deep copy formats slice
	if o.formats != nil {
		newOpts.formats = make([]format.Format, len(o.formats))
		copy(newOpts.formats, o.formats)
	}

	// Deep copy languages slice
	if o.languages != nil {
		newOpts.languages = make([]string, len(o.languages))
		copy(newOpts.languages, o.languages)
	}

	return newOpts
}
