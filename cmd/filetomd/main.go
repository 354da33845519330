// Command filetomd converts documents and web pages to Markdown.
//
// Usage:
//
//	filetomd report.pdf                       # write report.md next to the source
//	filetomd -r -o ./markdown ./documents     # convert a directory tree
//	filetomd -f pdf -f docx -r ./input        # limit the formats picked up
//	filetomd -merge combined.md a.pdf b.docx  # one merged output file
//	filetomd https://example.com/guide        # fetch and convert a web page
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/babissal/filetomd"
	"github.com/babissal/filetomd/format"
)

// errConversionsFailed signals a non-zero exit after the per-file
// errors have already been printed.
var errConversionsFailed = errors.New("some conversions failed")

type options struct {
	outputDir  string
	recursive  bool
	workers    int
	formats    []format.Format
	mergePath  string
	dryRun     bool
	minQuality float64
}

func main() {
	var opts options
	flag.StringVar(&opts.outputDir, "o", "", "output directory (default: next to each source)")
	flag.BoolVar(&opts.recursive, "r", false, "recurse into directories")
	flag.IntVar(&opts.workers, "w", 4, "number of parallel conversions")
	flag.StringVar(&opts.mergePath, "merge", "", "write all conversions into a single file")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "show what would be converted without converting")
	flag.Float64Var(&opts.minQuality, "q", 0, "warn when a conversion scores below this quality (0.0-1.0)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Func("f", "only convert this format, repeatable: pdf, docx, xlsx, pptx, html, csv, msg, image, video", func(s string) error {
		f := format.Parse(s)
		if f == format.Unknown {
			return fmt.Errorf("unknown format %q", s)
		}
		opts.formats = append(opts.formats, f)
		return nil
	})
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: filetomd [flags] <paths or urls>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, flag.Args(), opts); err != nil {
		if !errors.Is(err, errConversionsFailed) {
			fmt.Fprintln(os.Stderr, "filetomd:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, args []string, opts options) error {
	var urls, paths []string
	for _, arg := range args {
		if filetomd.IsURL(arg) {
			urls = append(urls, arg)
		} else {
			paths = append(paths, arg)
		}
	}

	sources := append(filetomd.Discover(paths, opts.recursive, opts.formats), urls...)
	if len(sources) == 0 {
		fmt.Println("No files found to convert.")
		return nil
	}

	// A single directory argument becomes the base for mirroring its
	// structure into the output directory.
	sourceBase := ""
	if len(paths) == 1 {
		if info, err := os.Stat(paths[0]); err == nil && info.IsDir() {
			sourceBase = paths[0]
		}
	}

	if opts.dryRun {
		fmt.Println("Dry run - files that would be converted:")
		fmt.Println()
		for _, source := range sources {
			fmt.Printf("  %s\n    -> %s\n", source, outputPath(source, opts.outputDir, sourceBase))
		}
		fmt.Printf("\nWould convert %d file(s).\n", len(sources))
		return nil
	}

	conv := filetomd.New().
		WithWorkers(opts.workers).
		WithFormats(opts.formats...).
		WithLogger(logger)

	if opts.mergePath != "" {
		results, err := conv.ConvertAndMerge(ctx, sources, opts.mergePath)
		if err != nil {
			return err
		}
		return report(results, opts.minQuality, func(filetomd.Result) (string, error) {
			return opts.mergePath, nil
		})
	}

	results := conv.ConvertBatch(ctx, sources)
	return report(results, opts.minQuality, func(r filetomd.Result) (string, error) {
		out := outputPath(r.Source, opts.outputDir, sourceBase)
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(out, []byte(r.Markdown), 0o644); err != nil {
			return "", err
		}
		return out, nil
	})
}

// report prints one status line per result, handing successes to write,
// then the summary line. It returns errConversionsFailed when anything
// failed.
func report(results []filetomd.Result, minQuality float64, write func(filetomd.Result) (string, error)) error {
	converted, failed := 0, 0
	for _, r := range results {
		name := displayName(r.Source)
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "[ERROR] %s: %v\n", name, r.Err)
			continue
		}
		out, err := write(r)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "[ERROR] %s: %v\n", name, err)
			continue
		}
		converted++
		fmt.Printf("[OK] %s -> %s\n", name, out)
		if minQuality > 0 && r.Quality < minQuality {
			fmt.Fprintf(os.Stderr, "[WARN] %s: quality %.2f below %.2f\n", name, r.Quality, minQuality)
		}
	}

	fmt.Printf("\nConverted %d file(s), %d error(s).\n", converted, failed)
	if failed > 0 {
		return errConversionsFailed
	}
	return nil
}

// outputPath maps a source to its Markdown destination. URL outputs
// land in the output directory, or the working directory without one.
func outputPath(source, outputDir, sourceBase string) string {
	if filetomd.IsURL(source) {
		dir := outputDir
		if dir == "" {
			dir = "."
		}
		return filepath.Join(dir, filetomd.URLFilename(source))
	}
	return filetomd.OutputPath(source, outputDir, sourceBase)
}

// displayName keeps URLs whole in status lines and shortens file paths
// to their base name.
func displayName(source string) string {
	if filetomd.IsURL(source) {
		return source
	}
	return filepath.Base(source)
}
