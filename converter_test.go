package filetomd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/babissal/filetomd/format"
)

const (
	alphaCSV   = "Name,Role\nAlice,Engineer\n"
	alphaTable = "| Name  | Role     |\n|-------|----------|\n| Alice | Engineer |"
	betaCSV    = "X,Y\n1,2\n"
	betaTable  = "| X   | Y   |\n|-----|-----|\n| 1   | 2   |"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
	return path
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"http://example.com", true},
		{"https://example.com/page", true},
		{"ftp://example.com", false},
		{"docs/report.pdf", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsURL(tt.source); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestConvertFile_CSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.csv", alphaCSV)

	result, err := New().ConvertFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}

	if result.Source != path {
		t.Errorf("Source = %q, want %q", result.Source, path)
	}
	if result.Markdown != alphaTable {
		t.Errorf("Markdown = %q, want %q", result.Markdown, alphaTable)
	}
	if result.Quality <= 0 {
		t.Errorf("Quality = %v, want > 0", result.Quality)
	}
}

func TestConvertFile_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.xyz", "plain text")

	result, err := New().ConvertFile(context.Background(), path)
	if err == nil {
		t.Fatal("ConvertFile() expected error for unsupported format")
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
	if result.Err == nil {
		t.Error("Result.Err not set")
	}
	if result.Source != path {
		t.Errorf("Source = %q, want %q", result.Source, path)
	}
}

func TestConvertFile_Timeout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.csv", alphaCSV)

	_, err := New().WithTimeout(time.Nanosecond).ConvertFile(context.Background(), path)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestConvertURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Release Notes</title></head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h2>Version 2.0</h2>
<p>This release adds long-form content extraction with enough text to pass
the minimum length check that guards landmark selection.</p>
</article>
</body>
</html>`))
	}))
	defer srv.Close()

	result, err := New().ConvertURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ConvertURL() error = %v", err)
	}

	if !strings.HasPrefix(result.Markdown, "# Release Notes") {
		t.Errorf("Expected title heading, got:\n%s", result.Markdown)
	}
	if !strings.Contains(result.Markdown, "long-form content extraction") {
		t.Errorf("Output missing article text:\n%s", result.Markdown)
	}
	if result.Quality <= 0 {
		t.Errorf("Quality = %v, want > 0", result.Quality)
	}
}

func TestConvertBatch_OrdersByName(t *testing.T) {
	dir := t.TempDir()
	beta := writeFile(t, dir, "beta.csv", betaCSV)
	gamma := writeFile(t, dir, "gamma.xyz", "opaque")
	alpha := writeFile(t, dir, "Alpha.csv", alphaCSV)

	results := New().ConvertBatch(context.Background(), []string{beta, gamma, alpha})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	wantOrder := []string{"Alpha.csv", "beta.csv", "gamma.xyz"}
	for i, want := range wantOrder {
		if got := filepath.Base(results[i].Source); got != want {
			t.Errorf("results[%d].Source = %s, want %s", i, got, want)
		}
	}

	if results[0].Err != nil || results[1].Err != nil {
		t.Errorf("CSV conversions failed: %v, %v", results[0].Err, results[1].Err)
	}
	if !errors.Is(results[2].Err, ErrUnsupportedFormat) {
		t.Errorf("results[2].Err = %v, want ErrUnsupportedFormat", results[2].Err)
	}
}

func TestConvertBatch_Empty(t *testing.T) {
	if results := New().ConvertBatch(context.Background(), nil); len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestConvertDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", alphaCSV)
	writeFile(t, dir, "b.csv", betaCSV)
	writeFile(t, dir, "skip.txt", "not convertible")

	results, err := New().ConvertDir(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("ConvertDir() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: unexpected error %v", r.Source, r.Err)
		}
	}
}

func TestConvertDir_NotADirectory(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.csv", alphaCSV)

	if _, err := New().ConvertDir(context.Background(), path, false); err == nil {
		t.Error("ConvertDir() expected error for file argument")
	}
}

func TestConvertDir_Missing(t *testing.T) {
	if _, err := New().ConvertDir(context.Background(), filepath.Join(t.TempDir(), "absent"), false); err == nil {
		t.Error("ConvertDir() expected error for missing directory")
	}
}

func TestConvertAndMerge(t *testing.T) {
	dir := t.TempDir()
	alpha := writeFile(t, dir, "Alpha.csv", alphaCSV)
	beta := writeFile(t, dir, "beta.csv", betaCSV)
	gamma := writeFile(t, dir, "gamma.xyz", "opaque")
	outPath := filepath.Join(dir, "out", "combined.md")

	results, err := New().ConvertAndMerge(context.Background(), []string{alpha, beta, gamma}, outPath)
	if err != nil {
		t.Fatalf("ConvertAndMerge() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	merged, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile(merged) error = %v", err)
	}
	want := "# Alpha.csv\n\n" + alphaTable + "\n\n---\n\n# beta.csv\n\n" + betaTable + "\n"
	if string(merged) != want {
		t.Errorf("merged output = %q, want %q", merged, want)
	}
}

func TestConvertAndMerge_NoSuccesses(t *testing.T) {
	dir := t.TempDir()
	gamma := writeFile(t, dir, "gamma.xyz", "opaque")
	outPath := filepath.Join(dir, "combined.md")

	results, err := New().ConvertAndMerge(context.Background(), []string{gamma}, outPath)
	if err != nil {
		t.Fatalf("ConvertAndMerge() error = %v", err)
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Fatalf("expected one failed result, got %+v", results)
	}

	if _, err := os.Stat(outPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("merged file should not exist, stat error = %v", err)
	}
}

func TestMergeResults(t *testing.T) {
	results := []Result{
		{Source: "a.csv", Markdown: "alpha"},
		{Source: "broken.pdf", Err: errors.New("boom")},
		{Source: "https://example.com/guide", Markdown: "web"},
	}

	want := "# a.csv\n\nalpha\n\n---\n\n# guide\n\nweb\n"
	if got := MergeResults(results); got != want {
		t.Errorf("MergeResults() = %q, want %q", got, want)
	}
}

func TestMergeResults_AllFailed(t *testing.T) {
	results := []Result{{Source: "a.pdf", Err: errors.New("boom")}}
	if got := MergeResults(results); got != "" {
		t.Errorf("MergeResults() = %q, want empty", got)
	}
}

func TestSourceName(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"/tmp/docs/report.pdf", "report.pdf"},
		{"notes.csv", "notes.csv"},
		{"https://docs.example.com/guide/intro", "intro"},
		{"https://docs.example.com/guide/", "guide"},
		{"https://example.com", "example.com"},
	}

	for _, tt := range tests {
		if got := sourceName(tt.source); got != tt.want {
			t.Errorf("sourceName(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestConfigurationIsImmutable(t *testing.T) {
	base := New()
	derived := base.
		WithWorkers(8).
		WithFormats(format.PDF).
		WithOCRLanguages("deu").
		WithPostprocess(true)

	if base.options.workers != defaultWorkers {
		t.Errorf("base workers = %d, want %d", base.options.workers, defaultWorkers)
	}
	if len(base.options.formats) != 0 || len(base.options.languages) != 0 || base.options.postprocess {
		t.Error("base options were mutated by configuration chain")
	}

	if derived.options.workers != 8 {
		t.Errorf("derived workers = %d, want 8", derived.options.workers)
	}
	if len(derived.options.formats) != 1 || derived.options.formats[0] != format.PDF {
		t.Errorf("derived formats = %v, want [PDF]", derived.options.formats)
	}
}

func TestWithWorkers_Floor(t *testing.T) {
	if got := New().WithWorkers(0).options.workers; got != 1 {
		t.Errorf("workers = %d, want 1", got)
	}
}

func TestWithLogger_Nil(t *testing.T) {
	if New().WithLogger(nil).options.logger == nil {
		t.Error("nil logger should fall back to slog.Default")
	}
}
