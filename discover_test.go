package filetomd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/babissal/filetomd/format"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
	return path
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func TestDiscover_Flat(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.pdf")
	touch(t, dir, "a.csv")
	touch(t, dir, "skip.txt")
	touch(t, dir, filepath.Join("sub", "c.csv"))

	got := baseNames(Discover([]string{dir}, false, nil))
	want := []string{"a.csv", "b.pdf"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscover_Recursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.csv")
	touch(t, dir, "skip.txt")
	touch(t, dir, filepath.Join("sub", "c.csv"))
	touch(t, dir, filepath.Join("sub", "deep", "B.pdf"))

	got := baseNames(Discover([]string{dir}, true, nil))
	want := []string{"a.csv", "B.pdf", "c.csv"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscover_FormatFilter(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.csv")
	touch(t, dir, "b.pdf")

	got := baseNames(Discover([]string{dir}, false, []format.Format{format.CSV}))
	if len(got) != 1 || got[0] != "a.csv" {
		t.Errorf("Discover() = %v, want [a.csv]", got)
	}
}

func TestDiscover_DedupesExplicitAndDiscovered(t *testing.T) {
	dir := t.TempDir()
	file := touch(t, dir, "a.csv")

	got := Discover([]string{file, dir, file}, false, nil)
	if len(got) != 1 {
		t.Errorf("Discover() = %v, want a single entry", got)
	}
}

func TestDiscover_SkipsMissingPaths(t *testing.T) {
	got := Discover([]string{filepath.Join(t.TempDir(), "absent.csv")}, false, nil)
	if len(got) != 0 {
		t.Errorf("Discover() = %v, want empty", got)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		outputDir  string
		sourceBase string
		want       string
	}{
		{
			name:   "next to source",
			source: filepath.Join("docs", "report.pdf"),
			want:   filepath.Join("docs", "report.md"),
		},
		{
			name:   "bare filename",
			source: "report.pdf",
			want:   "report.md",
		},
		{
			name:      "flat output dir",
			source:    filepath.Join("docs", "report.pdf"),
			outputDir: "out",
			want:      filepath.Join("out", "report.md"),
		},
		{
			name:       "preserves structure under base",
			source:     filepath.Join("docs", "guides", "intro.pdf"),
			outputDir:  "out",
			sourceBase: "docs",
			want:       filepath.Join("out", "guides", "intro.md"),
		},
		{
			name:       "source directly in base",
			source:     filepath.Join("docs", "intro.pdf"),
			outputDir:  "out",
			sourceBase: "docs",
			want:       filepath.Join("out", "intro.md"),
		},
		{
			name:       "source outside base lands flat",
			source:     filepath.Join("elsewhere", "doc.pdf"),
			outputDir:  "out",
			sourceBase: "docs",
			want:       filepath.Join("out", "doc.md"),
		},
		{
			name:       "source above base lands flat",
			source:     "doc.pdf",
			outputDir:  "out",
			sourceBase: "docs",
			want:       filepath.Join("out", "doc.md"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputPath(tt.source, tt.outputDir, tt.sourceBase); got != tt.want {
				t.Errorf("OutputPath(%q, %q, %q) = %q, want %q",
					tt.source, tt.outputDir, tt.sourceBase, got, tt.want)
			}
		})
	}
}

func TestURLFilename(t *testing.T) {
	longPath := "https://example.com/" + strings.Repeat("a", 150)
	longWant := ("example.com_" + strings.Repeat("a", 150))[:maxFilenameStem] + ".md"

	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://docs.example.com/guide/intro", "docs.example.com_guide_intro.md"},
		{"https://docs.example.com/guide/", "docs.example.com_guide.md"},
		{"https://example.com", "example.com.md"},
		{"https://example.com/path/to/page.html", "example.com_path_to_page.html.md"},
		{"https://example.com:8080/api?q=1", "example.com_8080_api.md"},
		{"https://example.com/a  b", "example.com_a_b.md"},
		{"https://", "page.md"},
		{longPath, longWant},
	}

	for _, tt := range tests {
		if got := URLFilename(tt.rawURL); got != tt.want {
			t.Errorf("URLFilename(%q) = %q, want %q", tt.rawURL, got, tt.want)
		}
	}
}
