package filetomd

import (
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/babissal/filetomd/format"
)

// maxFilenameStem caps the length of filenames derived from URLs.
const maxFilenameStem = 100

var (
	unsafeChars    = regexp.MustCompile(`[^\w.\-]`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// Discover returns the convertible files among paths, expanding
// directories as it goes. When recursive is true, directories are
// walked all the way down; otherwise only their immediate entries are
// considered. A non-empty formats list keeps only files of those
// formats. Duplicates are removed and the result is ordered by
// lowercased filename. Paths that do not exist are skipped.
func Discover(paths []string, recursive bool, formats []format.Format) []string {
	wanted := make(map[format.Format]bool, len(formats))
	for _, f := range formats {
		wanted[f] = true
	}
	accept := func(name string) bool {
		f := format.Detect(name)
		if f == format.Unknown {
			return false
		}
		return len(wanted) == 0 || wanted[f]
	}

	var discovered []string
	for _, p := range paths {
		info, err := os.Stat(p)
		switch {
		case err != nil:
			continue
		case !info.IsDir():
			if accept(p) {
				discovered = append(discovered, p)
			}
		case recursive:
			filepath.WalkDir(p, func(name string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return nil
				}
				if accept(name) {
					discovered = append(discovered, name)
				}
				return nil
			})
		default:
			entries, err := os.ReadDir(p)
			if err != nil {
				continue
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				if name := filepath.Join(p, entry.Name()); accept(name) {
					discovered = append(discovered, name)
				}
			}
		}
	}

	// Drop duplicates that reach the same file through different paths.
	seen := make(map[string]bool, len(discovered))
	unique := discovered[:0]
	for _, p := range discovered {
		key := resolvePath(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, p)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return strings.ToLower(filepath.Base(unique[i])) < strings.ToLower(filepath.Base(unique[j]))
	})
	return unique
}

// resolvePath normalizes a path for duplicate detection, following
// symlinks when possible.
func resolvePath(p string) string {
	resolved := p
	if abs, err := filepath.Abs(p); err == nil {
		resolved = abs
	}
	if real, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = real
	}
	return resolved
}

// OutputPath maps a source file to the path its Markdown should be
// written to. With no outputDir the output sits next to the source.
// With an outputDir, the source's directory structure relative to
// sourceBase is preserved beneath it; sources outside sourceBase land
// directly in outputDir.
//
// Example:
//
//	OutputPath("docs/guides/intro.pdf", "out", "docs") // out/guides/intro.md
func OutputPath(source, outputDir, sourceBase string) string {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + ".md"
	if outputDir == "" {
		return filepath.Join(filepath.Dir(source), name)
	}
	if sourceBase != "" {
		rel, err := filepath.Rel(sourceBase, filepath.Dir(source))
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.Join(outputDir, rel, name)
		}
	}
	return filepath.Join(outputDir, name)
}

// URLFilename derives a filesystem-safe Markdown filename from a URL.
// The host and path are kept, unsafe characters become underscores,
// and the stem is capped at 100 characters.
//
// Example:
//
//	URLFilename("https://docs.example.com/guide/intro") // docs.example.com_guide_intro.md
func URLFilename(rawURL string) string {
	stem := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		stem = u.Host + u.Path
	}
	stem = strings.TrimRight(stem, "/")
	stem = unsafeChars.ReplaceAllString(stem, "_")
	stem = underscoreRuns.ReplaceAllString(stem, "_")
	stem = strings.Trim(stem, "_")
	if stem == "" {
		stem = "page"
	}
	if len(stem) > maxFilenameStem {
		stem = stem[:maxFilenameStem]
	}
	return stem + ".md"
}
