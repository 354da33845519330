// Package pptxdoc converts PowerPoint presentations to Markdown.
//
// Each slide becomes a "## Slide N" section separated by horizontal
// rules. Body text renders as bullet lists indented by outline level,
// tables render as pipe tables, pictures become placeholder markers,
// and speaker notes are appended after the slide body.
package pptxdoc

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/babissal/filetomd/tables"
)

// ErrNoSlides is returned when a presentation contains no slides.
var ErrNoSlides = errors.New("pptxdoc: no slides found")

// Config holds converter options.
type Config struct {
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter converts .pptx presentations to Markdown.
type Converter struct {
	logger *slog.Logger
}

// New creates a Converter with the given configuration.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{logger: cfg.Logger}
}

// Convert reads the presentation at path and returns its Markdown
// rendition. The document title is the file stem.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pptx file: %w", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	for _, name := range []string{"[Content_Types].xml", "ppt/presentation.xml"} {
		if _, ok := files[name]; !ok {
			return "", fmt.Errorf("not a valid pptx file: missing %s", name)
		}
	}

	slides := slideEntries(zr.File)
	if len(slides) == 0 {
		return "", ErrNoSlides
	}

	c.logger.Debug("converting presentation", "path", path, "slides", len(slides))

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var b strings.Builder
	b.WriteString("# " + stem + "\n")

	imageCount := 0
	for i, entry := range slides {
		slide, err := parseSlide(entry)
		if err != nil {
			return "", fmt.Errorf("failed to parse slide %d: %w", i+1, err)
		}
		renderSlide(&b, &slide.CSld.SpTree, i+1, &imageCount)
		if notes := slideNotes(files, entry.Name); notes != "" {
			b.WriteString("**Speaker Notes:**\n\n" + notes + "\n\n")
		}
	}

	return cleanMarkdown(b.String()), nil
}

// slideEntries returns the slide parts of the archive ordered by slide
// number. Relationship parts under _rels are not matched by the prefix.
func slideEntries(files []*zip.File) []*zip.File {
	var slides []*zip.File
	for _, f := range files {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})
	return slides
}

// slideNumber extracts the numeric suffix from a slide part name such
// as "ppt/slides/slide12.xml".
func slideNumber(name string) int {
	s := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseSlide(entry *zip.File) (*slideXML, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	var slide slideXML
	if err := xml.Unmarshal(data, &slide); err != nil {
		return nil, err
	}
	return &slide, nil
}

// renderSlide writes one slide section. imageCount numbers picture
// placeholders across the whole presentation.
func renderSlide(b *strings.Builder, tree *spTreeXML, num int, imageCount *int) {
	title, titleIdx := slideTitle(tree)

	fmt.Fprintf(b, "\n---\n\n## Slide %d", num)
	if title != "" {
		b.WriteString(": " + title)
	}
	b.WriteString("\n\n")

	for i := range tree.Sp {
		if i == titleIdx {
			continue
		}
		if bullets := bulletList(tree.Sp[i].TxBody); bullets != "" {
			b.WriteString(bullets + "\n\n")
		}
	}
	for i := range tree.GraphicFrame {
		if tbl := tree.GraphicFrame[i].Graphic.GraphicData.Tbl; tbl != nil {
			if md := renderSlideTable(tbl); md != "" {
				b.WriteString(md + "\n\n")
			}
		}
	}
	for range tree.Pic {
		*imageCount++
		fmt.Fprintf(b, "*[Image: slide_%d_image_%d]*\n\n", num, *imageCount)
	}
	for i := range tree.GrpSp {
		if text := groupText(&tree.GrpSp[i]); text != "" {
			b.WriteString(text + "\n\n")
		}
	}
}

// slideTitle returns the text of the first title placeholder and its
// index in the shape list, or ("", -1) when the slide has no title.
func slideTitle(tree *spTreeXML) (string, int) {
	for i := range tree.Sp {
		ph := tree.Sp[i].NvSpPr.NvPr.Ph
		if ph == nil {
			continue
		}
		if ph.Type == "title" || ph.Type == "ctrTitle" {
			return shapeText(tree.Sp[i].TxBody), i
		}
	}
	return "", -1
}

// bulletList renders every non-empty paragraph of a text body as a
// bullet, indented two spaces per outline level.
func bulletList(body *txBodyXML) string {
	if body == nil {
		return ""
	}
	var lines []string
	for i := range body.P {
		text := paragraphText(&body.P[i])
		if text == "" {
			continue
		}
		indent := ""
		if pr := body.P[i].PPr; pr != nil && pr.Lvl > 0 {
			indent = strings.Repeat("  ", pr.Lvl)
		}
		lines = append(lines, indent+"- "+text)
	}
	return strings.Join(lines, "\n")
}

// paragraphText concatenates the run and field text of one paragraph.
func paragraphText(p *pXML) string {
	var sb strings.Builder
	for _, r := range p.R {
		sb.WriteString(r.T)
	}
	for _, f := range p.Fld {
		sb.WriteString(f.T)
	}
	return strings.TrimSpace(sb.String())
}

// shapeText joins the non-empty paragraphs of a text body with
// newlines.
func shapeText(body *txBodyXML) string {
	if body == nil {
		return ""
	}
	var lines []string
	for i := range body.P {
		if text := paragraphText(&body.P[i]); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// renderSlideTable converts a slide table to a pipe table with the
// first row as the header.
func renderSlideTable(tbl *tblXML) string {
	var rows [][]string
	for i := range tbl.Tr {
		var cells []string
		for j := range tbl.Tr[i].Tc {
			cells = append(cells, cellText(tbl.Tr[i].Tc[j].TxBody))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return ""
	}
	return tables.Render(rows[0], rows[1:])
}

// cellText flattens a table cell to a single line with pipes escaped.
func cellText(body *txBodyXML) string {
	text := strings.ReplaceAll(shapeText(body), "\n", " ")
	return strings.ReplaceAll(text, "|", "\\|")
}

// groupText collects the text of every shape in a group, including
// nested groups, one shape per line.
func groupText(grp *grpSpXML) string {
	var texts []string
	for i := range grp.Sp {
		if text := shapeText(grp.Sp[i].TxBody); text != "" {
			texts = append(texts, text)
		}
	}
	for i := range grp.GrpSp {
		if text := groupText(&grp.GrpSp[i]); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n")
}

// slideNotes returns the speaker notes for the given slide part, found
// through its relationships file. Notes text comes from the body
// placeholder of the notes slide.
func slideNotes(files map[string]*zip.File, slideName string) string {
	relsName := "ppt/slides/_rels/" + filepath.Base(slideName) + ".rels"
	relsFile, ok := files[relsName]
	if !ok {
		return ""
	}

	var rels relationshipsXML
	if err := parsePart(relsFile, &rels); err != nil {
		return ""
	}

	for _, rel := range rels.Relationship {
		if !strings.HasSuffix(rel.Type, "/notesSlide") {
			continue
		}
		target := rel.Target
		if strings.HasPrefix(target, "../") {
			target = "ppt/" + strings.TrimPrefix(target, "../")
		}
		notesFile, ok := files[target]
		if !ok {
			return ""
		}
		var notes notesSlideXML
		if err := parsePart(notesFile, &notes); err != nil {
			return ""
		}
		for i := range notes.CSld.SpTree.Sp {
			ph := notes.CSld.SpTree.Sp[i].NvSpPr.NvPr.Ph
			if ph != nil && ph.Type == "body" {
				return shapeText(notes.CSld.SpTree.Sp[i].TxBody)
			}
		}
		return ""
	}
	return ""
}

func parsePart(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, v)
}

// cleanMarkdown caps runs of blank lines at two and trims the result.
func cleanMarkdown(markdown string) string {
	lines := strings.Split(markdown, "\n")
	cleaned := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
