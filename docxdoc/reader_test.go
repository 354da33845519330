package docxdoc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

// Helper to build a paragraph with a single text run.
func textPara(text string) *docx.Paragraph {
	return &docx.Paragraph{
		Children: []interface{}{
			&docx.Run{Children: []interface{}{&docx.Text{Text: text}}},
		},
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"heading 2", 2},
		{"Heading6", 6},
		{"Heading7", 0},
		{"Normal", 0},
	}

	for _, tt := range tests {
		p := textPara("x")
		p.Properties = &docx.ParagraphProperties{Style: &docx.Style{Val: tt.style}}
		if got := headingLevel(p); got != tt.want {
			t.Errorf("headingLevel(%q) = %d, want %d", tt.style, got, tt.want)
		}
	}

	if got := headingLevel(textPara("x")); got != 0 {
		t.Errorf("headingLevel without properties = %d, want 0", got)
	}
}

func TestParagraphText(t *testing.T) {
	p := &docx.Paragraph{
		Children: []interface{}{
			&docx.Run{Children: []interface{}{&docx.Text{Text: "Hello "}}},
			"not a run",
			&docx.Run{Children: []interface{}{&docx.Text{Text: "world"}}},
		},
	}

	if got := paragraphText(p); got != "Hello world" {
		t.Errorf("paragraphText = %q, want %q", got, "Hello world")
	}
}

func TestRenderDocTable(t *testing.T) {
	tbl := &docx.Table{
		TableRows: []*docx.WTableRow{
			{TableCells: []*docx.WTableCell{
				{Paragraphs: []*docx.Paragraph{textPara("Name")}},
				{Paragraphs: []*docx.Paragraph{textPara("Role")}},
			}},
			{TableCells: []*docx.WTableCell{
				{Paragraphs: []*docx.Paragraph{textPara("Alice")}},
				{Paragraphs: []*docx.Paragraph{textPara("Engineer")}},
			}},
		},
	}

	want := "| Name  | Role     |\n" +
		"|-------|----------|\n" +
		"| Alice | Engineer |"
	if got := renderDocTable(tbl); got != want {
		t.Errorf("renderDocTable:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderDocTable_MultiParagraphCell(t *testing.T) {
	tbl := &docx.Table{
		TableRows: []*docx.WTableRow{
			{TableCells: []*docx.WTableCell{
				{Paragraphs: []*docx.Paragraph{textPara("Notes")}},
			}},
			{TableCells: []*docx.WTableCell{
				{Paragraphs: []*docx.Paragraph{textPara("first"), textPara("second")}},
			}},
		},
	}

	if got := renderDocTable(tbl); !strings.Contains(got, "first<br>second") {
		t.Errorf("Expected multi-paragraph cell joined with <br>, got:\n%s", got)
	}
}

func TestRenderDocTable_Empty(t *testing.T) {
	if got := renderDocTable(&docx.Table{}); got != "" {
		t.Errorf("Expected empty string for empty table, got %q", got)
	}
}

func TestConvert_GeneratedDocument(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Quarterly results improved")
	w.AddParagraph().AddText("Margins held steady")

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		t.Fatalf("writing fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing fixture: %v", err)
	}

	got, err := New(Config{}).Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	if !strings.Contains(got, "Quarterly results improved") {
		t.Errorf("Expected first paragraph in output, got:\n%s", got)
	}
	if !strings.Contains(got, "Margins held steady") {
		t.Errorf("Expected second paragraph in output, got:\n%s", got)
	}
}

func TestConvert_MissingFile(t *testing.T) {
	_, err := New(Config{}).Convert(context.Background(), filepath.Join(t.TempDir(), "missing.docx"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}
