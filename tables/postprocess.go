package tables

import "strings"

// PostprocessTables finds, classifies, and cleans or restructures every
// table in the document, returning the rewritten Markdown. Documents with no
// tables are returned unchanged.
//
// Tables are replaced in reverse document order: splicing the last table
// first means the line spans of earlier tables are still valid when their
// turn comes.
func PostprocessTables(markdown string) string {
	found := FindTables(markdown)
	if len(found) == 0 {
		return markdown
	}

	lines := strings.Split(markdown, "\n")

	for i := len(found) - 1; i >= 0; i-- {
		t := found[i]

		var replacement string
		if IsDegenerate(t) {
			replacement = RestructureDegenerate(t)
		} else {
			replacement = CleanTable(t)
		}

		repl := strings.Split(replacement, "\n")
		spliced := make([]string, 0, len(lines)-(t.EndLine-t.StartLine+1)+len(repl))
		spliced = append(spliced, lines[:t.StartLine]...)
		spliced = append(spliced, repl...)
		spliced = append(spliced, lines[t.EndLine+1:]...)
		lines = spliced
	}

	return strings.Join(lines, "\n")
}
