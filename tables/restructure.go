package tables

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// fragLen is the fragment threshold: items this many characters or shorter
// are candidates for merging with their neighbors.
const fragLen = 4

// RestructureDegenerate converts a degenerate table into a heading plus
// role-grouped bullet lists.
//
// When column 0 holds a single repeated value across all data rows, that
// value becomes a level-2 title and the role label shifts to column 1;
// otherwise column 0 is the role. The remaining cells of each row are
// collected as unique content items per role, in first-seen order, and each
// role is emitted as a level-3 heading followed by one bullet per item after
// fragment merging.
func RestructureDegenerate(t ParsedTable) string {
	var lines []string

	// Determine if column 0 is a repeated title.
	col0 := make(map[string]struct{})
	for _, r := range t.DataRows {
		if len(r) > 0 && strings.TrimSpace(r[0]) != "" {
			col0[strings.TrimSpace(stripBold(cleanBr(r[0])))] = struct{}{}
		}
	}
	title := ""
	if len(col0) == 1 {
		for v := range col0 {
			title = v
		}
	}

	if title != "" {
		lines = append(lines, "## "+title, "")
	}

	roleItems := make(map[string][]string)
	var roleOrder []string

	// The header row itself may carry role-like data, e.g. a real label
	// sitting in the role-column position among Col<n> placeholders.
	if len(t.HeaderCells) > 1 {
		roleHeader := strings.TrimSpace(stripBold(cleanBr(t.HeaderCells[1])))
		if roleHeader != "" && !genericHeaderRe.MatchString(roleHeader) {
			if items := collectUniqueItems(t.HeaderCells[2:]); len(items) > 0 {
				roleItems[roleHeader] = items
				roleOrder = append(roleOrder, roleHeader)
			}
		}
	}

	for _, row := range t.DataRows {
		if len(row) == 0 {
			continue
		}

		roleCol := 0
		if title != "" && len(row) > 1 {
			roleCol = 1
		}
		role := ""
		if roleCol < len(row) {
			role = strings.TrimSpace(stripBold(cleanBr(row[roleCol])))
		}

		var contentCells []string
		if roleCol+1 < len(row) {
			contentCells = row[roleCol+1:]
		}
		items := collectUniqueItems(contentCells)

		if role == "" {
			continue
		}
		if _, ok := roleItems[role]; !ok {
			roleItems[role] = nil
			roleOrder = append(roleOrder, role)
		}
		existing := make(map[string]struct{}, len(roleItems[role]))
		for _, it := range roleItems[role] {
			existing[it] = struct{}{}
		}
		for _, it := range items {
			if _, ok := existing[it]; !ok {
				roleItems[role] = append(roleItems[role], it)
				existing[it] = struct{}{}
			}
		}
	}

	for _, role := range roleOrder {
		items := mergeShortFragments(roleItems[role])
		lines = append(lines, "### "+role, "")
		for _, item := range items {
			lines = append(lines, "- "+item)
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// collectUniqueItems collects unique non-empty content from cells. Each cell
// is one item: <br> tags are joined with spaces rather than split into
// separate bullets. Bold and strikethrough markers are stripped, and generic
// Col<n> values that leaked from the header are filtered out.
func collectUniqueItems(cells []string) []string {
	seen := make(map[string]struct{})
	var items []string

	for _, cell := range cells {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		cleaned := strings.TrimSpace(stripBold(cleanBr(cell)))
		cleaned = strikethroughRe.ReplaceAllString(cleaned, "$1")
		if cleaned == "" {
			continue
		}
		if genericHeaderRe.MatchString(cleaned) {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		items = append(items, cleaned)
	}

	return items
}

// isAlpha reports whether s is non-empty and entirely letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// mergeShortFragments merges short text fragments that are likely split
// across PDF cell boundaries, e.g. ["YE", "S"] becoming ["YES"].
//
// A non-adjacent pass runs first: two short alphabetic fragments separated
// by exactly one longer item are joined into a single word, keeping the
// middle item. An adjacent pass then walks the list: two consecutive short
// items join directly, a short item before a longer one is prepended with a
// space, and a trailing short item is appended to the previous output item.
func mergeShortFragments(items []string) []string {
	if len(items) <= 1 {
		return items
	}

	items = mergeNonAdjacentAlphaFragments(items)

	var merged []string
	for i := 0; i < len(items); {
		item := items[i]
		if utf8.RuneCountInString(item) <= fragLen && i+1 < len(items) {
			next := items[i+1]
			if utf8.RuneCountInString(next) <= fragLen {
				// Two consecutive short items, likely one split word.
				merged = append(merged, item+next)
			} else {
				merged = append(merged, item+" "+next)
			}
			i += 2
			continue
		}
		if utf8.RuneCountInString(item) <= fragLen && len(merged) > 0 {
			// Short item at the end: append to the previous item.
			merged[len(merged)-1] += " " + item
			i++
			continue
		}
		merged = append(merged, item)
		i++
	}

	return merged
}

// mergeNonAdjacentAlphaFragments merges patterns like
// ["YE", "long content", "S"] into ["YES", "long content"]: two short
// alpha-only fragments separated by exactly one longer item. After a merge
// the scan advances past the merged word and the middle item, so chains of
// three or more split fragments are only partially merged.
func mergeNonAdjacentAlphaFragments(items []string) []string {
	if len(items) < 3 {
		return items
	}

	result := make([]string, len(items))
	copy(result, items)

	for i := 0; i < len(result)-2; {
		a := result[i]
		if utf8.RuneCountInString(a) > fragLen || !isAlpha(a) {
			i++
			continue
		}

		mid := result[i+1]
		b := result[i+2]
		if utf8.RuneCountInString(b) <= fragLen && isAlpha(b) && utf8.RuneCountInString(mid) > fragLen {
			result[i] = a + b
			result[i+1] = mid
			result = append(result[:i+2], result[i+3:]...)
			i += 2
			continue
		}

		i++
	}

	return result
}
