package tables

import "strings"

// rowDuplicationRatio is the fraction of non-empty cells in the row that are
// duplicates of another cell in the same row. A row with no non-empty cells
// scores 0.
func rowDuplicationRatio(cells []string) float64 {
	var nonEmpty []string
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	if len(nonEmpty) == 0 {
		return 0.0
	}
	unique := make(map[string]struct{}, len(nonEmpty))
	for _, c := range nonEmpty {
		unique[c] = struct{}{}
	}
	return 1.0 - float64(len(unique))/float64(len(nonEmpty))
}

// genericHeaderRatio is the fraction of non-empty headers matching the
// Col<n> placeholder pattern.
func genericHeaderRatio(headers []string) float64 {
	nonEmpty, generic := 0, 0
	for _, h := range headers {
		t := strings.TrimSpace(h)
		if t == "" {
			continue
		}
		nonEmpty++
		if genericHeaderRe.MatchString(t) {
			generic++
		}
	}
	if nonEmpty == 0 {
		return 0.0
	}
	return float64(generic) / float64(nonEmpty)
}

// IsDegenerate reports whether the table is likely a misdetected diagram.
//
// Only tables with 10 or more columns are candidates. Two signals combine
// via OR: the average intra-row duplication ratio reaching 0.5, or half or
// more of the non-empty headers being generic Col<n> placeholders.
func IsDegenerate(t ParsedTable) bool {
	if len(t.HeaderCells) < minColumnsForDegenerate {
		return false
	}

	ghRatio := genericHeaderRatio(t.HeaderCells)

	avgDup := 0.0
	if len(t.DataRows) > 0 {
		var sum float64
		for _, r := range t.DataRows {
			sum += rowDuplicationRatio(r)
		}
		avgDup = sum / float64(len(t.DataRows))
	}

	return avgDup >= duplicationRatioThreshold || ghRatio >= genericHeaderRatioThreshold
}
