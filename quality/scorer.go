// Package quality scores converted Markdown text for extraction quality.
//
// The score is a weighted sum of five independent heuristics: word density
// (0.25), absence of garbled tokens (0.25), content length (0.20),
// whitespace ratio (0.15), and structural richness (0.15). Scores range
// from 0.0 (empty or garbled) to 1.0 (clean, well structured). Callers use
// the score to flag failed or garbled extractions, typically by warning
// below a threshold rather than rejecting output outright.
//
// Scoring is pure and stateless; it is safe to call from any number of
// goroutines.
package quality

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	headingRe     = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	bulletListRe  = regexp.MustCompile(`(?m)^[\s]*[-*+]\s+\S`)
	numberedRe    = regexp.MustCompile(`(?m)^[\s]*\d+\.\s+\S`)
	tableRowRe    = regexp.MustCompile(`\|.*\|`)
	paragraphRe   = regexp.MustCompile(`\S[\s\S]*?\n\n`)
	nonASCIIRunRe = regexp.MustCompile(`[^\x00-\x7F]{3,}`)
	latinExtRe    = regexp.MustCompile(`[\x{00C0}-\x{024F}]`)
)

// markdownTokens are structural markers skipped by the garbled-token check.
var markdownTokens = map[string]struct{}{
	"#": {}, "##": {}, "###": {}, "####": {}, "#####": {}, "######": {},
	"-": {}, "*": {}, ">": {}, "---": {}, "***": {}, "|": {}, "```": {},
}

// Score rates the quality of converted Markdown from 0.0 (garbled or empty)
// to 1.0 (excellent). Empty or whitespace-only input scores exactly 0.0.
func Score(markdown string) float64 {
	if strings.TrimSpace(markdown) == "" {
		return 0.0
	}

	return wordDensity(markdown)*0.25 +
		garbledScore(markdown)*0.25 +
		contentLengthScore(markdown)*0.20 +
		whitespaceScore(markdown)*0.15 +
		structureScore(markdown)*0.15
}

// isWord reports whether the token is purely alphabetic and at least two
// characters long.
func isWord(token string) bool {
	if utf8.RuneCountInString(token) < 2 {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// wordDensity is the fraction of whitespace-delimited tokens that look like
// dictionary words. A low ratio suggests garbled OCR output.
func wordDensity(markdown string) float64 {
	tokens := strings.Fields(markdown)
	if len(tokens) == 0 {
		return 0.0
	}

	words := 0
	for _, t := range tokens {
		if isWord(t) {
			words++
		}
	}
	return float64(words) / float64(len(tokens))
}

// garbledScore returns 1.0 when no garbled tokens exist and decays to 0.0 as
// they accumulate: two thirds garbled already scores zero. A token is
// garbled when fewer than 40% of its characters are alphanumeric (length 3
// and up), or when it contains a run of three or more consecutive non-ASCII
// characters that survives stripping Latin-Extended accents.
func garbledScore(markdown string) float64 {
	tokens := strings.Fields(markdown)
	if len(tokens) == 0 {
		return 0.0
	}

	garbled := 0
	for _, token := range tokens {
		if _, ok := markdownTokens[token]; ok {
			continue
		}

		alnum := 0
		for _, r := range token {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r) {
				alnum++
			}
		}
		length := utf8.RuneCountInString(token)
		if length >= 3 && float64(alnum) < float64(length)*0.4 {
			garbled++
			continue
		}

		if nonASCIIRunRe.MatchString(token) {
			stripped := latinExtRe.ReplaceAllString(token, "")
			if nonASCIIRunRe.MatchString(stripped) {
				garbled++
			}
		}
	}

	ratio := float64(garbled) / float64(len(tokens))
	score := 1.0 - ratio*1.5
	if score < 0.0 {
		return 0.0
	}
	return score
}

// contentLengthScore rates trimmed content length on a step scale; very
// short output likely indicates a failed extraction.
func contentLengthScore(markdown string) float64 {
	length := utf8.RuneCountInString(strings.TrimSpace(markdown))

	switch {
	case length == 0:
		return 0.0
	case length < 20:
		return 0.1
	case length < 50:
		return 0.3
	case length < 100:
		return 0.5
	case length < 200:
		return 0.7
	case length < 500:
		return 0.85
	default:
		return 1.0
	}
}

// whitespaceScore penalizes output where too many lines are blank. Some
// blank lines are normal in Markdown.
func whitespaceScore(markdown string) float64 {
	lines := strings.Split(markdown, "\n")

	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
		}
	}
	ratio := float64(blank) / float64(len(lines))

	switch {
	case ratio <= 0.3:
		return 1.0
	case ratio <= 0.5:
		return 0.8
	case ratio <= 0.7:
		return 0.5
	default:
		return 0.2
	}
}

// structureScore counts structural indicators: headings, bullet lists,
// numbered lists, table rows, and multiple paragraph blocks. Output showing
// three or more indicators scores 1.0; plain text with no structure still
// earns a floor when it has content.
func structureScore(markdown string) float64 {
	indicators := 0

	if headingRe.MatchString(markdown) {
		indicators++
	}
	if bulletListRe.MatchString(markdown) {
		indicators++
	}
	if numberedRe.MatchString(markdown) {
		indicators++
	}
	if tableRowRe.MatchString(markdown) {
		indicators++
	}
	if len(paragraphRe.FindAllString(markdown, -1)) >= 2 {
		indicators++
	}

	switch indicators {
	case 0:
		nonBlank := 0
		for _, line := range strings.Split(markdown, "\n") {
			if strings.TrimSpace(line) != "" {
				nonBlank++
			}
		}
		if nonBlank >= 3 {
			return 0.4
		}
		return 0.2
	case 1:
		return 0.6
	case 2:
		return 0.8
	default:
		return 1.0
	}
}
