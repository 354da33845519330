package videodoc

import "strings"

// Consecutive frames whose text similarity reaches this ratio are
// treated as the same on-screen content.
const similarityThreshold = 0.95

// isDuplicate reports whether curr is essentially the same text as the
// previous frame's. Whitespace differences are ignored, since OCR is
// noisy about spacing between otherwise identical frames.
func isDuplicate(prev, curr string) bool {
	if prev == "" {
		return false
	}
	a := normalize(prev)
	b := normalize(curr)
	if a == b {
		return true
	}
	return similarity(a, b) >= similarityThreshold
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// similarity returns the Ratcliff/Obershelp ratio between a and b in
// [0, 1]: twice the count of matching characters over the combined
// length, where matches are found by recursively taking the longest
// common substring.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(len(ra)+len(rb))
}

func matchingRunes(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

// longestMatch finds the longest common substring, preferring the
// earliest occurrence on ties.
func longestMatch(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := range a {
		for j := range b {
			if a[i] != b[j] {
				cur[j+1] = 0
				continue
			}
			cur[j+1] = prev[j] + 1
			if cur[j+1] > size {
				size = cur[j+1]
				ai = i - size + 1
				bi = j - size + 1
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
