package search

import (
	"strings"
	"unicode"

	"github.com/matzehuels/flamechart/pkg/flamechart"
)

// Match is a scored hit with byte ranges into the matched text.
type Match = flamechart.Match

const (
	scoreMatch       = 16
	bonusBoundary    = 8
	bonusPrefix      = 8
	bonusConsecutive = 4
	penaltyGap       = 1
)

// FuzzyMatch reports whether the runes of pattern appear in text in order,
// ignoring case. Among candidate windows it keeps the shortest one ending at
// the first complete match. Higher scores mean tighter matches at word
// boundaries. Returns nil when there is no match or pattern is blank.
func FuzzyMatch(text, pattern string) *Match {
	pat := []rune(strings.ToLower(strings.TrimSpace(pattern)))
	if len(pat) == 0 {
		return nil
	}

	runes := make([]rune, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		runes = append(runes, r)
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	fold := func(i int) rune { return unicode.ToLower(runes[i]) }

	// Forward pass: end of the first complete subsequence match.
	pi, end := 0, -1
	for i := range runes {
		if fold(i) == pat[pi] {
			pi++
			if pi == len(pat) {
				end = i
				break
			}
		}
	}
	if end < 0 {
		return nil
	}

	// Backward pass: latest start that still matches within [start, end].
	start := end
	pi = len(pat) - 1
	for i := end; i >= 0; i-- {
		if fold(i) == pat[pi] {
			pi--
			if pi < 0 {
				start = i
				break
			}
		}
	}

	// Score a forward greedy match inside the window.
	positions := make([]int, 0, len(pat))
	pi = 0
	for i := start; i <= end && pi < len(pat); i++ {
		if fold(i) == pat[pi] {
			positions = append(positions, i)
			pi++
		}
	}

	score := 0
	for k, i := range positions {
		s := scoreMatch
		if i == 0 {
			s += bonusPrefix + bonusBoundary
		} else if isBoundary(runes[i-1], runes[i]) {
			s += bonusBoundary
		}
		if k > 0 {
			if gap := i - positions[k-1] - 1; gap == 0 {
				s += bonusConsecutive
			} else {
				s -= gap * penaltyGap
			}
		}
		score += s
	}

	return &Match{Score: float64(score), Ranges: toRanges(positions, offsets)}
}

func isBoundary(prev, cur rune) bool {
	switch {
	case !isWordRune(prev) && isWordRune(cur):
		return true
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case !unicode.IsDigit(prev) && unicode.IsDigit(cur):
		return true
	}
	return false
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

// toRanges merges adjacent rune positions into half-open byte ranges.
func toRanges(positions, offsets []int) [][2]int {
	var out [][2]int
	for _, p := range positions {
		lo, hi := offsets[p], offsets[p+1]
		if n := len(out); n > 0 && out[n-1][1] == lo {
			out[n-1][1] = hi
			continue
		}
		out = append(out, [2]int{lo, hi})
	}
	return out
}
