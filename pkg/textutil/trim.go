package textutil

import (
	"sort"
	"unicode/utf8"
)

// Ellipsis replaces the elided middle of a trimmed label.
const Ellipsis = "…"

// Trimmed describes a label shortened in the middle. PrefixLen and SuffixLen
// are byte lengths of the parts of Original kept on either side of the
// ellipsis.
type Trimmed struct {
	Text      string
	Original  string
	PrefixLen int
	SuffixLen int
	Elided    bool
}

// Trim shortens s to at most n runes, keeping its head and tail. The result
// is never shorter than a lone ellipsis.
func Trim(s string, n int) Trimmed {
	count := utf8.RuneCountInString(s)
	if n >= count {
		return Trimmed{Text: s, Original: s, PrefixLen: len(s)}
	}
	if n < 1 {
		n = 1
	}
	prefixRunes := n / 2
	suffixRunes := n - prefixRunes - 1

	prefixLen := byteOffset(s, prefixRunes)
	suffixLen := len(s) - byteOffset(s, count-suffixRunes)
	return Trimmed{
		Text:      s[:prefixLen] + Ellipsis + s[len(s)-suffixLen:],
		Original:  s,
		PrefixLen: prefixLen,
		SuffixLen: suffixLen,
		Elided:    true,
	}
}

// byteOffset returns the byte index of the n-th rune of s.
func byteOffset(s string, n int) int {
	i := 0
	for off := range s {
		if i == n {
			return off
		}
		i++
	}
	return len(s)
}

// TrimMid returns the longest middle-trimmed form of s whose measured width
// fits maxWidth. measure must be monotonic in the number of runes.
func TrimMid(s string, maxWidth float64, measure func(string) float64) Trimmed {
	if measure(s) <= maxWidth {
		return Trim(s, utf8.RuneCountInString(s))
	}
	count := utf8.RuneCountInString(s)
	// Largest n in [1, count) whose trimmed text fits.
	n := sort.Search(count, func(n int) bool {
		return n > 0 && measure(Trim(s, n).Text) > maxWidth
	}) - 1
	return Trim(s, n)
}

// RemapRanges maps half-open byte ranges of Original onto Text. Parts hidden
// by the ellipsis collapse onto the ellipsis itself.
func (t Trimmed) RemapRanges(ranges [][2]int) [][2]int {
	if !t.Elided {
		return ranges
	}
	ellipsisStart := t.PrefixLen
	ellipsisEnd := ellipsisStart + len(Ellipsis)
	hiddenEnd := len(t.Original) - t.SuffixLen

	var out [][2]int
	add := func(lo, hi int) {
		if lo >= hi {
			return
		}
		if n := len(out); n > 0 && out[n-1][1] >= lo {
			out[n-1][1] = max(out[n-1][1], hi)
			return
		}
		out = append(out, [2]int{lo, hi})
	}
	for _, r := range ranges {
		lo, hi := r[0], r[1]
		if lo < t.PrefixLen {
			add(lo, min(hi, t.PrefixLen))
		}
		if lo < hiddenEnd && hi > t.PrefixLen {
			add(ellipsisStart, ellipsisEnd)
		}
		if hi > hiddenEnd {
			add(max(lo, hiddenEnd)-hiddenEnd+ellipsisEnd, hi-hiddenEnd+ellipsisEnd)
		}
	}
	return out
}
