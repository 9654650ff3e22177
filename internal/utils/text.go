package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// titleFolder is stateless and safe for concurrent use
var titleFolder = cases.Fold()

// NormalizeTitle produces a comparison key for free-text titles.
// Case is folded with Unicode rules, punctuation is dropped and runs of whitespace collapse to one space,
// so "Apply Lime!" and "apply  lime" produce the same key.
func NormalizeTitle(title string) string {
	folded := titleFolder.String(title)

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			space = true
		}
	}
	return b.String()
}

// UnionStrings appends the values of b that are not already in a, preserving order
func UnionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range b {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
