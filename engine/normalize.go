package engine

import "strings"

// punctuation is the fixed ASCII punctuation set Normalize strips. Only
// these ASCII characters are stripped; case folding is Unicode-aware via
// strings.ToUpper, but punctuation stripping stays ASCII-only and
// locale-insensitive. "_" and "*" are deliberately
// excluded even though they're ordinary ASCII punctuation: they're the
// pattern-matcher's wildcard sentinel characters ("_", "*", and "BOT_NAME"),
// and stripping them would silently destroy every wildcard in a pattern.
const punctuation = "\"`~!@#$%^&()-=+[{]}\\|;:',<.>/?"

var punctuationSet = buildPunctuationSet(punctuation)

func buildPunctuationSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range s {
		set[r] = true
	}
	return set
}

// Normalize upper-cases s, replaces any punctuation rune with a space, and
// collapses runs of whitespace down to one space, trimming the ends. It
// must never be applied to raw template output text, only to pattern/
// that/topic strings before matching or insertion.
func Normalize(s string) string {
	upper := strings.ToUpper(s)
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if punctuationSet[r] {
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(collapseWhitespace(b.String()))
}

// NormalizeWords is Normalize followed by a split on whitespace, the form
// the trie and matcher consume.
func NormalizeWords(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Fields(n)
}
