package engine

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Subber is a case-preserving, whole-word replacement table: every entry
// is registered under three casings (all-lower, capitalized,
// all-upper) so that "he", "He", and "HE" each translate to the matching
// casing of the replacement. The backing regex is an alternation of
// word-boundary-anchored keys, rebuilt lazily the next time Sub is called
// after the table changes.
type Subber struct {
	mu    sync.Mutex
	table map[string]string
	re    *regexp.Regexp
	dirty bool
}

// NewSubber returns an empty, ready-to-populate Subber.
func NewSubber() *Subber {
	return &Subber{table: make(map[string]string), dirty: true}
}

// Set registers word -> replacement under all three casings.
func (s *Subber) Set(word, replacement string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[strings.ToLower(word)] = strings.ToLower(replacement)
	s.table[capitalizeFirst(word)] = capitalizeFirst(replacement)
	s.table[strings.ToUpper(word)] = strings.ToUpper(replacement)
	s.dirty = true
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

func (s *Subber) rebuildLocked() {
	if len(s.table) == 0 {
		s.re = nil
		s.dirty = false
		return
	}
	keys := make([]string, 0, len(s.table))
	for k := range s.table {
		keys = append(keys, k)
	}
	// Longest key first, so multi-word phrases aren't shadowed by a
	// shorter key that happens to be a prefix of one of their words.
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = `\b` + regexp.QuoteMeta(k) + `\b`
	}
	s.re = regexp.MustCompile(strings.Join(parts, "|"))
	s.dirty = false
}

// Sub replaces each non-overlapping whole-word match in text with its
// registered replacement, preserving the matched surface casing.
func (s *Subber) Sub(text string) string {
	s.mu.Lock()
	if s.dirty {
		s.rebuildLocked()
	}
	re := s.re
	table := s.table
	s.mu.Unlock()
	if re == nil {
		return text
	}
	return re.ReplaceAllStringFunc(text, func(m string) string {
		if v, ok := table[m]; ok {
			return v
		}
		return m
	})
}

// Subbers groups the four word-substitution tables the evaluator and the
// bot facade use: gender/person/person2 back the like-named template tags,
// normal is applied to every user input, the last bot response, and the
// topic predicate before they reach the matcher.
type Subbers struct {
	Gender  *Subber
	Person  *Subber
	Person2 *Subber
	Normal  *Subber
}

// DefaultSubbers builds the four subbers pre-loaded with a conventional
// AIML default_substitutions table (pronoun gender swap, first-to-second
// person for person, second-to-first person for person2, and common
// contraction expansion for the "normal" pre-match pass).
func DefaultSubbers() *Subbers {
	gender := NewSubber()
	for _, pair := range [][2]string{
		{"he", "she"}, {"she", "he"},
		{"him", "her"}, {"her", "him"},
		{"his", "her"}, {"himself", "herself"}, {"herself", "himself"},
	} {
		gender.Set(pair[0], pair[1])
	}

	person := NewSubber()
	for _, pair := range [][2]string{
		{"i", "you"}, {"me", "you"}, {"my", "your"}, {"mine", "yours"},
		{"am", "are"}, {"myself", "yourself"},
	} {
		person.Set(pair[0], pair[1])
	}

	person2 := NewSubber()
	for _, pair := range [][2]string{
		{"you", "i"}, {"your", "my"}, {"yours", "mine"},
		{"are", "am"}, {"yourself", "myself"},
	} {
		person2.Set(pair[0], pair[1])
	}

	normal := NewSubber()
	for _, pair := range [][2]string{
		{"i'm", "i am"}, {"you're", "you are"}, {"he's", "he is"},
		{"she's", "she is"}, {"it's", "it is"}, {"we're", "we are"},
		{"they're", "they are"}, {"i've", "i have"}, {"you've", "you have"},
		{"i'll", "i will"}, {"you'll", "you will"}, {"don't", "do not"},
		{"doesn't", "does not"}, {"didn't", "did not"}, {"can't", "cannot"},
		{"won't", "will not"}, {"isn't", "is not"}, {"aren't", "are not"},
		{"wasn't", "was not"}, {"weren't", "were not"},
	} {
		normal.Set(pair[0], pair[1])
	}

	return &Subbers{Gender: gender, Person: person, Person2: person2, Normal: normal}
}
