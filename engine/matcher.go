package engine

import "strings"

// Sentinel strings substituted for an empty that/topic so their segment
// always carries exactly one token.
const (
	bogusThat  = "ULTRABOGUSDUMMYTHAT"
	bogusTopic = "ULTRABOGUSDUMMYTOPIC"
)

// StarKind selects which wildcard segment star() reports on.
type StarKind int

const (
	StarPattern StarKind = iota
	StarThat
	StarTopic
)

// edgeKind tags one step of a reconstructed match path.
type edgeKind int

const (
	edgeLiteral edgeKind = iota
	edgeUnderscore
	edgeStar
	edgeBotName
	edgeSetRef
	edgeThatSep
	edgeTopicSep
)

// pathToken is one edge label on the route from the trie root to the
// matched template, used to recover each wildcard's captured span. count
// is only meaningful for a wildcard edge: it's the exact number of words
// that instance of the wildcard consumed (0..N), recorded directly from
// the j loop that found it, so a span can be recovered without
// re-deriving it from the word list afterward.
type pathToken struct {
	kind  edgeKind
	word  string // non-empty only for edgeLiteral / edgeBotName / edgeSetRef
	count int    // words consumed, for edgeUnderscore / edgeStar
}

func isWildcard(k edgeKind) bool { return k == edgeUnderscore || k == edgeStar }

// continuation is invoked once a word list is exhausted at some trie node;
// it decides what happens next (descend into THAT, then TOPIC, then
// finally yield the category).
type continuation func(node *TrieNode) ([]pathToken, *Category, bool)

// matchWords implements the single-segment precedence rule:
// UNDERSCORE child first (greedy, 0..N words), then the literal
// child, BOT_NAME, or a <set>NAME</set> reference (each consuming exactly
// one word), then STAR (greedy, 0..N words). The first alternative whose
// recursive continuation reaches a template wins; there is no scoring or
// "best match" selection.
//
// Both wildcards are tried at every possible consumption length from 0 up
// to all remaining words, which means they must be tried even once words
// is already empty (a trailing "*" can legally match nothing at all) —
// so, unlike a typical trie walk, the zero-words base case isn't a simple
// early return: UNDERSCORE gets its chance to consume nothing before
// cont(node) is tried, and STAR gets its chance after cont(node) fails.
func matchWords(node *TrieNode, words []string, botName string, inSet func(name, word string) bool, cont continuation) ([]pathToken, *Category, bool) {
	if node.underscore != nil {
		for j := 0; j <= len(words); j++ {
			if path, cat, ok := matchWords(node.underscore, words[j:], botName, inSet, cont); ok {
				return prepend(pathToken{kind: edgeUnderscore, count: j}, path), cat, true
			}
		}
	}

	if len(words) == 0 {
		if path, cat, ok := cont(node); ok {
			return path, cat, true
		}
	} else {
		w := words[0]
		if child, ok := node.children[w]; ok {
			if path, cat, ok2 := matchWords(child, words[1:], botName, inSet, cont); ok2 {
				return prepend(pathToken{kind: edgeLiteral, word: w}, path), cat, true
			}
		}
		if node.botName != nil && botName != "" && w == botName {
			if path, cat, ok2 := matchWords(node.botName, words[1:], botName, inSet, cont); ok2 {
				return prepend(pathToken{kind: edgeBotName, word: w}, path), cat, true
			}
		}
		if len(node.sets) > 0 && inSet != nil {
			for name, child := range node.sets {
				if !inSet(name, w) {
					continue
				}
				if path, cat, ok2 := matchWords(child, words[1:], botName, inSet, cont); ok2 {
					return prepend(pathToken{kind: edgeSetRef, word: w}, path), cat, true
				}
			}
		}
	}

	if node.star != nil {
		for j := 0; j <= len(words); j++ {
			if path, cat, ok := matchWords(node.star, words[j:], botName, inSet, cont); ok {
				return prepend(pathToken{kind: edgeStar, count: j}, path), cat, true
			}
		}
	}

	return nil, nil, false
}

func prepend(tok pathToken, path []pathToken) []pathToken {
	out := make([]pathToken, 0, len(path)+1)
	out = append(out, tok)
	out = append(out, path...)
	return out
}

// matchTopicPhase and matchThatPhase always descend through a thatNode/
// topicNode: Insert always creates that edge (storing "*" for a blank
// That/Topic), and Match always supplies at least the
// sentinel word for a blank live that/topic, so thatWords/topicWords are
// never actually empty by the time they reach here.
func (t *Trie) matchTopicPhase(node *TrieNode, topicWords []string, botName string) ([]pathToken, *Category, bool) {
	if node.topicNode == nil {
		return nil, nil, false
	}
	path, cat, ok := matchWords(node.topicNode, topicWords, botName, t.InSet, func(n *TrieNode) ([]pathToken, *Category, bool) {
		if n.category != nil {
			return nil, n.category, true
		}
		return nil, nil, false
	})
	if !ok {
		return nil, nil, false
	}
	return prepend(pathToken{kind: edgeTopicSep}, path), cat, true
}

func (t *Trie) matchThatPhase(node *TrieNode, thatWords, topicWords []string, botName string) ([]pathToken, *Category, bool) {
	if node.thatNode == nil {
		return nil, nil, false
	}
	path, cat, ok := matchWords(node.thatNode, thatWords, botName, t.InSet, func(n *TrieNode) ([]pathToken, *Category, bool) {
		return t.matchTopicPhase(n, topicWords, botName)
	})
	if !ok {
		return nil, nil, false
	}
	return prepend(pathToken{kind: edgeThatSep}, path), cat, true
}

// matchPath runs the full three-segment match and returns the reconstructed
// path alongside the category, so star() can reuse the same traversal.
func (t *Trie) matchPath(inputWords, thatWords, topicWords []string, botName string) ([]pathToken, *Category, bool) {
	return matchWords(t.root, inputWords, botName, t.InSet, func(n *TrieNode) ([]pathToken, *Category, bool) {
		return t.matchThatPhase(n, thatWords, topicWords, botName)
	})
}

// prepareThat and prepareTopic substitute the bogus sentinel for a blank
// that/topic string so the segment always carries one token; any other
// string is returned unchanged.
func prepareThat(that string) string {
	if strings.TrimSpace(that) == "" {
		return bogusThat
	}
	return that
}

func prepareTopic(topic string) string {
	if strings.TrimSpace(topic) == "" {
		return bogusTopic
	}
	return topic
}

// Match looks up a template for already-normalized, space-separated input,
// that, and topic strings. Empty that/topic are replaced with their bogus
// sentinel before tokenizing.
func (t *Trie) Match(input, that, topic, botName string) (*Category, bool) {
	inputWords := NormalizeWords(input)
	thatWords := NormalizeWords(prepareThat(that))
	topicWords := NormalizeWords(prepareTopic(topic))
	_, cat, ok := t.matchPath(inputWords, thatWords, topicWords, botName)
	return cat, ok
}

// Star re-runs the match and returns the text captured by the index-th
// (1-based) wildcard of the requested kind, or "" if the index is out of
// range, there's no match, or that wildcard instance consumed zero words.
// Each wildcard path token already records exactly how many words it
// consumed (matchWords records the j that found it), so recovering a span
// is a single left-to-right walk over the segment's tokens rather than a
// re-derivation from the word list.
func (t *Trie) Star(kind StarKind, input, that, topic string, index int) string {
	if index < 1 {
		return ""
	}
	thatStr := prepareThat(that)
	topicStr := prepareTopic(topic)

	inputWords := NormalizeWords(input)
	thatWords := NormalizeWords(thatStr)
	topicWords := NormalizeWords(topicStr)

	path, cat, ok := t.matchPath(inputWords, thatWords, topicWords, "")
	if !ok || cat == nil {
		return ""
	}

	thatIdx := indexOfKind(path, edgeThatSep)
	topicIdx := indexOfKind(path, edgeTopicSep)
	if thatIdx == -1 || topicIdx == -1 {
		return ""
	}

	var segment []pathToken
	var origWords []string
	switch kind {
	case StarPattern:
		segment = path[:thatIdx]
		origWords = strings.Fields(input)
	case StarThat:
		segment = path[thatIdx+1 : topicIdx]
		origWords = strings.Fields(thatStr)
	case StarTopic:
		segment = path[topicIdx+1:]
		origWords = strings.Fields(topicStr)
	default:
		return ""
	}

	start, end, found := findStarSpan(segment, index)
	if !found || start > end {
		return ""
	}
	if end >= len(origWords) {
		end = len(origWords) - 1
	}
	if start >= len(origWords) {
		return ""
	}
	return strings.Join(origWords[start:end+1], " ")
}

func indexOfKind(path []pathToken, kind edgeKind) int {
	for i, tok := range path {
		if tok.kind == kind {
			return i
		}
	}
	return -1
}

// findStarSpan walks one segment's path tokens left to right, tracking how
// many words have been consumed so far, to find the index-th (1-based)
// wildcard's [start,end] word span. A wildcard that consumed zero words
// yields start > end, which the caller treats as an empty capture.
func findStarSpan(segment []pathToken, index int) (start, end int, found bool) {
	pos := 0
	numStars := 0
	for _, tok := range segment {
		if isWildcard(tok.kind) {
			numStars++
			if numStars == index {
				return pos, pos + tok.count - 1, true
			}
			pos += tok.count
			continue
		}
		pos++
	}
	return 0, 0, false
}
