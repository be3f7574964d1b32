package engine

import "strings"

// SetRefPrefix marks a normalized pattern word as a reference to a named
// AIML set rather than a literal word: the parser rewrites a pattern's
// "<set>NAME</set>" markup to SetRefPrefix+NAME before normalization so the
// sentinel survives Normalize's punctuation stripping as one token.
const SetRefPrefix = "SETREF__"

// Category binds a (pattern, that, topic) triple to its template tree —
// the AIML "category" unit.
type Category struct {
	Pattern  string
	That     string
	Topic    string
	Template Template
}

// TrieNode is one node of the pattern trie. Literal words are
// keyed in children; the wildcard/sentinel edges get dedicated
// fields rather than reserved map keys, so children never needs to
// distinguish a literal word from a sentinel by sniffing its value. A
// <set>NAME</set> pattern word is the one exception still keyed by a map,
// since any number of distinct set names may branch from the same node.
type TrieNode struct {
	children   map[string]*TrieNode
	underscore *TrieNode
	star       *TrieNode
	botName    *TrieNode
	sets       map[string]*TrieNode // keyed by set name, for <set>NAME</set> pattern words
	thatNode   *TrieNode            // only ever populated on a node that terminates a main pattern
	topicNode  *TrieNode            // only ever populated on a node that terminates a that-pattern
	category   *Category
}

func newTrieNode() *TrieNode {
	return &TrieNode{children: make(map[string]*TrieNode)}
}

// childFor returns (creating if necessary) the child reached by the given
// already-normalized word, routing "_" / "*" / "BOT_NAME" / a SetRefPrefix
// word to their dedicated wildcard fields.
func (n *TrieNode) childFor(word string) *TrieNode {
	switch {
	case word == "_":
		if n.underscore == nil {
			n.underscore = newTrieNode()
		}
		return n.underscore
	case word == "*":
		if n.star == nil {
			n.star = newTrieNode()
		}
		return n.star
	case word == "BOT_NAME":
		if n.botName == nil {
			n.botName = newTrieNode()
		}
		return n.botName
	case strings.HasPrefix(word, SetRefPrefix):
		name := strings.TrimPrefix(word, SetRefPrefix)
		if n.sets == nil {
			n.sets = make(map[string]*TrieNode)
		}
		if child, ok := n.sets[name]; ok {
			return child
		}
		child := newTrieNode()
		n.sets[name] = child
		return child
	default:
		if child, ok := n.children[word]; ok {
			return child
		}
		child := newTrieNode()
		n.children[word] = child
		return child
	}
}

func (n *TrieNode) childForThat() *TrieNode {
	if n.thatNode == nil {
		n.thatNode = newTrieNode()
	}
	return n.thatNode
}

func (n *TrieNode) childForTopic() *TrieNode {
	if n.topicNode == nil {
		n.topicNode = newTrieNode()
	}
	return n.topicNode
}

// Trie is the pattern store (C4): a trie keyed by normalized words plus
// the three wildcard sentinels, indexed on (pattern, that, topic).
type Trie struct {
	root          *TrieNode
	templateCount int

	// InSet reports whether word belongs to the named set. It's nil until
	// a Bot wires it (to its own InSet method) after construction; a trie
	// with no InSet set simply never descends into a <set> edge, so a
	// pattern referencing an unknown set behaves as if that branch didn't
	// exist rather than panicking.
	InSet func(name, word string) bool
}

// NewTrie returns an empty pattern store.
func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

// TemplateCount is the number of distinct (pattern,that,topic) slots that
// have ever had a template assigned (overwrites don't increment it again).
func (t *Trie) TemplateCount() int {
	return t.templateCount
}

// Insert adds a category to the tree, walking/creating the main-pattern
// words, then a THAT edge and the that-words, then a TOPIC edge and the
// topic-words, then storing the template at the terminal node. A blank
// That/Topic is stored as "*", so every category — not just ones that
// name an explicit that/topic — gets a that-segment and topic-segment in
// the tree, and a category without its own that/topic matches whatever
// the live turn supplies there: a real previous reply or topic, or the
// bogus sentinel word the matcher substitutes when those are blank. Later
// insertions at the same slot overwrite the template without incrementing
// the count again.
func (t *Trie) Insert(cat Category) {
	that, topic := cat.That, cat.Topic
	if strings.TrimSpace(that) == "" {
		that = "*"
	}
	if strings.TrimSpace(topic) == "" {
		topic = "*"
	}
	node := t.root
	for _, w := range NormalizeWords(cat.Pattern) {
		node = node.childFor(w)
	}
	node = node.childForThat()
	for _, w := range NormalizeWords(that) {
		node = node.childFor(w)
	}
	node = node.childForTopic()
	for _, w := range NormalizeWords(topic) {
		node = node.childFor(w)
	}
	if node.category == nil {
		t.templateCount++
	}
	stored := cat
	node.category = &stored
}
