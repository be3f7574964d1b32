package engine

import "strings"

// WhitespaceMode tracks whether a text leaf still needs whitespace
// collapsing or has already been normalized once.
type WhitespaceMode int

const (
	WhitespaceDefault WhitespaceMode = iota
	WhitespacePreserve
)

// TagKind enumerates the closed set of AIML template tags this evaluator
// understands. Anything else decodes to TagUnknown and is handled by the
// generic "log and return empty" path in the evaluator.
type TagKind int

const (
	TagUnknown TagKind = iota
	TagTemplate
	TagLi
	TagBot
	TagGet
	TagSet
	TagMap
	TagCondition
	TagRandom
	TagSrai
	TagSr
	TagStar
	TagThatStar
	TagTopicStar
	TagThat
	TagInput
	TagDate
	TagID
	TagSize
	TagVersion
	TagThink
	TagGossip
	TagJavascript
	TagFormal
	TagSentence
	TagUppercase
	TagLowercase
	TagGender
	TagPerson
	TagPerson2
	TagLearn
	TagSystem
)

var tagNames = map[string]TagKind{
	"template":   TagTemplate,
	"li":         TagLi,
	"bot":        TagBot,
	"get":        TagGet,
	"set":        TagSet,
	"map":        TagMap,
	"condition":  TagCondition,
	"random":     TagRandom,
	"srai":       TagSrai,
	"sr":         TagSr,
	"star":       TagStar,
	"thatstar":   TagThatStar,
	"topicstar":  TagTopicStar,
	"that":       TagThat,
	"input":      TagInput,
	"date":       TagDate,
	"id":         TagID,
	"size":       TagSize,
	"version":    TagVersion,
	"think":      TagThink,
	"gossip":     TagGossip,
	"javascript": TagJavascript,
	"formal":     TagFormal,
	"sentence":   TagSentence,
	"uppercase":  TagUppercase,
	"lowercase":  TagLowercase,
	"gender":     TagGender,
	"person":     TagPerson,
	"person2":    TagPerson2,
	"learn":      TagLearn,
	"system":     TagSystem,
}

// ParseTagKind resolves an AIML element name (already lower-cased by the
// caller) to its TagKind, or TagUnknown if the name isn't one of the tags
// this core understands.
func ParseTagKind(name string) TagKind {
	if kind, ok := tagNames[strings.ToLower(name)]; ok {
		return kind
	}
	return TagUnknown
}

// Template is the tagged-union node of a parsed AIML template tree: either
// a TextNode leaf or an ElementNode with children.
type Template interface {
	isTemplate()
}

// TextNode is a raw-text leaf. Whitespace starts out Default and is
// collapsed exactly once, idempotently, the first time it is evaluated.
type TextNode struct {
	Content    string
	Whitespace WhitespaceMode
}

func (*TextNode) isTemplate() {}

// Normalize collapses runs of whitespace in the leaf to a single space,
// keeping (not trimming) a single leading/trailing space where one existed.
// It mutates the node in place and flips the flag to WhitespacePreserve so
// repeated evaluation of the same cached tree is a no-op.
func (t *TextNode) Normalize() string {
	if t.Whitespace == WhitespacePreserve {
		return t.Content
	}
	t.Content = collapseWhitespace(t.Content)
	t.Whitespace = WhitespacePreserve
	return t.Content
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if isSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// ElementNode is a tagged, attributed template node with ordered children.
// Name carries the original (lower-cased) tag spelling, which matters only
// when Tag == TagUnknown (so the evaluator can log which tag it ignored).
type ElementNode struct {
	Tag      TagKind
	Name     string
	Attrs    map[string]string
	Children []Template
}

func (*ElementNode) isTemplate() {}

// Attr returns the named attribute, or "" if absent.
func (e *ElementNode) Attr(name string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[name]
}
