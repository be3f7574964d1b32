package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Version is reported by the <version/> tag and the CLI.
const Version = "1.0"

// evalContext carries the turn-scoped state an Evaluator consults:
// which bot/session it's running against, and the exact (already
// word-substituted) input/that/topic strings the match was made against,
// since star()/thatstar()/topicstar() must re-run the identical match to
// recover their captured spans.
type evalContext struct {
	bot       *Bot
	session   *Session
	sessionID string
	input     string
	that      string
	topic     string
}

// Evaluator walks a matched category's Template tree and produces the
// reply text, dispatching each ElementNode by its TagKind rather than
// re-parsing raw markup, so a template is never re-parsed at eval time.
type Evaluator struct {
	ctx context.Context
	ec  *evalContext
}

// Eval renders tpl to text. A nil tpl renders as "".
func (e *Evaluator) Eval(tpl Template) (string, error) {
	if tpl == nil {
		return "", nil
	}
	switch n := tpl.(type) {
	case *TextNode:
		return n.Normalize(), nil
	case *ElementNode:
		return e.evalElement(n)
	default:
		return "", fmt.Errorf("engine: unknown template node type %T", tpl)
	}
}

// evalChildren evaluates each child in order and concatenates the result,
// the behavior every container tag (template, condition branches, random
// lis, formal, and so on) shares.
func (e *Evaluator) evalChildren(children []Template) (string, error) {
	var b strings.Builder
	for _, c := range children {
		s, err := e.Eval(c)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func (e *Evaluator) evalElement(n *ElementNode) (string, error) {
	switch n.Tag {
	case TagTemplate:
		return e.evalChildren(n.Children)

	case TagUnknown:
		e.ec.bot.logger.Warn("unknown template tag", "tag", n.Name)
		return "", nil

	case TagBot:
		name := n.Attr("name")
		return e.ec.bot.GetBotPredicate(name), nil

	case TagGet:
		name := n.Attr("name")
		val, err := e.ec.session.GetPredicate(name)
		if err != nil {
			return "", nil
		}
		return val, nil

	case TagSet:
		name := n.Attr("name")
		val, err := e.evalChildren(n.Children)
		if err != nil {
			return "", err
		}
		if err := e.ec.session.SetPredicate(name, val); err != nil {
			return "", nil
		}
		return val, nil

	case TagMap:
		name := n.Attr("name")
		key, err := e.evalChildren(n.Children)
		if err != nil {
			return "", err
		}
		return e.ec.bot.MapLookup(name, strings.TrimSpace(key)), nil

	case TagCondition:
		return e.evalCondition(n)

	case TagRandom:
		return e.evalRandom(n)

	case TagSrai:
		inner, err := e.evalChildren(n.Children)
		if err != nil {
			return "", err
		}
		return e.ec.bot.respondInternal(e.ctx, e.ec.session, e.ec.sessionID, strings.TrimSpace(inner))

	case TagSr:
		star := e.ec.bot.trie.Star(StarPattern, e.ec.input, e.ec.that, e.ec.topic, 1)
		return e.ec.bot.respondInternal(e.ctx, e.ec.session, e.ec.sessionID, star)

	case TagStar:
		return e.ec.bot.trie.Star(StarPattern, e.ec.input, e.ec.that, e.ec.topic, indexAttr(n)), nil

	case TagThatStar:
		return e.ec.bot.trie.Star(StarThat, e.ec.input, e.ec.that, e.ec.topic, indexAttr(n)), nil

	case TagTopicStar:
		return e.ec.bot.trie.Star(StarTopic, e.ec.input, e.ec.that, e.ec.topic, indexAttr(n)), nil

	case TagThat:
		idx := n.Attr("index")
		n1, n2 := 1, 0
		if idx != "" {
			parts := strings.Split(idx, ",")
			if v, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
				n1 = v
			}
			if len(parts) > 1 {
				if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
					n2 = v
				}
			}
		}
		sentence := e.ec.session.ThatAt(n1)
		if n2 <= 0 {
			return sentence, nil
		}
		parts := SplitSentences(sentence)
		if n2 > len(parts) {
			return "", nil
		}
		return parts[n2-1], nil

	case TagInput:
		n1 := indexAttr(n)
		return e.ec.session.InputAt(n1), nil

	case TagDate:
		return time.Now().Format("Monday, January 2, 2006 15:04:05"), nil

	case TagID:
		return e.ec.sessionID, nil

	case TagSize:
		return strconv.Itoa(e.ec.bot.trie.TemplateCount()), nil

	case TagVersion:
		return Version, nil

	case TagThink:
		if _, err := e.evalChildren(n.Children); err != nil {
			return "", err
		}
		return "", nil

	case TagGossip:
		text, err := e.evalChildren(n.Children)
		if err != nil {
			return "", err
		}
		e.ec.bot.recordGossip(e.ec.sessionID, text)
		return "", nil

	case TagJavascript:
		return "", nil

	case TagFormal:
		text, err := e.evalChildren(n.Children)
		if err != nil {
			return "", err
		}
		return strings.Title(strings.ToLower(text)), nil

	case TagSentence:
		text, err := e.evalChildren(n.Children)
		if err != nil {
			return "", err
		}
		return capitalizeSentence(text), nil

	case TagUppercase:
		text, err := e.evalChildren(n.Children)
		if err != nil {
			return "", err
		}
		return strings.ToUpper(text), nil

	case TagLowercase:
		text, err := e.evalChildren(n.Children)
		if err != nil {
			return "", err
		}
		return strings.ToLower(text), nil

	case TagGender:
		return e.evalAtomicSub(n, e.ec.bot.subbers.Gender)

	case TagPerson:
		return e.evalAtomicSub(n, e.ec.bot.subbers.Person)

	case TagPerson2:
		return e.evalAtomicSub(n, e.ec.bot.subbers.Person2)

	case TagLearn:
		path, err := e.evalChildren(n.Children)
		if err != nil {
			return "", err
		}
		if err := e.ec.bot.Learn(strings.TrimSpace(path)); err != nil {
			e.ec.bot.logger.Error("learn failed", "path", path, "error", err)
		}
		return "", nil

	case TagSystem:
		cmd, err := e.evalChildren(n.Children)
		if err != nil {
			return "", err
		}
		out, err := e.ec.bot.execSystem(e.ctx, strings.TrimSpace(cmd))
		if err != nil {
			return "", nil
		}
		return out, nil

	case TagLi:
		return e.evalChildren(n.Children)

	default:
		return e.evalChildren(n.Children)
	}
}

// evalAtomicSub implements the gender/person/person2 "atomic" convention:
// if the tag has no content, it substitutes star(1) instead (so <person/>
// alone means "swap pronouns in what the user just said").
func (e *Evaluator) evalAtomicSub(n *ElementNode, sub *Subber) (string, error) {
	if len(n.Children) == 0 {
		star := e.ec.bot.trie.Star(StarPattern, e.ec.input, e.ec.that, e.ec.topic, 1)
		return sub.Sub(star), nil
	}
	text, err := e.evalChildren(n.Children)
	if err != nil {
		return "", err
	}
	return sub.Sub(text), nil
}

// evalCondition implements all three AIML <condition> forms:
// (1) name+value on the tag itself with plain-text children acting
// as the single branch's body, (2) name on the tag with per-<li> value
// attributes, and (3) no attributes on the tag with each <li> carrying its
// own name+value pair, plus an optional final attribute-less <li> as the
// default/else branch.
func (e *Evaluator) evalCondition(n *ElementNode) (string, error) {
	name := n.Attr("name")
	value := n.Attr("value")

	lis := liChildren(n)
	if len(lis) == 0 {
		// Form 1: <condition name="x" value="y">body</condition>.
		if name == "" {
			return "", nil
		}
		got, _ := e.ec.session.GetPredicate(name)
		if got != value {
			return "", nil
		}
		return e.evalChildren(n.Children)
	}

	for i, li := range lis {
		liName := name
		if liName == "" {
			liName = li.Attr("name")
		}
		liValue := li.Attr("value")
		if liName == "" || liValue == "" {
			// Only the final <li> may omit name/value as the default
			// branch; a malformed one earlier in the list is skipped.
			if i == len(lis)-1 {
				return e.evalChildren(li.Children)
			}
			continue
		}
		got, _ := e.ec.session.GetPredicate(liName)
		if got == liValue {
			return e.evalChildren(li.Children)
		}
	}
	return "", nil
}

// evalRandom picks one <li> uniformly at random and evaluates only it.
func (e *Evaluator) evalRandom(n *ElementNode) (string, error) {
	lis := liChildren(n)
	if len(lis) == 0 {
		return "", nil
	}
	chosen := lis[rand.Intn(len(lis))]
	return e.evalChildren(chosen.Children)
}

func liChildren(n *ElementNode) []*ElementNode {
	var out []*ElementNode
	for _, c := range n.Children {
		if el, ok := c.(*ElementNode); ok && el.Tag == TagLi {
			out = append(out, el)
		}
	}
	return out
}

func indexAttr(n *ElementNode) int {
	idx := n.Attr("index")
	if idx == "" {
		return 1
	}
	v, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil || v < 1 {
		return 1
	}
	return v
}

func capitalizeSentence(s string) string {
	trimmed := strings.TrimLeft(s, " \t\n")
	if trimmed == "" {
		return s
	}
	lead := s[:len(s)-len(trimmed)]
	r := []rune(trimmed)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return lead + string(r)
}
