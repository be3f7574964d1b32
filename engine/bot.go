package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Loader is implemented by anything that can feed parsed categories, sets,
// and maps into a Bot's pattern store. It exists so the AIML-file parser
// (which must import engine for Category/Template) never gets imported
// back by engine itself — Bot.LoadFunc is wired to parser.LoadFile by the
// cmd that imports both packages.
type Loader interface {
	Insert(cat Category)
	AddSet(name string, values []string)
	AddMap(name string, entries map[string]string)
}

// SystemExecutor runs the body of a <system> tag. The zero value behavior
// (see noSystemExecutor) refuses to execute anything; a host program that
// wants <system> support installs its own implementation on Bot.SystemExec.
type SystemExecutor interface {
	Execute(ctx context.Context, command string) (string, error)
}

type noSystemExecutor struct{}

func (noSystemExecutor) Execute(ctx context.Context, command string) (string, error) {
	return "", fmt.Errorf("engine: system command execution is disabled")
}

// GossipSink receives the body of every <gossip> tag evaluated, keyed by
// session ID. The default implementation just logs; a host can install its
// own (e.g. writing to the A3 brain store) via Bot.Gossip.
type GossipSink interface {
	Record(sessionID, text string)
}

type logGossipSink struct{ logger *slog.Logger }

func (s logGossipSink) Record(sessionID, text string) {
	s.logger.Info("gossip", "session", sessionID, "text", text)
}

// Bot is the AIML interpreter facade: pattern store,
// sessions, word substitution tables, sets/maps, and bot-level predicates,
// behind a single coarse entry point.
type Bot struct {
	mu sync.Mutex

	trie     *Trie
	sessions *SessionManager
	subbers  *Subbers

	setsMu sync.RWMutex
	sets   map[string]map[string]bool
	maps   map[string]map[string]string

	predMu     sync.RWMutex
	predicates map[string]string

	logger     *slog.Logger
	SystemExec SystemExecutor
	Gossip     GossipSink

	// LoadFunc parses an AIML/set/map source at path and feeds it to the
	// given Loader. Set by the owning cmd package (parser.LoadFile),
	// never by engine itself, to avoid an import cycle.
	LoadFunc func(loader Loader, path string) error
}

// NewBot returns an empty bot with the default gender/person/person2/normal
// substitution tables and a "Nameless" bot-name predicate.
func NewBot(logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{
		trie:       NewTrie(),
		sessions:   NewSessionManager(),
		subbers:    DefaultSubbers(),
		sets:       make(map[string]map[string]bool),
		maps:       make(map[string]map[string]string),
		predicates: map[string]string{"name": "Nameless"},
		logger:     logger,
		SystemExec: noSystemExecutor{},
	}
	b.Gossip = logGossipSink{logger: logger}
	b.trie.InSet = b.InSet
	return b
}

// Insert implements Loader.
func (b *Bot) Insert(cat Category) { b.trie.Insert(cat) }

// AddSet implements Loader.
func (b *Bot) AddSet(name string, values []string) {
	b.setsMu.Lock()
	defer b.setsMu.Unlock()
	set, ok := b.sets[strings.ToUpper(name)]
	if !ok {
		set = make(map[string]bool)
		b.sets[strings.ToUpper(name)] = set
	}
	for _, v := range values {
		set[Normalize(v)] = true
	}
}

// AddMap implements Loader.
func (b *Bot) AddMap(name string, entries map[string]string) {
	b.setsMu.Lock()
	defer b.setsMu.Unlock()
	m, ok := b.maps[strings.ToUpper(name)]
	if !ok {
		m = make(map[string]string)
		b.maps[strings.ToUpper(name)] = m
	}
	for k, v := range entries {
		m[Normalize(k)] = v
	}
}

// InSet reports whether value (normalized) belongs to the named set,
// backing a pattern's "<set>NAME</set>" word: the matcher consults this
// whenever it walks that pattern edge against a live input word.
func (b *Bot) InSet(name, value string) bool {
	b.setsMu.RLock()
	defer b.setsMu.RUnlock()
	set, ok := b.sets[strings.ToUpper(name)]
	if !ok {
		return false
	}
	return set[Normalize(value)]
}

// MapLookup resolves a map key, backing the <map name="NAME">key</map>
// template tag.
func (b *Bot) MapLookup(name, key string) string {
	b.setsMu.RLock()
	defer b.setsMu.RUnlock()
	m, ok := b.maps[strings.ToUpper(name)]
	if !ok {
		return ""
	}
	return m[Normalize(key)]
}

// GetBotPredicate returns a bot-level predicate, defaulting to "" when
// unset, backing <bot name="..."/>.
func (b *Bot) GetBotPredicate(name string) string {
	b.predMu.RLock()
	defer b.predMu.RUnlock()
	return b.predicates[name]
}

// SetBotPredicate sets a bot-level predicate, e.g. the bot's own name,
// which the matcher treats as the BOT_NAME wildcard's literal value.
func (b *Bot) SetBotPredicate(name, value string) {
	b.predMu.Lock()
	defer b.predMu.Unlock()
	b.predicates[name] = value
}

// LoadAIML parses the source at path via LoadFunc and feeds it into this
// bot's pattern store, sets, and maps.
func (b *Bot) LoadAIML(path string) error {
	if b.LoadFunc == nil {
		return fmt.Errorf("engine: no AIML loader configured")
	}
	return b.LoadFunc(b, path)
}

// Learn loads a single AIML source at runtime, backing the <learn> tag.
func (b *Bot) Learn(path string) error {
	return b.LoadAIML(path)
}

// TemplateCount is the number of distinct (pattern,that,topic) categories
// currently loaded, backing <size/>.
func (b *Bot) TemplateCount() int { return b.trie.TemplateCount() }

// NewSession creates (or returns, if it exists) the session for id.
func (b *Bot) NewSession(id string) *Session { return b.sessions.GetOrCreate(id) }

// DeleteSession removes a session's state entirely.
func (b *Bot) DeleteSession(id string) { b.sessions.Delete(id) }

// Respond is the bot's single public entry point: it holds
// a coarse mutex for its whole duration, splits input into sentences, and
// evaluates each in turn. srai/sr recursion never re-enters here — it
// calls respondInternal directly, which needs no lock, sidestepping Go's
// lack of a native reentrant mutex.
func (b *Bot) Respond(ctx context.Context, sessionID, input string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sess := b.sessions.GetOrCreate(sessionID)
	sentences := SplitSentences(input)
	if len(sentences) == 0 {
		return "", nil
	}

	replies := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		sess.pushInput(sentence)
		reply, err := b.respondInternal(ctx, sess, sessionID, sentence)
		if err != nil {
			return "", err
		}
		sess.pushOutput(reply)
		replies = append(replies, reply)
	}
	return strings.TrimSpace(strings.Join(replies, "  ")), nil
}

// respondInternal matches and evaluates a single (already a complete
// sentence) input against the pattern store, guarded by the session's
// input-recursion stack rather than the bot's own mutex. srai and sr call
// this directly.
func (b *Bot) respondInternal(ctx context.Context, sess *Session, sessionID, sentence string) (string, error) {
	if err := sess.pushInputStack(sentence); err != nil {
		b.logger.Warn("recursion limit exceeded", "session", sessionID, "input", sentence)
		return "", nil
	}
	defer sess.popInputStack()

	text := b.subbers.Normal.Sub(sentence)
	that := b.subbers.Normal.Sub(sess.That())
	topic := b.subbers.Normal.Sub(sess.Topic())
	botName := Normalize(b.GetBotPredicate("name"))

	cat, ok := b.trie.Match(text, that, topic, botName)
	if !ok {
		b.logger.Debug("no match", "session", sessionID, "input", text)
		return "", nil
	}

	ev := &Evaluator{
		ctx: ctx,
		ec: &evalContext{
			bot:       b,
			session:   sess,
			sessionID: sessionID,
			input:     text,
			that:      that,
			topic:     topic,
		},
	}
	out, err := ev.Eval(cat.Template)
	if err != nil {
		b.logger.Error("template evaluation failed", "session", sessionID, "error", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (b *Bot) execSystem(ctx context.Context, command string) (string, error) {
	if b.SystemExec == nil {
		return "", fmt.Errorf("engine: system command execution is disabled")
	}
	return b.SystemExec.Execute(ctx, command)
}

func (b *Bot) recordGossip(sessionID, text string) {
	if b.Gossip == nil || text == "" {
		return
	}
	b.Gossip.Record(sessionID, text)
}
