package engine_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanglewood/golem/engine"
	"github.com/tanglewood/golem/parser"
)

func newTestBot(t *testing.T) *engine.Bot {
	t.Helper()
	bot := engine.NewBot(nil)
	bot.LoadFunc = parser.LoadFile
	bot.SetBotPredicate("name", "Golem")
	require.NoError(t, bot.LoadAIML(filepath.Join("..", "testdata", "simple.aiml")))
	return bot
}

func respond(t *testing.T, bot *engine.Bot, session, input string) string {
	t.Helper()
	out, err := bot.Respond(context.Background(), session, input)
	require.NoError(t, err)
	return out
}

func TestConformance_BasicPatterns(t *testing.T) {
	bot := newTestBot(t)

	require.Equal(t, "Hello! How are you today?", respond(t, bot, "u1", "hello"))
	require.Equal(t, "My name is Golem, nice to meet you!", respond(t, bot, "u1", "what is your name"))
	require.Equal(t, "Goodbye! Have a great day!", respond(t, bot, "u1", "goodbye"))
}

func TestConformance_ThatContext(t *testing.T) {
	bot := newTestBot(t)

	respond(t, bot, "u2", "hello")
	require.Equal(t, "I'm doing well, thank you for asking!", respond(t, bot, "u2", "how are you"))
}

func TestConformance_TopicContext(t *testing.T) {
	bot := newTestBot(t)

	sess := bot.NewSession("u3")
	sess.SetTopic("HUMOR")
	require.Equal(t,
		"Why don't scientists trust atoms? Because they make up everything!",
		respond(t, bot, "u3", "tell me a joke"))
}

func TestConformance_StarCaptureAndSetGet(t *testing.T) {
	bot := newTestBot(t)

	out := respond(t, bot, "u4", "my name is Ada")
	require.Equal(t, "Ada, nice to meet you!", out)
	require.Equal(t, "Your name is Ada.", respond(t, bot, "u4", "what is my name"))
}

func TestConformance_UnderscoreWildcard(t *testing.T) {
	bot := newTestBot(t)
	require.Equal(t, "Happy birthday, you are 30 years old!", respond(t, bot, "u5", "I am 30 years old"))
}

func TestConformance_Srai(t *testing.T) {
	bot := newTestBot(t)
	require.Equal(t, "Hello! How are you today?", respond(t, bot, "u6", "hi there Bob"))
}

func TestConformance_Random(t *testing.T) {
	bot := newTestBot(t)
	out := respond(t, bot, "u7", "pick a number")
	require.Contains(t, []string{"One.", "Two.", "Three."}, out)
}

func TestConformance_ConditionDefaultsToEmpty(t *testing.T) {
	bot := newTestBot(t)
	// No "mood" predicate has been set, so the single-branch condition
	// should produce no output.
	require.Equal(t, "", respond(t, bot, "u8", "am I happy"))
}

func TestConformance_BotNameWildcardInPattern(t *testing.T) {
	bot := newTestBot(t)
	require.Equal(t, "You said my name!", respond(t, bot, "u9", "say bot name Golem"))
}

func TestConformance_NoMatchIsEmptyNotError(t *testing.T) {
	bot := newTestBot(t)
	out, err := bot.Respond(context.Background(), "u10", "this matches absolutely nothing at all")
	require.NoError(t, err)
	require.Equal(t, "", out)
}
