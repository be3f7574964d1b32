// Command golem is an interactive AIML chat front end: it loads (or
// creates) a persisted brain, optionally layers a corpus of AIML files on
// top, and drives a terminal chat session against it.
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tanglewood/golem/engine"
	"github.com/tanglewood/golem/parser"
)

//go:embed std/std.aiml
var stdCorpus []byte

func main() {
	os.Exit(run(os.Args[1:]))
}

// run contains all of main's logic so tests can exercise flag parsing and
// path handling in-process, without exec'ing a subprocess or driving the
// interactive chat loop.
func run(args []string) int {
	fs := flag.NewFlagSet("golem", flag.ContinueOnError)
	reset := fs.Bool("r", false, "start from a fresh brain, ignoring any existing one at BRAIN_PATH")
	fs.BoolVar(reset, "reset", false, "alias for -r")
	noStd := fs.Bool("n", false, "skip loading the bundled standard AIML startup corpus")
	fs.BoolVar(noStd, "no-std", false, "alias for -n")
	loadDir := fs.String("load", "", "directory whose .aiml files are loaded in addition (.set/.map files in it are not loaded)")
	debug := fs.Bool("debug", false, "enable debug logging")
	configPath := fs.String("config", "", "path to a YAML config file")
	envPath := fs.String("env", "", "path to a .env file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	brainPath, err := resolveBrainPath(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "golem:", err)
		return 1
	}

	cfg, err := engine.LoadConfig(*configPath, *envPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "golem:", err)
		return 1
	}
	if *debug {
		cfg.Debug = true
	}

	logger := engine.NewLogger(cfg.Debug)
	bot := engine.NewBot(logger)
	bot.LoadFunc = parser.LoadFile

	if *reset {
		_ = os.Remove(brainPath)
	} else if _, err := os.Stat(brainPath); err == nil {
		if err := engine.RestoreBrain(bot, brainPath); err != nil {
			fmt.Fprintln(os.Stderr, "golem: restoring brain:", err)
			return 1
		}
	}

	if cfg.Name != "" {
		bot.SetBotPredicate("name", cfg.Name)
	}

	if !*noStd && bot.TemplateCount() == 0 {
		cats, err := parser.ParseReader(strings.NewReader(string(stdCorpus)))
		if err != nil {
			fmt.Fprintln(os.Stderr, "golem: loading standard corpus:", err)
			return 1
		}
		for _, c := range cats {
			bot.Insert(c)
		}
	}

	if *loadDir != "" {
		ctx, cancel := context.WithTimeout(context.Background(), engine.CorpusLoadTimeout)
		err := engine.LoadCorpusConcurrent(ctx, bot, *loadDir, parser.ParseFile, true)
		cancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, "golem: loading corpus:", err)
			return 1
		}
	}

	sessionID := uuid.NewString()
	if err := runChat(bot, sessionID); err != nil {
		fmt.Fprintln(os.Stderr, "golem:", err)
		return 1
	}

	if err := engine.SaveBrain(bot, brainPath); err != nil {
		fmt.Fprintln(os.Stderr, "golem: saving brain:", err)
		return 1
	}
	return 0
}

// resolveBrainPath implements the BRAIN_PATH positional argument contract:
// default to ~/.aiml/default.brn when omitted, and append a .brn suffix to
// whatever path is given if it doesn't already have one.
func resolveBrainPath(arg string) (string, error) {
	if arg == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir := filepath.Join(home, ".aiml")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating %s: %w", dir, err)
		}
		return filepath.Join(dir, "default.brn"), nil
	}
	if !strings.HasSuffix(arg, ".brn") {
		arg += ".brn"
	}
	return arg, nil
}
