package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tanglewood/golem/engine"
)

type fakeLoader struct {
	cats []engine.Category
	sets map[string][]string
	maps map[string]map[string]string
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{sets: make(map[string][]string), maps: make(map[string]map[string]string)}
}

func (f *fakeLoader) Insert(cat engine.Category) { f.cats = append(f.cats, cat) }
func (f *fakeLoader) AddSet(name string, values []string) {
	f.sets[name] = append(f.sets[name], values...)
}
func (f *fakeLoader) AddMap(name string, entries map[string]string) {
	if f.maps[name] == nil {
		f.maps[name] = make(map[string]string)
	}
	for k, v := range entries {
		f.maps[name][k] = v
	}
}

func TestParseReaderBasicCategory(t *testing.T) {
	src := `<aiml>
<category>
	<pattern>HELLO</pattern>
	<template>Hi there!</template>
</category>
</aiml>`
	cats, err := ParseReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if len(cats) != 1 {
		t.Fatalf("got %d categories, want 1", len(cats))
	}
	if cats[0].Pattern != "HELLO" {
		t.Errorf("Pattern = %q, want %q", cats[0].Pattern, "HELLO")
	}
	text, ok := cats[0].Template.(*engine.ElementNode)
	if !ok {
		t.Fatalf("Template root is %T, want *engine.ElementNode", cats[0].Template)
	}
	if text.Tag != engine.TagTemplate {
		t.Errorf("Template.Tag = %v, want TagTemplate", text.Tag)
	}
}

func TestParseReaderSkipsCategoryWithNoPatternOrTemplate(t *testing.T) {
	src := `<aiml>
<category>
	<pattern>HELLO</pattern>
	<template>hi</template>
</category>
<category>
	<pattern></pattern>
	<template>unreachable</template>
</category>
</aiml>`
	cats, err := ParseReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if len(cats) != 1 {
		t.Fatalf("got %d categories, want 1 (blank-pattern category skipped)", len(cats))
	}
}

func TestParseReaderThatAndTopic(t *testing.T) {
	src := `<aiml>
<category>
	<pattern>YES</pattern>
	<that>DO YOU LIKE PIZZA</that>
	<topic>FOOD</topic>
	<template>Great!</template>
</category>
</aiml>`
	cats, err := ParseReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if cats[0].That != "DO YOU LIKE PIZZA" || cats[0].Topic != "FOOD" {
		t.Errorf("got That=%q Topic=%q", cats[0].That, cats[0].Topic)
	}
}

func TestParseReaderTemplateTagTree(t *testing.T) {
	src := `<aiml>
<category>
	<pattern>WHO ARE YOU</pattern>
	<template>I am <bot name="name"/>. <get name="mood"/></template>
</category>
</aiml>`
	cats, err := ParseReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	root := cats[0].Template.(*engine.ElementNode)
	var tags []engine.TagKind
	for _, c := range root.Children {
		if el, ok := c.(*engine.ElementNode); ok {
			tags = append(tags, el.Tag)
		}
	}
	if len(tags) != 2 || tags[0] != engine.TagBot || tags[1] != engine.TagGet {
		t.Errorf("got tags %v, want [TagBot TagGet]", tags)
	}
	botEl := root.Children[1].(*engine.ElementNode)
	if botEl.Attr("name") != "name" {
		t.Errorf("bot tag name attr = %q, want %q", botEl.Attr("name"), "name")
	}
}

func TestExpandPatternSetsRewritesSetReference(t *testing.T) {
	got := expandPatternSets(`I LIKE <set>  animal foods </set> a lot`)
	want := "I LIKE " + engine.SetRefPrefix + "ANIMAL_FOODS a lot"
	if collapseSpaces(got) != want {
		t.Errorf("expandPatternSets = %q, want %q", collapseSpaces(got), want)
	}
}

func TestParseReaderPatternWithSetReference(t *testing.T) {
	src := `<aiml>
<category>
	<pattern>I LIKE <set>animal</set></pattern>
	<template>cool</template>
</category>
</aiml>`
	cats, err := ParseReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	want := "I LIKE " + engine.SetRefPrefix + "ANIMAL"
	if collapseSpaces(cats[0].Pattern) != want {
		t.Errorf("Pattern = %q, want %q", cats[0].Pattern, want)
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestLoadSetLineFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "COLORS.set")
	if err := os.WriteFile(path, []byte("red\ngreen\n\nblue\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loader := newFakeLoader()
	if err := LoadFile(loader, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := loader.sets["COLORS"]; len(got) != 3 {
		t.Errorf("got %v, want 3 values", got)
	}
}

func TestLoadSetJSONFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "COLORS.set")
	if err := os.WriteFile(path, []byte(`["red", "green", "blue"]`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loader := newFakeLoader()
	if err := LoadFile(loader, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := loader.sets["COLORS"]; len(got) != 3 {
		t.Errorf("got %v, want 3 values", got)
	}
}

func TestLoadMapLineFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "OPPOSITE.map")
	if err := os.WriteFile(path, []byte("up:down\nhot:cold\n# comment\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loader := newFakeLoader()
	if err := LoadFile(loader, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := loader.maps["OPPOSITE"]["up"]; got != "down" {
		t.Errorf("got %q, want %q", got, "down")
	}
}

func TestLoadMapJSONFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "OPPOSITE.map")
	if err := os.WriteFile(path, []byte(`{"up": "down", "hot": "cold"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loader := newFakeLoader()
	if err := LoadFile(loader, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := loader.maps["OPPOSITE"]["hot"]; got != "cold" {
		t.Errorf("got %q, want %q", got, "cold")
	}
}

func TestLoadFileDirectoryWalksRecognizedFiles(t *testing.T) {
	dir := t.TempDir()
	aimlSrc := `<aiml><category><pattern>HI</pattern><template>hey</template></category></aiml>`
	if err := os.WriteFile(filepath.Join(dir, "greet.aiml"), []byte(aimlSrc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "COLORS.set"), []byte("red\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loader := newFakeLoader()
	if err := LoadFile(loader, dir); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(loader.cats) != 1 {
		t.Errorf("got %d categories, want 1", len(loader.cats))
	}
	if len(loader.sets["COLORS"]) != 1 {
		t.Errorf("got %v, want 1 set value", loader.sets["COLORS"])
	}
}
