package engine

import (
	"path/filepath"
	"testing"
)

func TestSaveAndRestoreBrainRoundTrip(t *testing.T) {
	src := NewBot(nil)
	src.SetBotPredicate("name", "Golem")
	src.Insert(Category{Pattern: "HELLO", Template: &TextNode{Content: "hi there"}})
	src.Insert(Category{Pattern: "I LIKE *", Template: &TextNode{Content: "cool"}})
	src.Insert(Category{Pattern: "YES", That: "DO YOU LIKE PIZZA", Template: &TextNode{Content: "glad"}})
	src.AddSet("COLORS", []string{"red", "green", "blue"})
	src.AddMap("OPPOSITE", map[string]string{"up": "down", "hot": "cold"})

	path := filepath.Join(t.TempDir(), "brain.db")
	if err := SaveBrain(src, path); err != nil {
		t.Fatalf("SaveBrain: %v", err)
	}

	dst := NewBot(nil)
	if err := RestoreBrain(dst, path); err != nil {
		t.Fatalf("RestoreBrain: %v", err)
	}

	if dst.TemplateCount() != src.TemplateCount() {
		t.Errorf("TemplateCount() = %d, want %d", dst.TemplateCount(), src.TemplateCount())
	}
	if got := dst.GetBotPredicate("name"); got != "Golem" {
		t.Errorf("bot name predicate = %q, want %q", got, "Golem")
	}

	if cat, ok := dst.trie.Match("HELLO", "", "", ""); !ok || cat.Template.(*TextNode).Content != "hi there" {
		t.Errorf("expected restored HELLO category to match, got %+v ok=%v", cat, ok)
	}
	if _, ok := dst.trie.Match("YES", "DO YOU LIKE PIZZA", "", ""); !ok {
		t.Error("expected restored that-scoped category to match")
	}
	if !dst.InSet("COLORS", "red") {
		t.Error("expected restored set to contain \"red\"")
	}
	if got := dst.MapLookup("OPPOSITE", "up"); got != "down" {
		t.Errorf("MapLookup(OPPOSITE, up) = %q, want %q", got, "down")
	}
}

func TestSaveBrainReflectsLatestTrieOnResave(t *testing.T) {
	b := NewBot(nil)
	b.Insert(Category{Pattern: "HELLO", Template: &TextNode{Content: "first"}})

	path := filepath.Join(t.TempDir(), "brain.db")
	if err := SaveBrain(b, path); err != nil {
		t.Fatalf("SaveBrain: %v", err)
	}

	b.Insert(Category{Pattern: "GOODBYE", Template: &TextNode{Content: "bye"}})
	if err := SaveBrain(b, path); err != nil {
		t.Fatalf("second SaveBrain: %v", err)
	}

	dst := NewBot(nil)
	if err := RestoreBrain(dst, path); err != nil {
		t.Fatalf("RestoreBrain: %v", err)
	}
	if dst.TemplateCount() != 2 {
		t.Errorf("TemplateCount() = %d, want 2", dst.TemplateCount())
	}
}
