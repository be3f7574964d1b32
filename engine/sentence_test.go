package engine

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"Hello there.", []string{"Hello there"}},
		{"Hello! How are you? I am fine.", []string{"Hello", "How are you", "I am fine"}},
		{"no terminal punctuation here", []string{"no terminal punctuation here"}},
		{"...", []string{"..."}},
		{"One. Two.. Three.", []string{"One", "Two", "Three"}},
	}
	for _, tc := range cases {
		got := SplitSentences(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitSentences(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
