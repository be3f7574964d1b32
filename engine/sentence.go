package engine

import "strings"

// SplitSentences scans text left-to-right, cutting at the nearest of
// '.', '?', '!'. Each trimmed non-empty slice is emitted. If no delimiter
// is found anywhere, the whole trimmed input is returned as one sentence.
// Empty input returns an empty list.
func SplitSentences(text string) []string {
	if text == "" {
		return []string{}
	}
	length := len(text)
	pos := 0
	var results []string
	for pos < length {
		end := length
		if i := strings.IndexAny(text[pos:], ".!?"); i >= 0 {
			end = pos + i
		}
		sentence := strings.TrimSpace(text[pos:end])
		if sentence != "" {
			results = append(results, sentence)
		}
		pos = end + 1
	}
	if len(results) == 0 {
		results = append(results, strings.TrimSpace(text))
	}
	return results
}
