package ui

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the number of characters sent per text chunk when the caller does
// not configure one. Together with the pacing delay it is a tuning knob, not a contract.
const DefaultChunkSize = 25

// Incremental HTML updates are withheld until the payload is substantial enough that a
// progressively rendering caller does not flicker on tiny fragments.
const (
	htmlMinLength = 150
	htmlMinTags   = 5
)

// Chunks returns an iterator stepping over text size characters at a time, yielding
// each chunk together with the text accumulated through it. The last chunk may be
// shorter. Concatenating every yielded chunk in order reconstructs text exactly, and
// the final accumulated value equals text.
func Chunks(text string, size int) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		runes := []rune(text)
		for i := 0; i < len(runes); i += size {
			end := min(i+size, len(runes))
			if !yield(string(runes[i:end]), string(runes[:end])) {
				return
			}
		}
	}
}

// HTMLUpdate reports whether accumulated contains enough extracted HTML to warrant an
// incremental html_chunk emission, returning the HTML-so-far when it does. The gate
// requires more than 150 characters after the sentinel and more than 5 opening angle
// brackets.
func HTMLUpdate(accumulated string) (string, bool) {
	html, ok := ExtractHTML(accumulated)
	if !ok {
		return "", false
	}
	if utf8.RuneCountInString(html) <= htmlMinLength || strings.Count(html, "<") <= htmlMinTags {
		return "", false
	}
	return html, true
}
