package ui

import "strings"

// Sentinel is the marker the upstream model is instructed to put in front of the HTML
// document in every response. Anything after its first occurrence is the payload; an
// optional explanatory preamble may precede it.
const Sentinel = "HTML_PAGE:"

// ExtractHTML splits text on the first occurrence of the sentinel marker and returns
// the remainder trimmed of surrounding whitespace. The second return value is false
// when the marker is absent. No well-formedness check is made on the payload; if the
// marker reappears later in the text it is returned as part of the payload verbatim.
func ExtractHTML(text string) (string, bool) {
	_, after, found := strings.Cut(text, Sentinel)
	if !found {
		return "", false
	}
	return strings.TrimSpace(after), true
}
