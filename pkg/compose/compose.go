// Package compose assembles the final chat answer from the generated
// text and the approved media selection.
package compose

import (
	"fmt"
	"strings"

	"github.com/vitrineworks/vitrine/pkg/media"
)

// SuggestionsMarker separates the answer body from the follow-up block
// the generator is prompted to emit.
const SuggestionsMarker = "<<SUGGESTIONS>>"

const maxSuggestions = 3

// Result is the composed answer.
type Result struct {
	// Text is the answer body plus a trailing Visuals section when any
	// media survived.
	Text string

	// Suggestions holds up to three follow-up questions, nil when the
	// generator emitted no marker.
	Suggestions []string
}

// Answer splits the generated text at the suggestions marker and appends
// the approved media as a Visuals section. Urls already present in the
// body are skipped.
func Answer(generated string, sel media.Selection) Result {
	body, suggestions := Split(generated)
	return Result{
		Text:        appendVisuals(body, sel),
		Suggestions: suggestions,
	}
}

// Split separates the answer body from the suggestion block. Suggestion
// lines are stripped of list markers and markdown emphasis; at most
// three are kept.
func Split(generated string) (string, []string) {
	body, block, found := strings.Cut(generated, SuggestionsMarker)
	body = strings.TrimSpace(body)
	if !found {
		return body, nil
	}

	var suggestions []string
	for _, line := range strings.Split(block, "\n") {
		line = cleanSuggestion(line)
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == maxSuggestions {
			break
		}
	}

	return body, suggestions
}

// cleanSuggestion strips leading list markers ("-", "*", "1.") and
// markdown emphasis characters from one suggestion line.
func cleanSuggestion(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*•")
	line = strings.TrimSpace(line)

	// Numbered list marker: digits followed by a dot or paren.
	if i := strings.IndexAny(line, ".)"); i > 0 {
		if isDigits(line[:i]) {
			line = line[i+1:]
		}
	}

	line = strings.Trim(line, "*_` ")
	return strings.TrimSpace(line)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func appendVisuals(body string, sel media.Selection) string {
	var b strings.Builder

	for _, img := range sel.Images {
		if strings.Contains(body, img.URL) {
			continue
		}
		fmt.Fprintf(&b, "![%s](%s)\n", img.Title, img.URL)
	}
	for _, vid := range sel.Videos {
		if strings.Contains(body, vid.URL) {
			continue
		}
		fmt.Fprintf(&b, "[Watch: %s](%s)\n", vid.Title, vid.URL)
	}

	if b.Len() == 0 {
		return body
	}

	return body + "\n\n**Visuals:**\n" + strings.TrimRight(b.String(), "\n")
}
