// Package media decides which retrieved media urls are shown to the user.
//
// The rules are literal keyword and substring heuristics over normalized
// text, applied in a fixed precedence. They are deliberately not semantic:
// the contract is the word lists below, nothing smarter.
package media

import (
	"strings"
	"unicode"

	"github.com/vitrineworks/vitrine/pkg/retrieve"
)

// profilePhrases gate the profile image. The raw query must contain one
// of these self-referential phrases for the avatar to be shown.
var profilePhrases = []string{
	"who are you",
	"about you",
	"about yourself",
	"tell me about you",
	"your photo",
	"your picture",
	"your image",
	"what do you look like",
	"show yourself",
}

// visualWords signal that the user asked to see something.
var visualWords = map[string]struct{}{
	"show":    {},
	"image":   {},
	"images":  {},
	"picture": {},
	"photo":   {},
	"video":   {},
	"demo":    {},
	"see":     {},
	"watch":   {},
	"visual":  {},
}

// Item is an approved media url with its display title.
type Item struct {
	Title string
	URL   string
}

// Selection is the media approved for display, unique and in
// first-seen candidate order.
type Selection struct {
	Images []Item
	Videos []Item
}

// ProfileIntent reports whether the query asks about the portfolio
// owner themselves.
func ProfileIntent(query string) bool {
	q := strings.ToLower(query)
	for _, phrase := range profilePhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}

// VisualIntent reports whether the query contains an explicit
// media-request word.
func VisualIntent(query string) bool {
	for _, word := range tokenize(query) {
		if _, ok := visualWords[word]; ok {
			return true
		}
	}
	return false
}

// MatchedProjects returns the project ids identifiable from the query
// via the corpus keyword map.
func MatchedProjects(query string, keywords map[string]string) map[string]bool {
	q := strings.ToLower(query)
	matched := map[string]bool{}
	for keyword, projectID := range keywords {
		if keyword != "" && strings.Contains(q, keyword) {
			matched[projectID] = true
		}
	}
	return matched
}

// Select applies the display rules to retrieval output.
//
// Precedence: the profile image needs a self-referential phrase; project
// media needs explicit visual intent plus an identifiable project; without
// visual intent, candidates that retrieved a video are still auto-suggested
// (videos only). Urls already present verbatim in the generated response
// are dropped, and the survivors are unique in first-seen order.
func Select(query, response string, grounding *retrieve.Grounding, keywords map[string]string) Selection {
	var sel Selection
	seen := map[string]bool{}

	add := func(list *[]Item, title, url string) {
		if url == "" || seen[url] || strings.Contains(response, url) {
			return
		}
		seen[url] = true
		if title == "" {
			title = "Visual"
		}
		*list = append(*list, Item{Title: title, URL: url})
	}

	if ProfileIntent(query) {
		add(&sel.Images, "Profile", grounding.ProfileImage)
	}

	visual := VisualIntent(query)
	matched := MatchedProjects(query, keywords)
	normalizedQuery := normalize(query)

	for _, candidate := range grounding.Candidates {
		switch {
		case visual && identifiable(candidate, matched, normalizedQuery):
			add(&sel.Images, candidate.Title, candidate.ImageURL)
			add(&sel.Videos, candidate.Title, candidate.VideoURL)
		case !visual:
			// Auto-suggest: a video that survived retrieval is offered
			// even without an explicit request. Never images.
			add(&sel.Videos, candidate.Title, candidate.VideoURL)
		}
	}

	return sel
}

func identifiable(candidate retrieve.Candidate, matched map[string]bool, normalizedQuery string) bool {
	if matched[candidate.Key] {
		return true
	}
	title := normalize(candidate.Title)
	return len(title) > 3 && strings.Contains(normalizedQuery, title)
}

// normalize lowercases and strips every non-alphanumeric rune.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
