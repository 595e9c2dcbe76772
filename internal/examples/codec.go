// Package examples encodes few-shot example pairs inside a free-text system
// message and recovers them again.
//
// The block format is:
//
//	<examples>
//	<user>
//	question
//	</user>
//	<assistant>
//	answer
//	</assistant>
//
//	<user>
//	...
//	</examples>
//
// Parsing is lenient: unbalanced or missing segments become empty strings
// rather than errors.
package examples

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	blockOpen      = "<examples>"
	blockClose     = "</examples>"
	userOpen       = "<user>"
	userClose      = "</user>"
	assistantOpen  = "<assistant>"
	assistantClose = "</assistant>"
)

var (
	blockPattern     = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(blockOpen) + `(.*?)` + regexp.QuoteMeta(blockClose))
	userPattern      = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(userOpen) + `(.*?)` + regexp.QuoteMeta(userClose))
	assistantPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(assistantOpen) + `(.*?)` + regexp.QuoteMeta(assistantClose))
)

// Pair is one few-shot example. ID is only meaningful within an editing
// session and is never serialized.
type Pair struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// NewPair returns a pair with a fresh ID.
func NewPair(user, assistant string) Pair {
	return Pair{ID: uuid.NewString(), User: user, Assistant: assistant}
}

// ParseExamples extracts the pairs from the first examples block in text.
// Returns an empty, non-nil slice when there is no block.
func ParseExamples(text string) []Pair {
	match := blockPattern.FindStringSubmatch(text)
	if match == nil {
		return []Pair{}
	}
	inner := match[1]

	users := segments(userPattern, inner)
	assistants := segments(assistantPattern, inner)

	n := max(len(users), len(assistants))
	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		var user, assistant string
		if i < len(users) {
			user = users[i]
		}
		if i < len(assistants) {
			assistant = assistants[i]
		}
		pairs = append(pairs, NewPair(user, assistant))
	}
	return pairs
}

func segments(pattern *regexp.Regexp, text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// ExtractBaseText returns text with the examples block removed, trimmed.
func ExtractBaseText(text string) string {
	loc := blockPattern.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
}

// FormatExamples renders pairs as an examples block.
// Pairs with empty user text are dropped; returns "" when none remain.
func FormatExamples(pairs []Pair) string {
	rendered := make([]string, 0, len(pairs))
	for _, p := range pairs {
		user := strings.TrimSpace(p.User)
		if user == "" {
			continue
		}
		rendered = append(rendered,
			userOpen+"\n"+user+"\n"+userClose+"\n"+
				assistantOpen+"\n"+strings.TrimSpace(p.Assistant)+"\n"+assistantClose)
	}
	if len(rendered) == 0 {
		return ""
	}
	return blockOpen + "\n" + strings.Join(rendered, "\n\n") + "\n" + blockClose
}

// Compose joins base instructions and the examples block.
func Compose(base string, pairs []Pair) string {
	base = strings.TrimSpace(base)
	block := FormatExamples(pairs)
	if block == "" {
		return base
	}
	return base + "\n\n" + block
}

// Split is the inverse of Compose.
func Split(text string) (string, []Pair) {
	return ExtractBaseText(text), ParseExamples(text)
}
