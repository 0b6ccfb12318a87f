// This file implements turn interception: fast-path rules evaluated before
// the generator, and classification of generator output control tags.
package advisor

import (
	"regexp"
	"strconv"
	"strings"
)

// InterceptKind identifies which fast-path rule fired for a turn.
type InterceptKind string

const (
	InterceptNone      InterceptKind = ""
	InterceptDuration  InterceptKind = "duration"
	InterceptThesis    InterceptKind = "thesis"
	InterceptSyllabus  InterceptKind = "syllabus"
	InterceptSelection InterceptKind = "selection"
)

// Keyword sets for the field intercepts. Matching is case-insensitive and
// substring-based, mirroring how clients actually phrase these questions.
var (
	durationKeywords = []string{
		"duration", "how long", "workload", "work load", "total hours",
		"how many hours", "how many months", "course length",
	}

	thesisKeywords = []string{
		"thesis", "final paper", "final project", "capstone",
		"internship", "tcc", "monograph", "article required",
	}

	syllabusKeywords = []string{
		"syllabus", "curriculum", "course grid", "subjects", "disciplines",
		"what will i study", "program content",
	}
)

func containsKeyword(message string, keywords []string) bool {
	lower := strings.ToLower(message)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MatchFieldIntercept classifies a client message against the field
// intercepts, in precedence order. Duration wins over thesis, thesis over
// syllabus; selection is handled separately because it needs a menu.
func MatchFieldIntercept(message string) InterceptKind {
	switch {
	case containsKeyword(message, durationKeywords):
		return InterceptDuration
	case containsKeyword(message, thesisKeywords):
		return InterceptThesis
	case containsKeyword(message, syllabusKeywords):
		return InterceptSyllabus
	default:
		return InterceptNone
	}
}

// selectionRe matches a message whose trimmed text is exactly a decimal
// integer. Anything looser ("option 2", "2.") is left for the generator.
var selectionRe = regexp.MustCompile(`^\s*(\d+)\s*$`)

// MatchSelection reports whether the message is a bare numbered-option pick
// and, if so, which number.
func MatchSelection(message string) (int, bool) {
	m := selectionRe.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// OutputKind classifies post-processed generator output.
type OutputKind string

const (
	OutputPlain    OutputKind = "plain"
	OutputNavigate OutputKind = "navigate"
	OutputSearch   OutputKind = "search"
)

var (
	navTagRe    = regexp.MustCompile(`(?i)\[NAVIGATE_TO\]`)
	searchTagRe = regexp.MustCompile(`(?i)\[COURSE_SEARCH\]`)

	// searchTermRe validates that the text after a search tag ends in a
	// course-name-shaped phrase: at least five characters of letters,
	// spaces, and hyphens, anchored at the end of the output.
	searchTermRe = regexp.MustCompile(`(?s)([a-zA-Z][a-zA-Z \t\n-]{3,}[a-zA-Z])\s*$`)
)

// ClassifiedOutput is the result of scanning raw generator output for
// control tags.
type ClassifiedOutput struct {
	Kind    OutputKind
	Visible string // tag-free text preceding the control tag
	Query   string // search terms, when Kind == OutputSearch
}

// ClassifyOutput scans raw generator output for control tags. Navigation
// takes precedence over search when both appear. Visible text is whatever
// preceded the first tag, trimmed. A search tag whose trailing text is too
// short or not name-shaped does not count as a search intent; the output
// falls back to a plain reply.
func ClassifyOutput(raw string) ClassifiedOutput {
	if loc := navTagRe.FindStringIndex(raw); loc != nil {
		return ClassifiedOutput{
			Kind:    OutputNavigate,
			Visible: strings.TrimSpace(raw[:loc[0]]),
		}
	}

	if loc := searchTagRe.FindStringIndex(raw); loc != nil {
		if m := searchTermRe.FindStringSubmatch(raw[loc[1]:]); m != nil {
			return ClassifiedOutput{
				Kind:    OutputSearch,
				Visible: strings.TrimSpace(raw[:loc[0]]),
				Query:   sanitizeQuery(m[1]),
			}
		}
	}

	return ClassifiedOutput{Kind: OutputPlain, Visible: strings.TrimSpace(raw)}
}

// sanitizeQuery strips markdown and tag debris from generator-produced
// search terms, keeping letters, digits, spaces, and hyphens.
func sanitizeQuery(query string) string {
	var sb strings.Builder
	for _, r := range query {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == ' ', r == '-':
			sb.WriteRune(r)
		case r == '\n', r == '\t':
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// LeaksPrompt reports whether raw generator output echoes internal prompt
// structure that must never reach the client.
func LeaksPrompt(raw string) bool {
	upper := strings.ToUpper(raw)
	return strings.Contains(upper, "CLIENT PROFILE") ||
		strings.Contains(upper, "CONVERSATION SO FAR:") ||
		strings.Contains(upper, "DATA FIDELITY:")
}
