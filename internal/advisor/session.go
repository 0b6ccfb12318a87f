// Package advisor implements the conversational course advisory core:
// session state, intent interception, profile inference, reply composition,
// and the turn orchestrator that ties them together.
package advisor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultClientName is used until the client's real name is learned.
const DefaultClientName = "visitor"

// Conversation roles as persisted and exchanged over the wire.
const (
	RoleUser        = "user"
	RoleAssistant   = "assistant"
	RoleSystemError = "system_error"
)

// hiddenPrefix is the legacy wire marker for entries that must never be
// shown to the client. It is stripped on decode and mapped to Hidden.
const hiddenPrefix = "HIDDEN:"

// courseDataPrefix opens a hidden course data block stored in the history.
const courseDataPrefix = "[COURSE_DATA:"

// Message is one conversation entry. Hidden entries carry internal data
// (course fact blocks) and are excluded from client-facing transcripts.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Hidden  bool   `json:"hidden,omitempty"`
}

// UnmarshalJSON accepts both the current shape and the legacy encoding in
// which hidden entries were marked with a "HIDDEN:" content prefix.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.HasPrefix(raw.Content, hiddenPrefix) {
		raw.Content = strings.TrimSpace(strings.TrimPrefix(raw.Content, hiddenPrefix))
		raw.Hidden = true
	}
	*m = Message(raw)
	return nil
}

// Session is the per-client conversation state. It is owned by the caller
// and echoed back, updated, in every turn response.
type Session struct {
	ClientName     string    `json:"client_name"`
	PriorEducation string    `json:"prior_education,omitempty"`
	EducationKind  string    `json:"education_kind,omitempty"`
	PreferredArea  string    `json:"preferred_area,omitempty"`
	CourseContext  string    `json:"course_context,omitempty"`
	History        []Message `json:"history"`
}

// NewSession returns a fresh session with default identity.
func NewSession() *Session {
	return &Session{ClientName: DefaultClientName}
}

// Key returns the session identity used for persistence. Sessions are keyed
// by client name, so learning the real name moves subsequent turns to a new
// key.
func (s *Session) Key() string {
	if s.ClientName == "" {
		return DefaultClientName
	}
	return s.ClientName
}

// Append records one entry at the end of the history.
func (s *Session) Append(role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content})
}

// AppendHidden records an internal entry excluded from transcripts.
func (s *Session) AppendHidden(role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content, Hidden: true})
}

// LastAssistantMessage returns the most recent visible assistant entry,
// or "" when there is none.
func (s *Session) LastAssistantMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		m := s.History[i]
		if m.Role == RoleAssistant && !m.isHidden() {
			return m.Content
		}
	}
	return ""
}

// LastCourseData returns the content of the newest hidden course data block,
// or "" when the conversation holds none.
func (s *Session) LastCourseData() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		m := s.History[i]
		if m.isHidden() && strings.HasPrefix(m.Content, courseDataPrefix) {
			return m.Content
		}
	}
	return ""
}

// CourseDataFor reports whether a hidden data block for the named course is
// already present in the history.
func (s *Session) CourseDataFor(name string) bool {
	if name == "" {
		return false
	}
	marker := strings.ToLower(courseDataPrefix + " " + name)
	for i := len(s.History) - 1; i >= 0; i-- {
		m := s.History[i]
		if m.isHidden() && strings.HasPrefix(strings.ToLower(m.Content), marker) {
			return true
		}
	}
	return false
}

// courseDataNameRe extracts the course name a data block was tagged with.
var courseDataNameRe = regexp.MustCompile(`\[COURSE_DATA:\s*(.*?)\]`)

// courseDataBlockName returns the course name carried in a data block's
// opening tag, or "" for text that is not a data block.
func courseDataBlockName(block string) string {
	m := courseDataNameRe.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func (m Message) isHidden() bool {
	return m.Hidden || strings.HasPrefix(m.Content, hiddenPrefix) || strings.HasPrefix(m.Content, courseDataPrefix)
}

// Transcript renders the most recent visible entries as "Role: content"
// lines for prompt assembly. Hidden entries never appear.
func (s *Session) Transcript(limit int) []string {
	visible := make([]Message, 0, len(s.History))
	for _, m := range s.History {
		if m.isHidden() {
			continue
		}
		visible = append(visible, m)
	}
	if limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}

	lines := make([]string, 0, len(visible))
	for _, m := range visible {
		label := "Client"
		if m.Role != RoleUser {
			label = "Advisor"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, m.Content))
	}
	return lines
}

// menuLineRe matches one numbered menu option at the start of a line.
var menuLineRe = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+(.+?)\s*$`)

// LastMenu parses the most recent visible assistant message for numbered
// options, returning option number to label. Nil when the last assistant
// message offered no menu.
func (s *Session) LastMenu() map[int]string {
	last := s.LastAssistantMessage()
	if last == "" {
		return nil
	}
	matches := menuLineRe.FindAllStringSubmatch(last, -1)
	if len(matches) == 0 {
		return nil
	}
	menu := make(map[int]string, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		menu[n] = cleanMenuLabel(m[2])
	}
	return menu
}

// cleanMenuLabel strips markdown emphasis and trailing annotations such as
// "(Postgraduate)" from a menu option so the label matches a stored course
// name.
func cleanMenuLabel(label string) string {
	label = strings.ReplaceAll(label, "**", "")
	label = strings.ReplaceAll(label, "*", "")
	if i := strings.LastIndex(label, " ("); i > 0 && strings.HasSuffix(label, ")") {
		label = label[:i]
	}
	return strings.TrimSpace(label)
}
