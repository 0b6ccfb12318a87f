package advisor

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMessageUnmarshalLegacyHiddenPrefix(t *testing.T) {
	t.Parallel()

	var m Message
	raw := `{"role":"assistant","content":"HIDDEN: [COURSE_DATA: Nursing]\n- Duration: 12 months"}`
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !m.Hidden {
		t.Error("expected legacy HIDDEN: prefix to set Hidden")
	}
	if strings.HasPrefix(m.Content, "HIDDEN:") {
		t.Errorf("expected prefix stripped, got %q", m.Content)
	}
	if !strings.HasPrefix(m.Content, "[COURSE_DATA: Nursing]") {
		t.Errorf("expected content preserved, got %q", m.Content)
	}
}

func TestMessageUnmarshalCurrentShape(t *testing.T) {
	t.Parallel()

	var m Message
	raw := `{"role":"user","content":"hello","hidden":false}`
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if m.Hidden || m.Role != RoleUser || m.Content != "hello" {
		t.Errorf("unexpected message: %+v", m)
	}
}

func TestTranscriptExcludesHiddenEntries(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Append(RoleUser, "hi")
	s.Append(RoleAssistant, "hello there")
	s.AppendHidden(RoleAssistant, "[COURSE_DATA: Nursing]\n- Duration: 12 months")
	s.Append(RoleUser, "tell me about nursing")

	lines := s.Transcript(10)
	if len(lines) != 3 {
		t.Fatalf("expected 3 visible lines, got %d: %v", len(lines), lines)
	}
	for _, line := range lines {
		if strings.Contains(line, "COURSE_DATA") {
			t.Errorf("hidden entry leaked into transcript: %q", line)
		}
	}
}

func TestTranscriptWindowKeepsNewest(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Append(RoleUser, "first")
	s.Append(RoleAssistant, "second")
	s.Append(RoleUser, "third")

	lines := s.Transcript(2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "second") || !strings.Contains(lines[1], "third") {
		t.Errorf("expected newest entries, got %v", lines)
	}
}

func TestLastCourseDataReturnsNewest(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.AppendHidden(RoleAssistant, "[COURSE_DATA: Nursing]\n- Duration: 12 months")
	s.Append(RoleAssistant, "Here you go")
	s.AppendHidden(RoleAssistant, "[COURSE_DATA: Pedagogy]\n- Duration: 18 months")

	data := s.LastCourseData()
	if !strings.Contains(data, "Pedagogy") {
		t.Errorf("expected newest data block, got %q", data)
	}
}

func TestCourseDataFor(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.AppendHidden(RoleAssistant, "[COURSE_DATA: Intensive Care Nursing]\n- Duration: 12 months")

	if !s.CourseDataFor("Intensive Care Nursing") {
		t.Error("expected data block to be found")
	}
	if !s.CourseDataFor("intensive care nursing") {
		t.Error("expected case-insensitive match")
	}
	if s.CourseDataFor("Pedagogy") {
		t.Error("did not expect match for absent course")
	}
	if s.CourseDataFor("") {
		t.Error("empty name must never match")
	}
}

func TestCourseDataBlockName(t *testing.T) {
	t.Parallel()

	if got := courseDataBlockName("[COURSE_DATA: Intensive Care Nursing]\n- Duration: 12 months"); got != "Intensive Care Nursing" {
		t.Errorf("expected tagged course name, got %q", got)
	}
	if got := courseDataBlockName("plain assistant text"); got != "" {
		t.Errorf("expected empty name for non-block text, got %q", got)
	}
	if got := courseDataBlockName(""); got != "" {
		t.Errorf("expected empty name for empty block, got %q", got)
	}
}

func TestLastMenuParsesNumberedOptions(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Append(RoleAssistant, "I found these options for you:\n1. **Intensive Care Nursing** (Postgraduate)\n2. Pedagogy - Degree\n\nJust reply with the number.")
	s.Append(RoleUser, "2")

	// The user entry after the menu must not hide it; LastMenu reads the
	// last assistant message.
	menu := s.LastMenu()
	if menu == nil {
		t.Fatal("expected a menu")
	}
	if got := menu[1]; got != "Intensive Care Nursing" {
		t.Errorf("option 1: expected cleaned label, got %q", got)
	}
	if got := menu[2]; got != "Pedagogy - Degree" {
		t.Errorf("option 2: got %q", got)
	}
}

func TestLastMenuNilWithoutNumberedOptions(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Append(RoleAssistant, "Sure! What would you like to study?")

	if menu := s.LastMenu(); menu != nil {
		t.Errorf("expected nil menu, got %v", menu)
	}
}

func TestSessionKeyDefaultsToVisitor(t *testing.T) {
	t.Parallel()

	s := &Session{}
	if got := s.Key(); got != DefaultClientName {
		t.Errorf("expected %q, got %q", DefaultClientName, got)
	}

	s.ClientName = "Maria"
	if got := s.Key(); got != "Maria" {
		t.Errorf("expected Maria, got %q", got)
	}
}
