// This file infers client profile fields (name, prior education, preferred
// area) from conversation turns. Inference is deliberately conservative:
// a wrong guess pollutes the session key and the prompt, a missed one
// merely delays personalization.
package advisor

import (
	"regexp"
	"strings"
)

// nameIntroRe matches an explicit self-introduction and captures the first
// name token.
var nameIntroRe = regexp.MustCompile(`(?i)(?:my name is|i am|i'm|call me|this is)\s+([a-zA-Z]{3,})`)

// nameStoplist holds tokens that follow an introduction phrase or answer a
// name question but are not names: filler ("I am interested"), greetings
// and affirmations ("yes", "hello"), and education-status words ("I am
// graduated in pedagogy").
var nameStoplist = map[string]bool{
	"interested": true, "looking": true, "searching": true, "trying": true,
	"wondering": true, "thinking": true, "asking": true, "here": true,
	"sure": true, "not": true, "already": true, "still": true, "just": true,
	"curious": true, "sorry": true, "fine": true, "good": true, "okay": true,
	"ready": true, "done": true, "new": true, "back": true, "from": true,
	"the": true, "very": true, "really": true, "also": true, "going": true,
	"about": true, "unable": true, "calling": true, "writing": true,
	"yes": true, "yeah": true, "yep": true, "hello": true, "hey": true,
	"thanks": true, "thank": true, "great": true, "right": true,
	"graduated": true, "graduate": true, "bachelor": true, "licensed": true,
	"licentiate": true, "technologist": true, "formed": true, "trained": true,
	"qualified": true, "certified": true, "studying": true, "enrolled": true,
}

// bareNameRe matches a message that is nothing but one or two name-like
// words, used when the advisor just asked for the client's name.
var bareNameRe = regexp.MustCompile(`(?i)^\s*([a-zA-Z]{3,})(?:\s+[a-zA-Z]{2,})?\s*[.!]?\s*$`)

// askedNameKeywords mark an assistant message as a name question.
var askedNameKeywords = []string{"your name", "may i call you", "who am i speaking"}

// InferName extracts the client's first name from a message, or "" when no
// confident match exists. lastAssistant is the advisor's previous visible
// message, used to accept bare one-word answers to a direct name question.
func InferName(message, lastAssistant string) string {
	if m := nameIntroRe.FindStringSubmatch(message); m != nil {
		candidate := strings.ToLower(m[1])
		if !nameStoplist[candidate] {
			return titleCase(candidate)
		}
	}

	if containsKeyword(lastAssistant, askedNameKeywords) {
		if m := bareNameRe.FindStringSubmatch(message); m != nil {
			candidate := strings.ToLower(m[1])
			if !nameStoplist[candidate] {
				return titleCase(candidate)
			}
		}
	}

	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// askedEducationKeywords mark an assistant message as an education question.
var askedEducationKeywords = []string{
	"degree", "graduation", "graduated", "education", "studied",
	"your background", "area are you from",
}

// selfReportKeywords mark a client message as describing their own
// education rather than asking about a course.
var selfReportKeywords = []string{
	"i have", "i hold", "i studied", "i graduated", "i finished",
	"i completed", "i did", "i am graduated", "my degree", "degree in",
	"graduated in", "bachelor", "licentiate", "technologist", "technology in",
}

// Education kind labels.
const (
	KindBachelor     = "Bachelor"
	KindLicentiate   = "Licentiate"
	KindTechnologist = "Technologist"
	KindHigherEd     = "Higher Education"
)

// Preferred area labels.
const (
	AreaHealth          = "Health"
	AreaEducation       = "Education"
	AreaEducationHealth = "Education/Health"
)

// InferEducation extracts a prior-education self-report from a client
// message. It only fires when the advisor's previous message asked about
// education, the client message reads as a self-report, and the message is
// short enough to plausibly be an answer rather than a new question.
func InferEducation(message, lastAssistant string) (education, kind string) {
	if !containsKeyword(lastAssistant, askedEducationKeywords) {
		return "", ""
	}
	if !containsKeyword(message, selfReportKeywords) {
		return "", ""
	}
	if len(strings.Fields(message)) >= 15 {
		return "", ""
	}

	education = strings.TrimSpace(strings.Trim(message, ".!?"))
	return education, classifyEducationKind(education)
}

func classifyEducationKind(education string) string {
	lower := strings.ToLower(education)
	switch {
	case strings.Contains(lower, "bachelor"):
		return KindBachelor
	case strings.Contains(lower, "licentiate"), strings.Contains(lower, "licensure"),
		strings.Contains(lower, "teaching degree"):
		return KindLicentiate
	case strings.Contains(lower, "technologist"), strings.Contains(lower, "technology in"):
		return KindTechnologist
	default:
		return KindHigherEd
	}
}

var (
	healthAreaKeywords = []string{
		"nursing", "health", "medicine", "medical", "physiotherapy",
		"nutrition", "pharmacy", "dentistry", "psychology", "biomedicine",
	}
	educationAreaKeywords = []string{
		"pedagogy", "teaching", "education", "teacher", "classroom",
		"school", "licentiate", "childhood",
	}
)

// InferArea classifies the area a message leans toward, or "" when neither
// area is indicated.
func InferArea(message string) string {
	health := containsKeyword(message, healthAreaKeywords)
	education := containsKeyword(message, educationAreaKeywords)
	switch {
	case health && education:
		return AreaEducationHealth
	case health:
		return AreaHealth
	case education:
		return AreaEducation
	default:
		return ""
	}
}

// UpdateProfile applies all profile inference to the session, in place,
// based on the incoming client message. The name is set at most once; a
// fresh education self-report may replace an earlier one; the area-only
// fallback runs only on turns where the education branch stayed silent.
// No rule ever resets a field to empty.
func UpdateProfile(s *Session, message string) {
	lastAssistant := s.LastAssistantMessage()

	if s.ClientName == "" || s.ClientName == DefaultClientName {
		if name := InferName(message, lastAssistant); name != "" {
			s.ClientName = name
		}
	}

	if education, kind := InferEducation(message, lastAssistant); education != "" {
		s.PriorEducation = education
		s.EducationKind = kind
		if area := InferArea(education); area != "" {
			s.PreferredArea = area
		}
		return
	}

	if area := InferArea(message); area != "" {
		s.PreferredArea = area
	}
}
