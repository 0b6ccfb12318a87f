package storage

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a resource is not found in the database
	ErrNotFound = errors.New("resource not found")
)

// Flag values used by the catalog for the thesis/internship columns.
// The source catalog stores free text; only FlagYes means "required".
const (
	FlagYes = "Yes"
	FlagNo  = "No"
)

// Course represents one course record in the catalog.
// Name is the unique key for exact-match retrieval.
type Course struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Type               string `json:"type"`     // degree category, e.g. "Postgraduate"
	Modality           string `json:"modality"` // e.g. "Online"
	TotalHours         string `json:"total_hours"`
	Duration           string `json:"duration"` // completion time, e.g. "Minimum 6 months"
	Area               string `json:"area"`     // practice area, e.g. "Health"
	Prerequisite       string `json:"prerequisite"`
	ThesisRequired     string `json:"thesis_required"`     // "Yes" / "No" / free text
	InternshipRequired string `json:"internship_required"` // "Yes" / "No" / free text
	PriceBankSlip      string `json:"price_bank_slip"`
	PriceCard          string `json:"price_card"`
	PricePix           string `json:"price_pix"`
	SyllabusURL        string `json:"syllabus_url"`
	RegistryURL        string `json:"registry_url"`
	Campus             string `json:"campus"`
	Notes              string `json:"notes"`
}

// Prompt represents one named prompt module.
type Prompt struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Active  bool   `json:"active"`
}

// ChatMessage represents one persisted conversation message.
type ChatMessage struct {
	ID         int64  `json:"id"`
	SessionKey string `json:"session_key"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"created_at"`
}
