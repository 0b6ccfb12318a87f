// This file turns free-text search queries into store lookups: course type
// detection, keyword extraction, and the area-first relevance pass.
package advisor

import (
	"context"
	"strings"

	"github.com/Killzin1000/quality-eco/internal/logger"
	"github.com/Killzin1000/quality-eco/internal/storage"
)

// Course type labels recognized in queries, checked in order so the more
// specific labels win.
var courseTypePatterns = []struct {
	label    string
	keywords []string
}{
	{"Postgraduate", []string{"postgraduate", "post-graduate", "graduate program", "specialization", "mba"}},
	{"Pedagogical Training", []string{"pedagogical training", "teacher training", "training for teachers"}},
	{"Second Licentiate", []string{"second licentiate", "second degree", "second teaching"}},
	{"Licentiate", []string{"licentiate", "teaching degree", "licensure"}},
}

// searchStopwords are dropped from queries before keyword matching.
var searchStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"for": true, "to": true, "and": true, "or": true, "with": true,
	"course": true, "courses": true, "program": true, "programs": true,
	"degree": true, "about": true, "some": true, "any": true, "want": true,
	"looking": true, "study": true, "studies": true, "area": true,
	"online": true, "distance": true, "i": true, "me": true, "my": true,
	"do": true, "you": true, "have": true, "there": true, "is": true,
	"are": true, "what": true, "which": true, "know": true, "more": true,
}

// querySynonyms normalizes common shorthand to the terms stored courses use.
var querySynonyms = map[string]string{
	"icu": "intensive care",
	"er":  "emergency",
	"ed":  "education",
}

// DetectTypeAndKeywords splits a search query into an optional course type
// filter and the content keywords used for name matching.
func DetectTypeAndKeywords(query string) (courseType string, keywords []string) {
	lower := strings.ToLower(query)
	lower = strings.ReplaceAll(lower, "**", " ")
	lower = strings.ReplaceAll(lower, "*", " ")

	for _, p := range courseTypePatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				courseType = p.label
				lower = strings.ReplaceAll(lower, kw, " ")
				break
			}
		}
		if courseType != "" {
			break
		}
	}

	seen := map[string]bool{}
	for _, word := range strings.Fields(lower) {
		word = strings.Trim(word, ".,;:!?\"'()[]")
		if syn, ok := querySynonyms[word]; ok {
			word = syn
		}
		if len(word) <= 2 || searchStopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return courseType, keywords
}

// Searcher runs relevance-ordered course lookups for the orchestrator.
type Searcher struct {
	store      storage.CourseRepository
	log        *logger.Logger
	maxResults int
}

// NewSearcher creates a course searcher. maxResults caps how many options
// a single search may surface.
func NewSearcher(store storage.CourseRepository, log *logger.Logger, maxResults int) *Searcher {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Searcher{
		store:      store,
		log:        log.WithModule("search"),
		maxResults: maxResults,
	}
}

// RelevantCourses resolves a free-text query to an ordered, deduplicated
// result set. When the session has a preferred area, courses in that area
// are tried first, then the search widens to all areas. Store errors are
// logged and treated as empty results so a degraded store never fails the
// turn outright.
func (s *Searcher) RelevantCourses(ctx context.Context, query, preferredArea string) []*storage.Course {
	courseType, keywords := DetectTypeAndKeywords(query)
	if courseType == "" && len(keywords) == 0 {
		return nil
	}

	var results []*storage.Course
	seen := map[int64]bool{}

	appendResults := func(found []storage.Course) {
		for i := range found {
			c := found[i]
			if seen[c.ID] || len(results) >= s.maxResults {
				continue
			}
			seen[c.ID] = true
			results = append(results, &c)
		}
	}

	if preferredArea != "" {
		found, err := s.store.SearchCourses(ctx, keywords, courseType, preferredArea)
		if err != nil {
			s.log.WithError(err).Warn("area-scoped course search failed")
		} else {
			appendResults(found)
		}
	}

	if len(results) < s.maxResults {
		found, err := s.store.SearchCourses(ctx, keywords, courseType, "")
		if err != nil {
			s.log.WithError(err).Warn("course search failed")
		} else {
			appendResults(found)
		}
	}

	return results
}
