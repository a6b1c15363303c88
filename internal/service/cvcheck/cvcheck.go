// Package cvcheck scores extracted CV text against résumé heuristics.
//
// The verdict is a confidence signal consumed by the prompt assembler and
// surfaced to the caller; it never blocks generation.
package cvcheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lettersmith/ai-cover-letter/internal/domain"
	"github.com/lettersmith/ai-cover-letter/pkg/textx"
)

// minContentLen is the floor below which text cannot plausibly be a résumé.
const minContentLen = 50

// requiredSignals is how many of the five heuristics must match.
const requiredSignals = 3

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
)

var (
	experienceKeywords = []string{"experience", "worked", "employment", "position", "role", "responsibilities", "developer", "engineer", "manager", "analyst"}
	skillsKeywords     = []string{"skills", "proficient", "technologies", "tools", "languages", "frameworks", "competencies"}
	educationKeywords  = []string{"education", "university", "college", "degree", "bachelor", "master", "phd", "diploma", "certification"}
)

// Validate scores the extraction result and returns a verdict. A Failed
// extraction (either sentinel kind) is invalid immediately, as is any text
// shorter than the minimum content length.
func Validate(res domain.ExtractionResult) domain.ValidationVerdict {
	if !res.Usable() || len(res.Text) < minContentLen {
		return domain.ValidationVerdict{
			Valid:   false,
			Message: "CV content could not be read; standard resume sections were not detected",
		}
	}

	lower := strings.ToLower(res.Text)
	matched := 0
	if emailRe.MatchString(res.Text) {
		matched++
	}
	if phoneRe.MatchString(res.Text) {
		matched++
	}
	if containsAny(lower, experienceKeywords) {
		matched++
	}
	if containsAny(lower, skillsKeywords) {
		matched++
	}
	if containsAny(lower, educationKeywords) {
		matched++
	}

	words := textx.WordCount(res.Text)
	if matched >= requiredSignals {
		return domain.ValidationVerdict{
			Valid:     true,
			Message:   fmt.Sprintf("CV content looks valid (%d words extracted)", words),
			WordCount: words,
		}
	}
	return domain.ValidationVerdict{
		Valid:     false,
		Message:   "standard resume sections were not detected in the extracted text",
		WordCount: words,
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
