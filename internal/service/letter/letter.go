// Package letter normalizes the generated cover letter for display.
//
// Process is a single-pass transform applied exactly once per generation; it
// is pure in (raw, verdict) but not idempotent, since reprocessing edited
// text could append a second signature or disclaimer.
package letter

import (
	"strings"

	"github.com/lettersmith/ai-cover-letter/internal/domain"
)

// EmptyGenerationText replaces an empty completion so the caller always
// receives displayable content.
const EmptyGenerationText = "We could not generate a cover letter this time. Please try again."

const greeting = "Dear Hiring Manager,\n\n"

const signature = "\n\nSincerely,\n[Candidate Name]"

const disclaimer = "\n\n---\nNote: This letter was generated with limited information from your CV. " +
	"For better results, upload a text-based PDF or add more context to the job description."

// Process returns display-ready text for the raw completion output.
func Process(raw string, verdict domain.ValidationVerdict) string {
	if strings.TrimSpace(raw) == "" {
		return EmptyGenerationText
	}

	out := strings.TrimSpace(raw)
	lower := strings.ToLower(out)

	if !strings.Contains(lower, "dear") {
		out = greeting + out
	}
	if !strings.Contains(lower, "sincerely") && !strings.Contains(lower, "best regards") {
		out += signature
	}
	if !verdict.Valid {
		out += disclaimer
	}
	return out
}
