// Package prompt assembles the system/user instructions and decoding
// parameters for the cover-letter completion call.
package prompt

import (
	"fmt"
	"strings"

	"github.com/lettersmith/ai-cover-letter/internal/domain"
)

const systemPersona = "You are an expert cover letter writer who creates personalized, " +
	"professional cover letters that get results. You ground every claim in the " +
	"candidate's actual background and the specific role they are applying for."

const lowConfidenceCaveat = " The CV text provided may be incomplete or unreadable; " +
	"rely on whatever information is available and the job description context."

// BuildSystem returns the fixed persona instruction, extended with a caveat
// when the CV validation verdict was negative.
func BuildSystem(verdict domain.ValidationVerdict) string {
	if verdict.Valid {
		return systemPersona
	}
	return systemPersona + lowConfidenceCaveat
}

// BuildUser concatenates the regeneration directive, the extracted CV text,
// the job context, the style selections, the grounding rules, and the
// formatting instructions into the user prompt.
func BuildUser(req domain.GenerationRequest, extraction domain.ExtractionResult) string {
	var b strings.Builder

	if req.Regenerate {
		b.WriteString("IMPORTANT: This is a regeneration request. The previous cover letter was:\n\n")
		b.WriteString(req.PreviousLetter)
		b.WriteString("\n\nWrite a COMPLETELY DIFFERENT cover letter: different opening, different ")
		b.WriteString("structure, different examples from the CV, and different phrasing throughout. ")
		b.WriteString("Do not reuse sentences or paragraph ordering from the previous letter.\n\n")
	}

	b.WriteString("CV/Resume Content:\n")
	b.WriteString(extraction.Text)
	b.WriteString("\n\nJob Information:\n")
	fmt.Fprintf(&b, "- Position: %s\n", req.JobTitle)
	fmt.Fprintf(&b, "- Company: %s\n", req.Company)
	fmt.Fprintf(&b, "- Location: %s\n", orDefault(req.Location, "Not specified"))
	fmt.Fprintf(&b, "- Job Description: %s\n", req.JobDescription)

	b.WriteString("\nRequirements:\n")
	fmt.Fprintf(&b, "- Tone: %s\n", req.Tone)
	fmt.Fprintf(&b, "- Letter Length: %s\n", req.LetterLength)
	fmt.Fprintf(&b, "- Industry Approach: %s\n", req.Industry)
	focus := "General strengths"
	if len(req.FocusAreas) > 0 {
		focus = strings.Join(req.FocusAreas, ", ")
	}
	fmt.Fprintf(&b, "- Focus Areas: %s\n", focus)

	b.WriteString(`
Rules:
- Reference concrete facts from the CV: actual job titles, employers, quantifiable results, and education. Do not invent any.
- Avoid generic claims that could apply to anyone.
  Good: "At Acme Corp I reduced deployment time by 40% as lead platform engineer."
  Bad: "I am a hard-working team player with great communication skills."
- Address specific requirements from the job description.
- Use proper business letter format.
`)

	b.WriteString("\nFormat: start the letter with \"Dear Hiring Manager,\" and close with \"Sincerely, [Candidate Name]\".\n")
	b.WriteString("If the CV content above looks like an extraction failure notice rather than a resume, say so plainly in one sentence before the letter.\n")

	return b.String()
}

// Params returns the decoding parameters for the completion call.
// Temperature depends on tone and regeneration mode, the output cap on
// letter length only, and the repetition penalties on regeneration mode only
// (raised under regeneration to force divergence from the previous letter).
func Params(req domain.GenerationRequest) domain.DecodingParams {
	p := domain.DecodingParams{
		Temperature:      temperature(req.Tone, req.Regenerate),
		MaxTokens:        maxTokens(req.LetterLength),
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.2,
	}
	if req.Regenerate {
		p.PresencePenalty = 0.3
		p.FrequencyPenalty = 0.4
	}
	return p
}

func temperature(tone string, regenerate bool) float64 {
	switch tone {
	case domain.ToneConfident:
		if regenerate {
			return 0.9
		}
		return 0.8
	case domain.ToneConversational:
		if regenerate {
			return 0.8
		}
		return 0.7
	case domain.ToneHumble:
		if regenerate {
			return 0.6
		}
		return 0.4
	default:
		if regenerate {
			return 0.7
		}
		return 0.5
	}
}

func maxTokens(length string) int {
	switch length {
	case domain.LengthConcise:
		return 600
	case domain.LengthDetailed:
		return 1200
	default:
		return 900
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
