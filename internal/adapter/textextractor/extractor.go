// Package textextractor produces a best-effort plain-text transcription of an
// uploaded PDF CV.
//
// Extraction is two-tier: the primary path sends the raw bytes to the
// multimodal completion endpoint asking for a verbatim transcription; the
// fallback scans the raw bytes for parenthesized runs, which recovers the
// text-showing operators of an uncompressed PDF content stream. Neither tier
// raising an error aborts the request — a letter can still be generated from
// the job-description context alone.
package textextractor

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lettersmith/ai-cover-letter/internal/adapter/observability"
	"github.com/lettersmith/ai-cover-letter/internal/domain"
	"github.com/lettersmith/ai-cover-letter/pkg/textx"
)

// minTextLen is the minimum accepted transcription length; anything shorter
// is treated as a miss and the next tier is attempted.
const minTextLen = 100

// visionMaxTokens caps the transcription call's output.
const visionMaxTokens = 4000

const visionPrompt = `Extract ALL text content from this resume/CV document verbatim. ` +
	`Include every section: contact information, professional summary, work history ` +
	`with employers and dates, education, skills, certifications, and projects. ` +
	`Preserve the original wording exactly. Output only the extracted text.`

// parenRun matches parenthesized substrings in a PDF content stream.
var parenRun = regexp.MustCompile(`\(([^()]+)\)`)

// Extractor implements domain.TextExtractor on top of a completion client.
type Extractor struct {
	ai domain.CompletionClient
}

// New constructs an Extractor backed by the given completion client.
func New(ai domain.CompletionClient) *Extractor {
	return &Extractor{ai: ai}
}

// Extract returns a tagged extraction result and never an error. A primary
// hit is Success, a fallback hit is Degraded, and exhaustion is Failed with
// a sentinel text naming the file so the prompt can state the failure.
func (e *Extractor) Extract(ctx context.Context, fileName string, data []byte) domain.ExtractionResult {
	primaryErrored := false

	text, err := e.ai.CompleteWithFile(ctx, domain.FileCompletionRequest{
		Prompt:    visionPrompt,
		FileName:  fileName,
		FileData:  data,
		MaxTokens: visionMaxTokens,
	})
	if err != nil {
		primaryErrored = true
		slog.Warn("vision extraction errored, trying byte heuristic",
			slog.String("file", fileName),
			slog.Any("error", err))
	} else if text = textx.SanitizeText(text); len(text) > minTextLen {
		observability.ObserveExtraction(string(domain.MethodVisionCompletion), string(domain.ExtractionSuccess))
		return domain.ExtractionResult{
			Status: domain.ExtractionSuccess,
			Method: domain.MethodVisionCompletion,
			Text:   text,
		}
	} else {
		slog.Debug("vision extraction below minimum length",
			slog.String("file", fileName),
			slog.Int("length", len(text)))
	}

	if fb := scanContentStream(data); len(fb) > minTextLen {
		observability.ObserveExtraction(string(domain.MethodByteHeuristic), string(domain.ExtractionDegraded))
		return domain.ExtractionResult{
			Status: domain.ExtractionDegraded,
			Method: domain.MethodByteHeuristic,
			Text:   fb,
			Reason: "vision transcription unavailable; recovered text from uncompressed content stream",
		}
	}

	observability.ObserveExtraction(string(domain.MethodNone), string(domain.ExtractionFailed))
	sentinel := "EXTRACTION_FAILED: " + fileName
	reason := "both extraction methods produced no usable text"
	if primaryErrored {
		sentinel = "EXTRACTION_ERROR: " + fileName
		reason = "vision transcription call errored and the byte heuristic produced no usable text"
	}
	slog.Warn("cv extraction exhausted",
		slog.String("file", fileName),
		slog.Bool("primary_errored", primaryErrored))
	return domain.ExtractionResult{
		Status: domain.ExtractionFailed,
		Method: domain.MethodNone,
		Text:   sentinel,
		Reason: reason,
	}
}

// scanContentStream decodes the payload leniently and concatenates
// parenthesized runs longer than two characters that contain a letter.
// This only recovers text from PDFs with uncompressed content streams.
func scanContentStream(data []byte) string {
	decoded := strings.ToValidUTF8(string(data), "")
	matches := parenRun.FindAllStringSubmatch(decoded, -1)
	var parts []string
	for _, m := range matches {
		run := m[1]
		if len(run) > 2 && textx.ContainsLetter(run) {
			parts = append(parts, run)
		}
	}
	return textx.CollapseWhitespace(strings.Join(parts, " "))
}
