package domain

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUpstream        = errors.New("upstream error")
	ErrInternal        = errors.New("internal error")
)

// UpstreamStatusError reports a non-success HTTP status from the completion
// endpoint. It matches ErrUpstream under errors.Is.
type UpstreamStatusError struct {
	Status int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("completion endpoint status %d", e.Status)
}

// Is reports whether the target is the ErrUpstream sentinel.
func (e *UpstreamStatusError) Is(target error) bool { return target == ErrUpstream }

// Tone enumerates the supported letter tones.
const (
	ToneProfessional   = "professional"
	ToneConversational = "conversational"
	ToneConfident      = "confident"
	ToneHumble         = "humble"
)

// LetterLength enumerates the supported letter lengths.
const (
	LengthConcise  = "concise"
	LengthStandard = "standard"
	LengthDetailed = "detailed"
)

// Industry enumerates the supported industry framings.
const (
	IndustryTech      = "tech"
	IndustryFinance   = "finance"
	IndustryHealth    = "healthcare"
	IndustryMarketing = "marketing"
	IndustryNonprofit = "nonprofit"
	IndustryGeneric   = "generic"
)

// GenerationRequest carries one decoded cover-letter request through the
// pipeline. All fields except Location, FocusAreas, Regenerate and
// PreviousLetter are required; PreviousLetter is required semantically when
// Regenerate is true.
type GenerationRequest struct {
	CVFileName     string
	CVData         []byte
	JobTitle       string
	Company        string
	Location       string
	JobDescription string
	Tone           string
	FocusAreas     []string
	LetterLength   string
	Industry       string
	Regenerate     bool
	PreviousLetter string
}

// ExtractionStatus tags the outcome of CV text extraction.
type ExtractionStatus string

const (
	ExtractionSuccess  ExtractionStatus = "success"
	ExtractionDegraded ExtractionStatus = "degraded"
	ExtractionFailed   ExtractionStatus = "failed"
)

// ExtractionMethod names the extraction path that produced the text.
type ExtractionMethod string

const (
	MethodVisionCompletion ExtractionMethod = "vision-completion"
	MethodByteHeuristic    ExtractionMethod = "byte-heuristic"
	MethodNone             ExtractionMethod = "none"
)

// ExtractionResult is the tagged outcome of the Text Extractor. A Failed
// result still carries a sentinel Text so the assembled prompt can state the
// failure to the model instead of aborting the request.
type ExtractionResult struct {
	Status ExtractionStatus
	Method ExtractionMethod
	Text   string
	Reason string
}

// Usable reports whether the extracted text represents real CV content.
func (r ExtractionResult) Usable() bool { return r.Status != ExtractionFailed }

// ValidationVerdict is the Content Validator's heuristic confidence signal.
// It never blocks generation.
type ValidationVerdict struct {
	Valid     bool
	Message   string
	WordCount int
}

// GeneratedLetter holds the completion endpoint's raw output and the
// display-ready text after post-processing.
type GeneratedLetter struct {
	Raw       string
	Processed string
}

// CVAnalysis is the extraction diagnostics block returned to the caller.
type CVAnalysis struct {
	ExtractionSuccess bool   `json:"extractionSuccess"`
	Message           string `json:"message"`
	WordCount         int    `json:"wordCount"`
}

// DecodingParams are the completion endpoint knobs selected by the Prompt
// Assembler from tone, length, and regeneration mode.
type DecodingParams struct {
	Temperature      float64
	MaxTokens        int
	PresencePenalty  float64
	FrequencyPenalty float64
}

// CompletionRequest is a text-only chat completion call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Params       DecodingParams
}

// FileCompletionRequest is a multimodal completion call carrying a binary
// file alongside the instruction prompt.
type FileCompletionRequest struct {
	Prompt    string
	FileName  string
	FileData  []byte
	MaxTokens int
}

// CompletionClient (port)
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	CompleteWithFile(ctx context.Context, req FileCompletionRequest) (string, error)
}

// TextExtractor (port)
// Extract never returns an error: every failure path degrades to a tagged
// Failed result so the pipeline can proceed on job-description context alone.
type TextExtractor interface {
	Extract(ctx context.Context, fileName string, data []byte) ExtractionResult
}
