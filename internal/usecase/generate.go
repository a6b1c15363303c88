// Package usecase orchestrates the cover-letter generation pipeline.
package usecase

import (
	"context"
	"fmt"

	"github.com/lettersmith/ai-cover-letter/internal/adapter/observability"
	"github.com/lettersmith/ai-cover-letter/internal/domain"
	obsctx "github.com/lettersmith/ai-cover-letter/internal/observability"
	"github.com/lettersmith/ai-cover-letter/internal/service/cvcheck"
	"github.com/lettersmith/ai-cover-letter/internal/service/letter"
	"github.com/lettersmith/ai-cover-letter/internal/service/prompt"
)

// TokenEstimator reports the approximate token footprint of an assembled
// chat prompt. Estimates are diagnostic only and never gate a request.
type TokenEstimator interface {
	EstimateChatTokens(systemPrompt, userPrompt, model string) int
}

// GenerateService runs one request through extraction, validation, prompt
// assembly, completion, and post-processing.
type GenerateService struct {
	ai        domain.CompletionClient
	extractor domain.TextExtractor
	tokens    TokenEstimator
	chatModel string
}

func NewGenerateService(ai domain.CompletionClient, extractor domain.TextExtractor, tokens TokenEstimator, chatModel string) *GenerateService {
	return &GenerateService{ai: ai, extractor: extractor, tokens: tokens, chatModel: chatModel}
}

// Generate produces a display-ready cover letter plus the CV extraction
// diagnostics. Extraction and validation failures degrade the prompt rather
// than abort; only the completion call itself can fail the request.
func (s *GenerateService) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GeneratedLetter, domain.CVAnalysis, error) {
	log := obsctx.LoggerFromContext(ctx)

	extraction := s.extractor.Extract(ctx, req.CVFileName, req.CVData)
	verdict := cvcheck.Validate(extraction)
	log.Info("cv analyzed",
		"extraction_status", string(extraction.Status),
		"extraction_method", string(extraction.Method),
		"valid", verdict.Valid,
		"word_count", verdict.WordCount)

	systemPrompt := prompt.BuildSystem(verdict)
	userPrompt := prompt.BuildUser(req, extraction)
	params := prompt.Params(req)

	if s.tokens != nil {
		est := s.tokens.EstimateChatTokens(systemPrompt, userPrompt, s.chatModel)
		observability.ObservePromptTokens(est)
		log.Debug("prompt assembled",
			"estimated_tokens", est,
			"temperature", params.Temperature,
			"max_tokens", params.MaxTokens,
			"regenerate", req.Regenerate)
	}

	raw, err := s.ai.Complete(ctx, domain.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Params:       params,
	})
	if err != nil {
		return domain.GeneratedLetter{}, domain.CVAnalysis{}, fmt.Errorf("generate letter: %w", err)
	}

	processed := letter.Process(raw, verdict)
	observability.ObserveLetter(req.Regenerate)
	log.Info("letter generated", "raw_len", len(raw), "processed_len", len(processed))

	return domain.GeneratedLetter{Raw: raw, Processed: processed},
		domain.CVAnalysis{
			ExtractionSuccess: verdict.Valid,
			Message:           verdict.Message,
			WordCount:         verdict.WordCount,
		}, nil
}
