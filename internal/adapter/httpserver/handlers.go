package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/lettersmith/ai-cover-letter/internal/config"
	"github.com/lettersmith/ai-cover-letter/internal/domain"
)

// Generator produces a cover letter for one decoded request.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GeneratedLetter, domain.CVAnalysis, error)
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg     config.Config
	Letters Generator
	AICheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, letters Generator, aiCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Letters: letters, AICheck: aiCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// generateFields are the required text fields of the generation form. Tone,
// length and industry are required but deliberately not constrained to an
// enum: unknown values fall through to the default decoding parameters.
type generateFields struct {
	JobTitle       string `validate:"required,max=300"`
	Company        string `validate:"required,max=300"`
	JobDescription string `validate:"required,max=20000"`
	Tone           string `validate:"required,max=50"`
	LetterLength   string `validate:"required,max=50"`
	Industry       string `validate:"required,max=50"`
}

// GenerateHandler handles the multipart cover-letter generation request.
func (s *Server) GenerateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Expected multipart/form-data request"})
			return
		}

		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
					Error:   "Payload too large",
					Details: fmt.Sprintf("maximum upload size is %d MB", s.Cfg.MaxUploadMB),
				})
				return
			}
			writeMissingFields(w)
			return
		}

		cvFile, cvHeader, err := r.FormFile("cv")
		if err != nil {
			writeMissingFields(w)
			return
		}
		defer func() { _ = cvFile.Close() }()
		cvBytes, err := io.ReadAll(cvFile)
		if err != nil || len(cvBytes) == 0 {
			writeMissingFields(w)
			return
		}

		fields := generateFields{
			JobTitle:       strings.TrimSpace(r.FormValue("jobTitle")),
			Company:        strings.TrimSpace(r.FormValue("company")),
			JobDescription: strings.TrimSpace(r.FormValue("jobDescription")),
			Tone:           strings.TrimSpace(r.FormValue("tone")),
			LetterLength:   strings.TrimSpace(r.FormValue("letterLength")),
			Industry:       strings.TrimSpace(r.FormValue("industry")),
		}
		if err := getValidator().Struct(fields); err != nil {
			writeMissingFields(w)
			return
		}

		// Content sniffing: the extractor only understands PDF payloads.
		if mt := mimetype.Detect(cvBytes); !mt.Is("application/pdf") {
			writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{
				Error:   "Unsupported media type",
				Details: fmt.Sprintf("expected application/pdf, got %s", mt.String()),
			})
			return
		}

		req := domain.GenerationRequest{
			CVFileName:     cvHeader.Filename,
			CVData:         cvBytes,
			JobTitle:       fields.JobTitle,
			Company:        fields.Company,
			Location:       strings.TrimSpace(r.FormValue("location")),
			JobDescription: fields.JobDescription,
			Tone:           fields.Tone,
			FocusAreas:     parseFocusAreas(r.FormValue("focusAreas")),
			LetterLength:   fields.LetterLength,
			Industry:       fields.Industry,
			Regenerate:     r.FormValue("regenerate") == "true",
			PreviousLetter: r.FormValue("previousLetter"),
		}

		letter, analysis, err := s.Letters.Generate(r.Context(), req)
		if err != nil {
			LoggerFrom(r).Error("generation failed", "error", err)
			writeGenerateFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, generateResponse{
			CoverLetter: letter.Processed,
			CVAnalysis: cvAnalysis{
				ExtractionSuccess: analysis.ExtractionSuccess,
				Message:           analysis.Message,
				WordCount:         analysis.WordCount,
			},
		})
	}
}

// parseFocusAreas decodes the JSON-encoded focusAreas field, defaulting to
// an empty set on absence or parse failure.
func parseFocusAreas(raw string) []string {
	if raw == "" {
		return nil
	}
	var areas []string
	if err := json.Unmarshal([]byte(raw), &areas); err != nil {
		return nil
	}
	return areas
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler probes the completion endpoint.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 1)
		if s.AICheck != nil {
			if err := s.AICheck(ctx); err != nil {
				checks = append(checks, check{Name: "completion_endpoint", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "completion_endpoint", OK: true})
			}
		}
		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
