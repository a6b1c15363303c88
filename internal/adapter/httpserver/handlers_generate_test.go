package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lettersmith/ai-cover-letter/internal/config"
	"github.com/lettersmith/ai-cover-letter/internal/domain"
)

type stubGenerator struct {
	lastReq domain.GenerationRequest
	letter  domain.GeneratedLetter
	cv      domain.CVAnalysis
	err     error
}

func (s *stubGenerator) Generate(_ context.Context, req domain.GenerationRequest) (domain.GeneratedLetter, domain.CVAnalysis, error) {
	s.lastReq = req
	return s.letter, s.cv, s.err
}

func testCfg() config.Config {
	return config.Config{MaxUploadMB: 10}
}

type formOpts struct {
	omit    map[string]bool
	cvBytes []byte
	extra   map[string]string
}

func buildForm(t *testing.T, o formOpts) (*bytes.Buffer, string) {
	t.Helper()
	if o.cvBytes == nil {
		o.cvBytes = []byte("%PDF-1.4\nfake content")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if !o.omit["cv"] {
		fw, err := mw.CreateFormFile("cv", "cv.pdf")
		require.NoError(t, err)
		_, err = fw.Write(o.cvBytes)
		require.NoError(t, err)
	}
	fields := map[string]string{
		"jobTitle":       "Backend Engineer",
		"company":        "Acme",
		"jobDescription": "Build APIs in Go.",
		"tone":           "professional",
		"letterLength":   "standard",
		"industry":       "tech",
	}
	for k, v := range o.extra {
		fields[k] = v
	}
	for k, v := range fields {
		if o.omit[k] {
			continue
		}
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doGenerate(t *testing.T, gen Generator, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer(testCfg(), gen, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.GenerateHandler().ServeHTTP(rec, req)
	return rec
}

func TestGenerate_Success(t *testing.T) {
	gen := &stubGenerator{
		letter: domain.GeneratedLetter{Raw: "raw", Processed: "Dear Hiring Manager,\n\nBody.\n\nSincerely,\n[Candidate Name]"},
		cv:     domain.CVAnalysis{ExtractionSuccess: true, Message: "CV content looks valid (120 words extracted)", WordCount: 120},
	}
	body, ct := buildForm(t, formOpts{})
	rec := doGenerate(t, gen, body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		CoverLetter string `json:"coverLetter"`
		CVAnalysis  struct {
			ExtractionSuccess bool   `json:"extractionSuccess"`
			Message           string `json:"message"`
			WordCount         int    `json:"wordCount"`
		} `json:"cvAnalysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out.CoverLetter, "Dear Hiring Manager")
	assert.True(t, out.CVAnalysis.ExtractionSuccess)
	assert.Equal(t, 120, out.CVAnalysis.WordCount)
}

func TestGenerate_MissingFieldIs400(t *testing.T) {
	for _, field := range []string{"cv", "jobTitle", "company", "jobDescription", "tone", "letterLength", "industry"} {
		body, ct := buildForm(t, formOpts{omit: map[string]bool{field: true}})
		rec := doGenerate(t, &stubGenerator{}, body, ct)
		require.Equal(t, http.StatusBadRequest, rec.Code, "field %s", field)
		var out map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, "Missing required fields", out["error"], "field %s", field)
	}
}

func TestGenerate_LocationOptional(t *testing.T) {
	gen := &stubGenerator{letter: domain.GeneratedLetter{Processed: "x"}}
	body, ct := buildForm(t, formOpts{extra: map[string]string{"location": "Amsterdam"}})
	rec := doGenerate(t, gen, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Amsterdam", gen.lastReq.Location)

	body, ct = buildForm(t, formOpts{})
	rec = doGenerate(t, gen, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gen.lastReq.Location)
}

func TestGenerate_FocusAreasParsing(t *testing.T) {
	gen := &stubGenerator{letter: domain.GeneratedLetter{Processed: "x"}}

	body, ct := buildForm(t, formOpts{extra: map[string]string{"focusAreas": `["leadership","golang"]`}})
	rec := doGenerate(t, gen, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"leadership", "golang"}, gen.lastReq.FocusAreas)

	// Malformed JSON defaults to an empty set, not an error.
	body, ct = buildForm(t, formOpts{extra: map[string]string{"focusAreas": `not json`}})
	rec = doGenerate(t, gen, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gen.lastReq.FocusAreas)
}

func TestGenerate_RegenerateLiteralTrueOnly(t *testing.T) {
	gen := &stubGenerator{letter: domain.GeneratedLetter{Processed: "x"}}

	body, ct := buildForm(t, formOpts{extra: map[string]string{"regenerate": "true", "previousLetter": "old"}})
	rec := doGenerate(t, gen, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gen.lastReq.Regenerate)
	assert.Equal(t, "old", gen.lastReq.PreviousLetter)

	body, ct = buildForm(t, formOpts{extra: map[string]string{"regenerate": "TRUE"}})
	rec = doGenerate(t, gen, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gen.lastReq.Regenerate)
}

func TestGenerate_NonPDFIs415(t *testing.T) {
	body, ct := buildForm(t, formOpts{cvBytes: []byte("plain text resume, not a pdf")})
	rec := doGenerate(t, &stubGenerator{}, body, ct)
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Unsupported media type", out["error"])
}

func TestGenerate_NonMultipartIs400(t *testing.T) {
	srv := NewServer(testCfg(), &stubGenerator{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewBufferString(`{"jobTitle":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.GenerateHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_OversizeBodyIs413(t *testing.T) {
	big := bytes.Repeat([]byte("a"), 2*1024*1024)
	cv := append([]byte("%PDF-1.4\n"), big...)
	body, ct := buildForm(t, formOpts{cvBytes: cv})
	srv := NewServer(config.Config{MaxUploadMB: 1}, &stubGenerator{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.GenerateHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGenerate_UpstreamFailureIs500(t *testing.T) {
	gen := &stubGenerator{err: &domain.UpstreamStatusError{Status: 500}}
	body, ct := buildForm(t, formOpts{})
	rec := doGenerate(t, gen, body, ct)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Failed to generate cover letter", out["error"])
	assert.NotEmpty(t, out["details"])
	assert.NotContains(t, rec.Body.String(), "coverLetter")
}

func TestGenerate_WhitespaceOnlyFieldIsMissing(t *testing.T) {
	body, ct := buildForm(t, formOpts{extra: map[string]string{"jobTitle": "   "}})
	rec := doGenerate(t, &stubGenerator{}, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseFocusAreas(t *testing.T) {
	assert.Nil(t, parseFocusAreas(""))
	assert.Nil(t, parseFocusAreas("{broken"))
	assert.Equal(t, []string{"a"}, parseFocusAreas(`["a"]`))
}

func TestReadyz(t *testing.T) {
	okSrv := NewServer(testCfg(), &stubGenerator{}, func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	okSrv.ReadyzHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	badSrv := NewServer(testCfg(), &stubGenerator{}, func(context.Context) error { return errors.New("down") })
	rec = httptest.NewRecorder()
	badSrv.ReadyzHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "completion_endpoint")
}
