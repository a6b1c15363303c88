// Package httpserver contains HTTP handlers and middleware.
//
// It exposes the cover-letter generation endpoint plus health, readiness
// and metrics surfaces, keeping HTTP concerns out of the business logic.
package httpserver

import (
	"encoding/json"
	"net/http"
)

type generateResponse struct {
	CoverLetter string     `json:"coverLetter"`
	CVAnalysis  cvAnalysis `json:"cvAnalysis"`
}

type cvAnalysis struct {
	ExtractionSuccess bool   `json:"extractionSuccess"`
	Message           string `json:"message"`
	WordCount         int    `json:"wordCount"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMissingFields(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required fields"})
}

func writeGenerateFailure(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "Failed to generate cover letter",
		Details: err.Error(),
	})
}
