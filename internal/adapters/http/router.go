// Package httpadapter exposes the claim pipeline over HTTP. A submission is
// one multipart POST carrying every document of the claim; the response is
// the full adjudication record.
package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/clearclaim/claims-engine/internal/core/domain"
	"github.com/clearclaim/claims-engine/internal/core/ports"
)

// maxSubmissionBytes bounds the in-memory multipart parse.
const maxSubmissionBytes = 64 << 20

type Router struct {
	processor      ports.ClaimProcessor
	metricsHandler http.Handler
}

func NewRouter(processor ports.ClaimProcessor, metricsHandler http.Handler) *Router {
	return &Router{
		processor:      processor,
		metricsHandler: metricsHandler,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/claims", rt.processClaim)
	if rt.metricsHandler != nil {
		mux.Handle("/metrics", rt.metricsHandler)
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) processClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'files' is required"})
		return
	}

	documents := make([]domain.RawDocument, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload: " + header.Filename})
			return
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload: " + header.Filename})
			return
		}
		documents = append(documents, domain.RawDocument{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Content:  content,
		})
	}

	result, err := rt.processor.Process(r.Context(), documents)
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away; nothing useful to write.
			return
		}
		status := http.StatusInternalServerError
		if domain.IsKind(err, domain.ErrEmptySubmission) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, claimResponse{
		SubmissionID: result.Submission.ID,
		Documents:    result.Submission.Documents,
		Validation:   result.Validation,
		Decision:     result.Decision,
		Summary:      result.Summary,
	})
}

type claimResponse struct {
	SubmissionID string                     `json:"submission_id"`
	Documents    []domain.ProcessedDocument `json:"documents"`
	Validation   domain.ValidationResult    `json:"validation"`
	Decision     domain.ClaimDecision       `json:"claim_decision"`
	Summary      domain.ProcessingSummary   `json:"processing_summary"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
