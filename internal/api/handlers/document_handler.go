package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/paperdeck/paperdeck/internal/api/middlewares"
	"github.com/paperdeck/paperdeck/internal/models"
	"github.com/paperdeck/paperdeck/internal/services/analyzer"
	"github.com/paperdeck/paperdeck/internal/services/documents"
)

const maxUploadBytes = 52 << 20

type DocumentHandler struct {
	docs     *documents.Service
	analyzer *analyzer.Analyzer
}

func NewDocumentHandler(docs *documents.Service, a *analyzer.Analyzer) *DocumentHandler {
	return &DocumentHandler{docs: docs, analyzer: a}
}

// Upload stores the file and records the document as pending. Analysis is a
// separate explicit request.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Strip any path components from the client-supplied name.
	filename := filepath.Base(header.Filename)

	doc, err := h.docs.UploadAndCreate(r.Context(), userID, filename, contentType, data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docs, err := h.docs.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not list documents")
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	respondJSON(w, http.StatusOK, docs)
}

// Analyze queues the document for analysis. A document already being
// analyzed is reported as a conflict rather than queued twice.
func (h *DocumentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	doc, err := h.docs.GetOwned(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}

	started, err := h.analyzer.TryStart(r.Context(), doc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not start analysis")
		return
	}
	if !started {
		respondError(w, http.StatusConflict, "Document is already being analyzed")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "Analysis started",
		"status":  models.StatusAnalyzing,
	})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.docs.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, documents.ErrNotOwner), errors.Is(err, documents.ErrNotFound):
		respondError(w, http.StatusNotFound, "document not found")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "could not delete document")
	default:
		respondJSON(w, http.StatusOK, map[string]string{"message": "Document deleted"})
	}
}
