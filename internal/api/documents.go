package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hometrackerhq/hometracker/internal/ingest"
	"github.com/hometrackerhq/hometracker/internal/match"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

func registerDocumentRoutes(r chi.Router, deps AppDeps) {
	r.Get("/documents", handleListDocuments(deps))
	r.Post("/documents", handleUploadDocument(deps))
	r.Get("/documents/{id}", handleGetDocument(deps))
	r.Delete("/documents/{id}", handleDeleteDocument(deps))
	r.Get("/documents/{id}/suggestions", handleDocumentSuggestions(deps))
	r.Post("/documents/{id}/link", handleLinkDocument(deps))
}

type uploadDocumentRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	ContentType string `json:"content_type"`
	// Content is the upload body: base64 for binary content types,
	// plain text for text/*.
	Content     string `json:"content"`
	RelatedTo   string `json:"related_to"`
	RelatedType string `json:"related_type"`
}

func handleUploadDocument(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBodySize)
		defer r.Body.Close()

		var req uploadDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if req.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}
		if req.Content == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
			return
		}
		if req.ContentType == "" {
			req.ContentType = "text/plain"
		}

		var data []byte
		if strings.HasPrefix(req.ContentType, "text/") || req.ContentType == "application/json" {
			data = []byte(req.Content)
		} else {
			decoded, err := base64.StdEncoding.DecodeString(req.Content)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid base64 content")
				return
			}
			data = decoded
		}

		doc := storage.Document{
			ID:          uuid.New().String(),
			Name:        req.Name,
			Category:    storage.DocumentCategory(req.Category),
			RelatedTo:   req.RelatedTo,
			RelatedType: req.RelatedType,
			ContentType: req.ContentType,
			Data:        data,
			UploadDate:  time.Now().UTC(),
		}
		if err := deps.Store.SaveDocument(doc); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save document: %v", err)
			return
		}

		payload, err := ingest.NewExtractJob(doc.ID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create job payload: %v", err)
			return
		}
		job := storage.Job{
			ID:          uuid.New().String(),
			Type:        ingest.JobTypeDocumentExtract,
			PayloadJSON: payload,
		}
		if err := deps.Store.EnqueueJob(job); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to enqueue job: %v", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]string{
			"id":     doc.ID,
			"status": "queued",
		})
	}
}

func handleListDocuments(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 50, 200)
		docs, err := deps.Store.ListDocuments(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list documents: %v", err)
			return
		}
		if docs == nil {
			docs = []storage.Document{}
		}
		writeJSON(w, docs)
	}
}

func handleGetDocument(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := deps.Store.GetDocument(chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err, "document")
			return
		}
		writeJSON(w, doc)
	}
}

func handleDeleteDocument(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteDocument(chi.URLParam(r, "id")); err != nil {
			writeStoreError(w, err, "document")
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

type documentSuggestions struct {
	Matches json.RawMessage        `json:"matches"`
	Links   []match.LinkSuggestion `json:"links"`
}

// handleDocumentSuggestions returns the stored match suggestions from the
// ingest worker plus document link suggestions computed on the fly.
func handleDocumentSuggestions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		doc, err := deps.Store.GetDocument(id)
		if err != nil {
			writeStoreError(w, err, "document")
			return
		}

		matches := json.RawMessage("[]")
		if doc.SuggestionsJSON != "" {
			matches = json.RawMessage(doc.SuggestionsJSON)
		}

		docs, err := deps.Store.ListDocuments(200)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list documents: %v", err)
			return
		}

		var links []match.LinkSuggestion
		for _, l := range match.SuggestDocumentLinks(docs) {
			if l.SourceID == id {
				links = append(links, l)
			}
		}
		if links == nil {
			links = []match.LinkSuggestion{}
		}

		writeJSON(w, documentSuggestions{Matches: matches, Links: links})
	}
}

type linkDocumentRequest struct {
	RelatedTo   string `json:"related_to"`
	RelatedType string `json:"related_type"`
}

func handleLinkDocument(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req linkDocumentRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.RelatedTo == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "related_to is required")
			return
		}
		id := chi.URLParam(r, "id")
		if err := deps.Store.SetDocumentRelation(id, req.RelatedTo, req.RelatedType); err != nil {
			writeStoreError(w, err, "document")
			return
		}
		writeJSON(w, map[string]string{"status": "linked"})
	}
}
