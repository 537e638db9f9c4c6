// Package ingest processes uploaded documents asynchronously: text recovery,
// structured extraction, and match suggestions, driven by the SQLite job
// queue.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hometrackerhq/hometracker/internal/extraction"
	"github.com/hometrackerhq/hometracker/internal/match"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

// JobTypeDocumentExtract is the queue type this worker claims.
const JobTypeDocumentExtract = "document_extract"

// DocumentStore abstracts the job queue and document operations.
type DocumentStore interface {
	ClaimNextJob(types []string) (*storage.Job, error)
	CompleteJob(id string) error
	FailJob(id string, errMsg string) error
	GetDocument(id string) (storage.Document, error)
	GetDocumentData(id string) ([]byte, error)
	SetDocumentOCRStatus(id string, status storage.OCRStatus) error
	SetDocumentOCRResult(id, ocrText string, status storage.OCRStatus) error
	SetDocumentExtraction(id, extractedJSON, suggestionsJSON string) error
}

// Extractor turns recovered text into candidate records.
type Extractor interface {
	Extract(ctx context.Context, ocrText string) extraction.Result
}

// Matcher links extracted records to existing collection entries.
type Matcher interface {
	FindMatches(data extraction.ExtractedData) ([]match.Suggestion, error)
}

// Worker processes document_extract jobs from the SQLite job queue.
type Worker struct {
	store     DocumentStore
	extractor Extractor
	matcher   Matcher
	poll      time.Duration
	logger    *slog.Logger
}

// NewWorker creates a Worker with the given dependencies.
// If pollInterval is <= 0, it defaults to 500ms.
func NewWorker(store DocumentStore, extractor Extractor, matcher Matcher, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Worker{
		store:     store,
		extractor: extractor,
		matcher:   matcher,
		poll:      pollInterval,
		logger:    slog.Default(),
	}
}

// Run polls for jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		done, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error("worker iteration failed", "error", err)
		}
		if done {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce claims and processes a single document_extract job.
// Returns true if a job was processed (regardless of success/failure).
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.store.ClaimNextJob([]string{JobTypeDocumentExtract})
	if err != nil {
		return false, fmt.Errorf("claiming job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	if err := w.processJob(ctx, job); err != nil {
		w.logger.Warn("job failed", "job_id", job.ID, "error", err)
		if failErr := w.store.FailJob(job.ID, err.Error()); failErr != nil {
			w.logger.Error("failed to mark job as failed", "job_id", job.ID, "error", failErr)
		}
		return true, nil
	}

	if err := w.store.CompleteJob(job.ID); err != nil {
		return true, fmt.Errorf("completing job %s: %w", job.ID, err)
	}
	return true, nil
}

type extractPayload struct {
	DocumentID string `json:"document_id"`
}

// NewExtractJob builds the queue payload for a freshly uploaded document.
func NewExtractJob(documentID string) (string, error) {
	b, err := json.Marshal(extractPayload{DocumentID: documentID})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (w *Worker) processJob(ctx context.Context, job *storage.Job) error {
	var payload extractPayload
	if err := json.Unmarshal([]byte(job.PayloadJSON), &payload); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	doc, err := w.store.GetDocument(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("loading document %s: %w", payload.DocumentID, err)
	}

	// Photos carry no recoverable text; mark them and stop.
	if strings.HasPrefix(doc.ContentType, "image/") {
		if err := w.store.SetDocumentOCRStatus(doc.ID, storage.OCRNotApplicable); err != nil {
			return fmt.Errorf("marking document %s not applicable: %w", doc.ID, err)
		}
		return nil
	}

	if err := w.store.SetDocumentOCRStatus(doc.ID, storage.OCRProcessing); err != nil {
		return fmt.Errorf("marking document %s processing: %w", doc.ID, err)
	}

	data, err := w.store.GetDocumentData(doc.ID)
	if err != nil {
		return fmt.Errorf("loading document data %s: %w", doc.ID, err)
	}

	text, err := RecoverText(doc.ContentType, data)
	if err != nil {
		if statusErr := w.store.SetDocumentOCRResult(doc.ID, "", storage.OCRFailed); statusErr != nil {
			w.logger.Error("failed to mark text recovery failure", "document_id", doc.ID, "error", statusErr)
		}
		return fmt.Errorf("recovering text from %s: %w", doc.ID, err)
	}

	if err := w.store.SetDocumentOCRResult(doc.ID, text, storage.OCRCompleted); err != nil {
		return fmt.Errorf("saving recovered text for %s: %w", doc.ID, err)
	}

	res := w.extractor.Extract(ctx, text)
	if !res.Success {
		return fmt.Errorf("extracting from %s: %s", doc.ID, res.Error)
	}

	extractedJSON, err := json.Marshal(res.Data)
	if err != nil {
		return fmt.Errorf("marshalling extraction for %s: %w", doc.ID, err)
	}

	suggestions, err := w.matcher.FindMatches(*res.Data)
	if err != nil {
		return fmt.Errorf("matching extraction for %s: %w", doc.ID, err)
	}
	suggestionsJSON, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("marshalling suggestions for %s: %w", doc.ID, err)
	}

	if err := w.store.SetDocumentExtraction(doc.ID, string(extractedJSON), string(suggestionsJSON)); err != nil {
		return fmt.Errorf("saving extraction for %s: %w", doc.ID, err)
	}
	return nil
}
