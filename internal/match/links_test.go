package match

import (
	"testing"

	"github.com/hometrackerhq/hometracker/internal/storage"
)

func TestReceiptToWarrantyLink(t *testing.T) {
	docs := []storage.Document{
		{
			ID: "doc_receipt", Category: storage.DocReceipt,
			ExtractedJSON: `{"receipt":{"vendor_name":"ABC Plumbing","date":"2024-01-15"}}`,
		},
		{
			ID: "doc_warranty", Category: storage.DocWarranty,
			ExtractedJSON: `{"warranty":{"provider":"ABC Plumbing","start_date":"2024-01-20"}}`,
		},
	}

	got := SuggestDocumentLinks(docs)
	if len(got) != 1 {
		t.Fatalf("got %d links, want 1: %+v", len(got), got)
	}

	link := got[0]
	if link.LinkType != "receipt_to_warranty" {
		t.Errorf("LinkType = %q", link.LinkType)
	}
	if link.SourceID != "doc_receipt" || link.TargetID != "doc_warranty" {
		t.Errorf("link endpoints = %s -> %s", link.SourceID, link.TargetID)
	}
	// Vendor overlap plus a 5-day date gap clears the threshold.
	if link.Confidence <= 0.5 {
		t.Errorf("confidence = %v, want > 0.5", link.Confidence)
	}
}

func TestDateGapTooWideDropsSignal(t *testing.T) {
	docs := []storage.Document{
		{
			ID: "doc_receipt", Category: storage.DocReceipt,
			ExtractedJSON: `{"receipt":{"vendor_name":"ABC Plumbing","date":"2024-01-15"}}`,
		},
		{
			ID: "doc_warranty", Category: storage.DocWarranty,
			ExtractedJSON: `{"warranty":{"provider":"ABC Plumbing","start_date":"2024-06-01"}}`,
		},
	}

	got := SuggestDocumentLinks(docs)
	// Vendor signal alone is 0.4, below the inclusion threshold.
	if len(got) != 0 {
		t.Errorf("got %d links, want 0: %+v", len(got), got)
	}
}

func TestConfidenceCappedAtOne(t *testing.T) {
	docs := []storage.Document{
		{
			ID: "doc_receipt", Category: storage.DocReceipt,
			ExtractedJSON: `{"receipt":{"vendor_name":"LG Store","date":"2024-01-15"},"items":[{"name":"Washing machine"}]}`,
		},
		{
			ID: "doc_warranty", Category: storage.DocWarranty,
			ExtractedJSON: `{"warranty":{"provider":"LG Store","item_name":"Washing machine","start_date":"2024-01-15"}}`,
		},
	}

	got := SuggestDocumentLinks(docs)
	if len(got) != 1 {
		t.Fatalf("got %d links, want 1", len(got))
	}
	if got[0].Confidence != 1.0 {
		t.Errorf("confidence = %v, want capped at 1.0", got[0].Confidence)
	}
}

func TestInvoiceLinksOnlyUnrelatedDocuments(t *testing.T) {
	docs := []storage.Document{
		{
			ID: "doc_invoice", Category: storage.DocInvoice,
			ExtractedJSON: `{"vendor":{"name":"Roof Pros"},"receipt":{"date":"2024-03-01"}}`,
		},
		{
			ID: "doc_linked", Category: storage.DocOther, RelatedTo: "proj_1",
			ExtractedJSON: `{"vendor":{"name":"Roof Pros"},"receipt":{"date":"2024-03-05"}}`,
		},
		{
			ID: "doc_unlinked", Category: storage.DocOther,
			ExtractedJSON: `{"vendor":{"name":"Roof Pros"},"receipt":{"date":"2024-03-05"}}`,
		},
	}

	got := SuggestDocumentLinks(docs)
	if len(got) != 1 {
		t.Fatalf("got %d links, want 1: %+v", len(got), got)
	}
	if got[0].TargetID != "doc_unlinked" || got[0].LinkType != "invoice_link" {
		t.Errorf("link = %+v, want invoice_link to doc_unlinked", got[0])
	}
}

func TestDocumentsWithoutExtractionSkipped(t *testing.T) {
	docs := []storage.Document{
		{ID: "doc_1", Category: storage.DocReceipt},
		{ID: "doc_2", Category: storage.DocWarranty, ExtractedJSON: "not json"},
	}
	if got := SuggestDocumentLinks(docs); len(got) != 0 {
		t.Errorf("got %d links, want 0", len(got))
	}
}
