package match

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/hometrackerhq/hometracker/internal/extraction"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

// Document-link signal weights. Signals are independent and additive, capped
// at 1.0.
const (
	linkVendorSignal = 0.4
	linkItemSignal   = 0.3
	linkDateSignal   = 0.3

	dateProximityDays = 30
)

// LinkSuggestion proposes relating two documents to each other.
type LinkSuggestion struct {
	SourceID   string  `json:"source_id"`
	TargetID   string  `json:"target_id"`
	LinkType   string  `json:"link_type"` // "receipt_to_warranty" or "invoice_link"
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// docFacts is the extraction-derived view of one document used for linking.
type docFacts struct {
	doc      storage.Document
	vendor   string   // receipt vendor or extracted vendor name
	provider string   // warranty provider
	date     string   // receipt date or warranty start date, YYYY-MM-DD
	items    []string // extracted item names plus warranty item name
}

// SuggestDocumentLinks runs a document-to-document heuristic pass over the
// given set: receipts are linked to warranty documents, invoices to documents
// that have no relation yet. Documents without usable extraction data are
// skipped.
func SuggestDocumentLinks(docs []storage.Document) []LinkSuggestion {
	facts := make([]docFacts, 0, len(docs))
	for _, d := range docs {
		if f, ok := deriveFacts(d); ok {
			facts = append(facts, f)
		}
	}

	var out []LinkSuggestion
	for _, src := range facts {
		for _, dst := range facts {
			if src.doc.ID == dst.doc.ID {
				continue
			}

			var linkType string
			switch {
			case src.doc.Category == storage.DocReceipt && dst.doc.Category == storage.DocWarranty:
				linkType = "receipt_to_warranty"
			case src.doc.Category == storage.DocInvoice && dst.doc.RelatedTo == "":
				linkType = "invoice_link"
			default:
				continue
			}

			score, reasons := scoreLink(src, dst)
			if score > inclusionThreshold {
				out = append(out, LinkSuggestion{
					SourceID:   src.doc.ID,
					TargetID:   dst.doc.ID,
					LinkType:   linkType,
					Confidence: score,
					Reason:     strings.Join(reasons, ", "),
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

func deriveFacts(d storage.Document) (docFacts, bool) {
	if d.ExtractedJSON == "" {
		return docFacts{}, false
	}
	var data extraction.ExtractedData
	if err := json.Unmarshal([]byte(d.ExtractedJSON), &data); err != nil {
		return docFacts{}, false
	}

	f := docFacts{doc: d}
	if data.Vendor != nil {
		f.vendor = data.Vendor.Name
	}
	if data.Receipt != nil {
		if data.Receipt.VendorName != "" {
			f.vendor = data.Receipt.VendorName
		}
		f.date = data.Receipt.Date
	}
	if data.Warranty != nil {
		f.provider = data.Warranty.Provider
		if f.date == "" {
			f.date = data.Warranty.StartDate
		}
		if data.Warranty.ItemName != "" {
			f.items = append(f.items, data.Warranty.ItemName)
		}
	}
	for _, item := range data.Items {
		f.items = append(f.items, item.Name)
	}

	if f.vendor == "" && f.provider == "" && f.date == "" && len(f.items) == 0 {
		return docFacts{}, false
	}
	return f, true
}

// scoreLink sums the independent overlap signals between two documents.
func scoreLink(src, dst docFacts) (float64, []string) {
	var score float64
	var reasons []string

	srcName := firstNonEmpty(src.vendor, src.provider)
	dstName := firstNonEmpty(dst.provider, dst.vendor)
	if nameOverlap(srcName, dstName) {
		score += linkVendorSignal
		reasons = append(reasons, "vendor")
	}

	if itemOverlap(src.items, dst.items) {
		score += linkItemSignal
		reasons = append(reasons, "items")
	}

	if withinDays(src.date, dst.date, dateProximityDays) {
		score += linkDateSignal
		reasons = append(reasons, "date")
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, reasons
}

func nameOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func itemOverlap(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if nameOverlap(x, y) {
				return true
			}
		}
	}
	return false
}

func withinDays(a, b string, days int) bool {
	ta, err := time.Parse("2006-01-02", a)
	if err != nil {
		return false
	}
	tb, err := time.Parse("2006-01-02", b)
	if err != nil {
		return false
	}
	diff := ta.Sub(tb)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
