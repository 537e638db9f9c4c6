// Package match fuzzy-links extracted candidate records to existing
// collection entries, and documents to each other, using field-overlap
// heuristics.
package match

import (
	"strings"

	"github.com/hometrackerhq/hometracker/internal/extraction"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

// Scoring constants. Each scorer takes the max over its signals, so a serial
// hit wins over a model hit wins over a brand hit.
const (
	nameScore   = 0.8
	phoneScore  = 0.9
	brandScore  = 0.5
	modelScore  = 0.85
	serialScore = 0.95

	// Suggestions at or below this confidence are dropped.
	inclusionThreshold = 0.5
)

// Scorer computes a match confidence between an extracted candidate and an
// existing record, along with the names of the fields that matched. It is an
// interface so alternative strategies (edit distance, phonetic) can be
// swapped in without touching the suggester.
type Scorer interface {
	ScoreVendor(candidate extraction.VendorData, existing storage.Vendor) (float64, []string)
	ScoreItem(candidate extraction.ItemData, existing storage.InventoryItem) (float64, []string)
}

// HeuristicScorer is the default field-overlap strategy.
type HeuristicScorer struct{}

// ScoreVendor matches on name containment in either direction and on
// normalized phone digits, keeping the strongest signal.
func (HeuristicScorer) ScoreVendor(candidate extraction.VendorData, existing storage.Vendor) (float64, []string) {
	var score float64
	var fields []string

	cn := strings.ToLower(strings.TrimSpace(candidate.Name))
	en := strings.ToLower(strings.TrimSpace(existing.BusinessName))
	if cn != "" && en != "" && (strings.Contains(en, cn) || strings.Contains(cn, en)) {
		score = nameScore
		fields = append(fields, "name")
	}

	cp := digitsOnly(candidate.Phone)
	ep := digitsOnly(existing.Phone)
	if cp != "" && ep != "" && (strings.Contains(ep, cp) || strings.Contains(cp, ep)) {
		if phoneScore > score {
			score = phoneScore
		}
		fields = append(fields, "phone")
	}

	return score, fields
}

// ScoreItem matches on brand, model, and serial number with increasing
// precedence.
func (HeuristicScorer) ScoreItem(candidate extraction.ItemData, existing storage.InventoryItem) (float64, []string) {
	var score float64
	var fields []string

	if eq(candidate.Brand, existing.Brand) && candidate.Brand != "" {
		score = brandScore
		fields = append(fields, "brand")
	}

	cm := squash(candidate.Model)
	em := squash(existing.Model)
	if cm != "" && em != "" && (strings.Contains(em, cm) || strings.Contains(cm, em)) {
		if modelScore > score {
			score = modelScore
		}
		fields = append(fields, "model")
	}

	if candidate.SerialNumber != "" && eq(candidate.SerialNumber, existing.SerialNumber) {
		if serialScore > score {
			score = serialScore
		}
		fields = append(fields, "serial")
	}

	return score, fields
}

func eq(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// squash lowercases and strips all whitespace, so "WRX 735" matches "wrx735".
func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
