package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hometrackerhq/hometracker/internal/extraction"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

// VendorRepo and InventoryRepo are the read surfaces the suggester needs.
type VendorRepo interface {
	ListVendors() ([]storage.Vendor, error)
}

type InventoryRepo interface {
	ListInventoryItems() ([]storage.InventoryItem, error)
}

// Suggestion proposes linking an extracted candidate to an existing record.
// MatchField names the overlapping fields for the UI to disclose.
type Suggestion struct {
	Type       string  `json:"type"` // "vendor" or "inventory_item"
	TargetID   string  `json:"target_id"`
	TargetName string  `json:"target_name"`
	Candidate  string  `json:"candidate"`
	Confidence float64 `json:"confidence"`
	MatchField string  `json:"match_field"`
}

// Suggester links extracted records against the vendor and inventory
// collections using a pluggable scoring strategy.
type Suggester struct {
	vendors VendorRepo
	items   InventoryRepo
	scorer  Scorer
}

// NewSuggester creates a Suggester. A nil scorer selects the default
// heuristic strategy.
func NewSuggester(vendors VendorRepo, items InventoryRepo, scorer Scorer) *Suggester {
	if scorer == nil {
		scorer = HeuristicScorer{}
	}
	return &Suggester{vendors: vendors, items: items, scorer: scorer}
}

// FindMatches scores every extracted candidate against every existing record
// and returns suggestions above the inclusion threshold, sorted by
// confidence descending. Ties keep source iteration order.
func (s *Suggester) FindMatches(data extraction.ExtractedData) ([]Suggestion, error) {
	var out []Suggestion

	if data.Vendor != nil {
		vendors, err := s.vendors.ListVendors()
		if err != nil {
			return nil, fmt.Errorf("listing vendors: %w", err)
		}
		for _, v := range vendors {
			score, fields := s.scorer.ScoreVendor(*data.Vendor, v)
			if score > inclusionThreshold {
				out = append(out, Suggestion{
					Type:       "vendor",
					TargetID:   v.ID,
					TargetName: v.BusinessName,
					Candidate:  data.Vendor.Name,
					Confidence: score,
					MatchField: strings.Join(fields, ", "),
				})
			}
		}
	}

	if len(data.Items) > 0 {
		items, err := s.items.ListInventoryItems()
		if err != nil {
			return nil, fmt.Errorf("listing inventory: %w", err)
		}
		for _, candidate := range data.Items {
			for _, existing := range items {
				score, fields := s.scorer.ScoreItem(candidate, existing)
				if score > inclusionThreshold {
					out = append(out, Suggestion{
						Type:       "inventory_item",
						TargetID:   existing.ID,
						TargetName: existing.Name,
						Candidate:  candidate.Name,
						Confidence: score,
						MatchField: strings.Join(fields, ", "),
					})
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out, nil
}
