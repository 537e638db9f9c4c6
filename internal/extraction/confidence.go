package extraction

// Per-section field budgets for the completeness ratio. The vendor section is
// scored out of 4 fields; each item, the receipt, and the warranty out of 3.
const (
	vendorFieldCount   = 4
	itemFieldCount     = 3
	receiptFieldCount  = 3
	warrantyFieldCount = 3
)

// AssessConfidence computes the completeness tier of an extraction. It is a
// pure function of its input: filled fields are counted against each present
// section's budget and the overall ratio is bucketed. An extraction with no
// scoreable sections is low confidence.
func AssessConfidence(data ExtractedData) Confidence {
	var score, total int

	if v := data.Vendor; v != nil {
		total += vendorFieldCount
		score += countFilled(v.Name, v.Phone, v.Email, v.Address)
	}

	for _, item := range data.Items {
		total += itemFieldCount
		score += countFilled(item.Name, item.Brand)
		if item.Price != nil {
			score++
		}
	}

	if r := data.Receipt; r != nil {
		total += receiptFieldCount
		score += countFilled(r.VendorName, r.Date)
		if r.TotalAmount != nil {
			score++
		}
	}

	if w := data.Warranty; w != nil {
		total += warrantyFieldCount
		score += countFilled(w.Provider, w.EndDate, w.PolicyNumber)
	}

	if total == 0 {
		return ConfidenceLow
	}

	ratio := float64(score) / float64(total)
	switch {
	case ratio >= 0.7:
		return ConfidenceHigh
	case ratio >= 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func countFilled(fields ...string) int {
	var n int
	for _, f := range fields {
		if f != "" {
			n++
		}
	}
	return n
}
