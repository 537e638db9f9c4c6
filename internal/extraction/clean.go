package extraction

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// rawPayload mirrors the JSON shape the model is asked to produce. Price
// fields are decoded as any because small models emit them as numbers or as
// strings with currency formatting, interchangeably.
type rawPayload struct {
	Vendor      *rawVendor      `json:"vendor"`
	Items       []rawItem       `json:"items"`
	Receipt     *rawReceipt     `json:"receipt"`
	Warranty    *rawWarranty    `json:"warranty"`
	Maintenance *rawMaintenance `json:"maintenance"`
	Warnings    []string        `json:"warnings"`
}

type rawVendor struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type rawItem struct {
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Category     string `json:"category"`
	Price        any    `json:"price"`
	Quantity     any    `json:"quantity"`
}

type rawReceipt struct {
	VendorName    string `json:"vendor_name"`
	Date          string `json:"date"`
	TotalAmount   any    `json:"total_amount"`
	PaymentMethod string `json:"payment_method"`
}

type rawWarranty struct {
	ItemName     string `json:"item_name"`
	Provider     string `json:"provider"`
	Type         string `json:"type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	PolicyNumber string `json:"policy_number"`
}

type rawMaintenance struct {
	Title         string `json:"title"`
	Category      string `json:"category"`
	DueDate       string `json:"due_date"`
	Notes         string `json:"notes"`
	EstimatedCost any    `json:"estimated_cost"`
}

// clean applies the normalization rules to a decoded payload: strings
// trimmed, emails lowercased, prices parsed, dates normalized, nameless items
// dropped. An items array left empty after dropping is omitted entirely.
func clean(raw rawPayload) ExtractedData {
	var data ExtractedData

	if raw.Vendor != nil {
		v := VendorData{
			Name:    strings.TrimSpace(raw.Vendor.Name),
			Phone:   strings.TrimSpace(raw.Vendor.Phone),
			Email:   strings.ToLower(strings.TrimSpace(raw.Vendor.Email)),
			Address: strings.TrimSpace(raw.Vendor.Address),
		}
		if v != (VendorData{}) {
			data.Vendor = &v
		}
	}

	for _, ri := range raw.Items {
		name := strings.TrimSpace(ri.Name)
		if name == "" {
			continue
		}
		data.Items = append(data.Items, ItemData{
			Name:         name,
			Brand:        strings.TrimSpace(ri.Brand),
			Model:        strings.TrimSpace(ri.Model),
			SerialNumber: strings.TrimSpace(ri.SerialNumber),
			Category:     strings.TrimSpace(ri.Category),
			Price:        ParsePrice(ri.Price),
			Quantity:     parseQuantity(ri.Quantity),
		})
	}

	if raw.Receipt != nil {
		r := ReceiptData{
			VendorName:    strings.TrimSpace(raw.Receipt.VendorName),
			Date:          NormalizeDate(raw.Receipt.Date),
			TotalAmount:   ParsePrice(raw.Receipt.TotalAmount),
			PaymentMethod: strings.TrimSpace(raw.Receipt.PaymentMethod),
		}
		if r != (ReceiptData{}) {
			data.Receipt = &r
		}
	}

	if raw.Warranty != nil {
		w := WarrantyData{
			ItemName:     strings.TrimSpace(raw.Warranty.ItemName),
			Provider:     strings.TrimSpace(raw.Warranty.Provider),
			Type:         strings.TrimSpace(raw.Warranty.Type),
			StartDate:    NormalizeDate(raw.Warranty.StartDate),
			EndDate:      NormalizeDate(raw.Warranty.EndDate),
			PolicyNumber: strings.TrimSpace(raw.Warranty.PolicyNumber),
		}
		if w != (WarrantyData{}) {
			data.Warranty = &w
		}
	}

	if raw.Maintenance != nil {
		m := MaintenanceData{
			Title:         strings.TrimSpace(raw.Maintenance.Title),
			Category:      strings.TrimSpace(raw.Maintenance.Category),
			DueDate:       NormalizeDate(raw.Maintenance.DueDate),
			Notes:         strings.TrimSpace(raw.Maintenance.Notes),
			EstimatedCost: ParsePrice(raw.Maintenance.EstimatedCost),
		}
		if m != (MaintenanceData{}) {
			data.Maintenance = &m
		}
	}

	for _, w := range raw.Warnings {
		if w = strings.TrimSpace(w); w != "" {
			data.Warnings = append(data.Warnings, w)
		}
	}

	return data
}

// ParsePrice converts a decoded JSON value into a price. Numbers pass through
// rounded to 2 decimals. Strings have currency symbols and commas stripped
// before parsing. Anything unparsable yields nil, never zero and never an
// error.
func ParsePrice(v any) *float64 {
	switch p := v.(type) {
	case float64:
		return roundedPrice(p)
	case string:
		s := strings.TrimSpace(p)
		s = strings.Map(func(r rune) rune {
			switch r {
			case '$', '€', '£', '¥', ',', ' ':
				return -1
			}
			return r
		}, s)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return roundedPrice(f)
	default:
		return nil
	}
}

func roundedPrice(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	r := math.Round(f*100) / 100
	return &r
}

func parseQuantity(v any) int {
	switch q := v.(type) {
	case float64:
		return int(q)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(q))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// dateLayouts are tried in order when normalizing a date string.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02-01-2006",
	"2006/01/02",
}

// NormalizeDate converts a date string to YYYY-MM-DD when one of the known
// layouts matches. On failure the original trimmed string passes through
// unchanged, lossy but non-fatal.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
