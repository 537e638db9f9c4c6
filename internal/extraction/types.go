// Package extraction turns unstructured document text into typed, cleaned,
// confidence-scored candidate records.
package extraction

// Confidence is a coarse completeness bucket for an extraction.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// VendorData is a candidate vendor extracted from document text.
type VendorData struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// ItemData is a candidate inventory item extracted from document text.
type ItemData struct {
	Name         string   `json:"name"`
	Brand        string   `json:"brand,omitempty"`
	Model        string   `json:"model,omitempty"`
	SerialNumber string   `json:"serial_number,omitempty"`
	Category     string   `json:"category,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Quantity     int      `json:"quantity,omitempty"`
}

// ReceiptData is a candidate purchase record extracted from document text.
type ReceiptData struct {
	VendorName    string   `json:"vendor_name,omitempty"`
	Date          string   `json:"date,omitempty"` // YYYY-MM-DD when parseable
	TotalAmount   *float64 `json:"total_amount,omitempty"`
	PaymentMethod string   `json:"payment_method,omitempty"`
}

// WarrantyData is a candidate warranty extracted from document text.
type WarrantyData struct {
	ItemName     string `json:"item_name,omitempty"`
	Provider     string `json:"provider,omitempty"`
	Type         string `json:"type,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	PolicyNumber string `json:"policy_number,omitempty"`
}

// MaintenanceData is a candidate maintenance task extracted from document text.
type MaintenanceData struct {
	Title         string   `json:"title,omitempty"`
	Category      string   `json:"category,omitempty"`
	DueDate       string   `json:"due_date,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
}

// ExtractedData holds every candidate record found in one document, each
// section optional. RawText carries the unparsed model output when no JSON
// structure was found.
type ExtractedData struct {
	Vendor      *VendorData      `json:"vendor,omitempty"`
	Items       []ItemData       `json:"items,omitempty"`
	Receipt     *ReceiptData     `json:"receipt,omitempty"`
	Warranty    *WarrantyData    `json:"warranty,omitempty"`
	Maintenance *MaintenanceData `json:"maintenance,omitempty"`
	Confidence  Confidence       `json:"confidence"`
	Warnings    []string         `json:"warnings,omitempty"`
	RawText     string           `json:"raw_text,omitempty"`
}

// Result is the outcome of one extraction call. A model response with no
// recognizable JSON is still a success: it degrades to a low-confidence
// raw-text passthrough. Only empty input and provider failures set Error.
type Result struct {
	Success bool           `json:"success"`
	Data    *ExtractedData `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}
