package homectx

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/hometrackerhq/hometracker/internal/storage"
)

func sampleContext() HomeContext {
	return HomeContext{
		Today: "2025-06-15",
		Inventory: InventoryContext{
			ActiveCount: 12,
			TotalValue:  8450.50,
			ExpiringWarranties: []storage.Warranty{
				{ItemName: "Refrigerator", Provider: "LG", EndDate: "2025-08-01"},
			},
			LowStock: []storage.InventoryItem{
				{Name: "Furnace filter", Consumable: &storage.Consumable{StockQuantity: 1, ReorderThreshold: 2}},
			},
			CategoryCounts: map[string]int{"appliance": 5, "electronics": 7},
		},
		Maintenance: MaintenanceContext{
			PendingCount: 3,
			Overdue: []storage.MaintenanceTask{
				{Title: "Clean gutters", DueDate: "2025-06-01", Priority: storage.PriorityHigh},
			},
			Upcoming: []storage.MaintenanceTask{
				{Title: "Change filter", DueDate: "2025-06-20", Priority: storage.PriorityMedium},
			},
		},
		Projects: ProjectContext{
			Active: []storage.Project{
				{Name: "Kitchen remodel", Status: storage.ProjectInProgress, Progress: 60},
			},
			TotalBudget:     5000,
			TotalActualCost: 3200,
		},
		Vendors: VendorContext{
			Preferred: []storage.Vendor{{BusinessName: "ABC Plumbing", Rating: 4.5}},
		},
		Documents: DocumentContext{
			Recent:         []storage.Document{{Name: "fridge-receipt.pdf", Category: storage.DocReceipt}},
			CategoryCounts: map[string]int{"receipt": 1},
		},
	}
}

func TestToPromptContainsSections(t *testing.T) {
	out := sampleContext().ToPrompt(0)

	for _, want := range []string{
		"# Home Status (2025-06-15)",
		"## Inventory",
		"Active items: 12 (total value $8450.50)",
		"OVERDUE: Clean gutters",
		"Active: Kitchen remodel (in-progress, 60% done)",
		"Preferred: ABC Plumbing (rating 4.5)",
		"fridge-receipt.pdf (receipt)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q\n%s", want, out)
		}
	}
	// Sorted histogram keys keep output byte-stable across runs.
	if !strings.Contains(out, "appliance: 5, electronics: 7") {
		t.Errorf("category histogram not in sorted order:\n%s", out)
	}
}

func TestToPromptTruncation(t *testing.T) {
	out := sampleContext().ToPrompt(120)
	if len(out) != 120 {
		t.Errorf("len(out) = %d, want exactly 120", len(out))
	}
	if !strings.HasSuffix(out, truncationSuffix) {
		t.Errorf("truncated prompt missing suffix: %q", out)
	}

	full := sampleContext().ToPrompt(0)
	if same := sampleContext().ToPrompt(len(full) + 1); same != full {
		t.Error("prompt under the limit should not be truncated")
	}
}

func TestToNaturalLanguageBounded(t *testing.T) {
	hc := sampleContext()
	hc.Maintenance.Overdue = nil
	for i := 0; i < 200; i++ {
		hc.Maintenance.Overdue = append(hc.Maintenance.Overdue, storage.MaintenanceTask{
			Title:   fmt.Sprintf("Task %d", i),
			DueDate: "2025-01-01",
		})
	}

	out := hc.ToNaturalLanguage()
	if n := strings.Count(out, "- Task "); n > proseItemLimit {
		t.Errorf("overdue bullets = %d, want at most %d regardless of input size", n, proseItemLimit)
	}
	if !strings.Contains(out, "As of 2025-06-15") {
		t.Errorf("prose missing date line:\n%s", out)
	}
}

func TestToCompactJSON(t *testing.T) {
	s, err := sampleContext().ToCompactJSON()
	if err != nil {
		t.Fatalf("ToCompactJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["today"] != "2025-06-15" {
		t.Errorf("today = %v", decoded["today"])
	}
	if decoded["pending_tasks"] != float64(3) {
		t.Errorf("pending_tasks = %v, want 3", decoded["pending_tasks"])
	}
	overdue, _ := decoded["overdue_tasks"].([]any)
	if len(overdue) != 1 || overdue[0] != "Clean gutters" {
		t.Errorf("overdue_tasks = %v", overdue)
	}
}

func TestSummaryLine(t *testing.T) {
	got := sampleContext().SummaryLine()
	want := "2025-06-15: 12 items, 3 pending tasks (1 overdue), 1 active projects, 1 warranties expiring soon"
	if got != want {
		t.Errorf("SummaryLine = %q, want %q", got, want)
	}
}

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, c := range cases {
		if got := EstimateTokens(c.text); got != c.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(c.text), got, c.want)
		}
	}
}
