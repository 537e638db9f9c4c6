package homectx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hometrackerhq/hometracker/internal/storage"
)

const (
	truncationSuffix = "\n\n[context truncated]"
	proseItemLimit   = 5
	proseShortLimit  = 3
)

// EstimateTokens provides a rough token count using 4 chars per token heuristic.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ToPrompt renders the full markdown representation. When maxLength > 0 and
// the output would exceed it, the text is cut at maxLength minus the fixed
// truncation suffix, which is then appended.
func (hc HomeContext) ToPrompt(maxLength int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Home Status (%s)\n", hc.Today)

	sb.WriteString("\n## Inventory\n")
	fmt.Fprintf(&sb, "- Active items: %d (total value $%.2f)\n", hc.Inventory.ActiveCount, hc.Inventory.TotalValue)
	for _, w := range hc.Inventory.ExpiringWarranties {
		fmt.Fprintf(&sb, "- Warranty expiring: %s (%s) ends %s\n", w.ItemName, w.Provider, w.EndDate)
	}
	for _, item := range hc.Inventory.LowStock {
		fmt.Fprintf(&sb, "- Low stock: %s (%d left, reorder at %d)\n",
			item.Name, item.Consumable.StockQuantity, item.Consumable.ReorderThreshold)
	}
	for _, item := range hc.Inventory.ReplacementDue {
		fmt.Fprintf(&sb, "- Replace soon: %s by %s\n", item.Name, item.Consumable.ReplaceBy)
	}
	writeHistogram(&sb, "Categories", hc.Inventory.CategoryCounts)

	sb.WriteString("\n## Maintenance\n")
	fmt.Fprintf(&sb, "- Pending tasks: %d\n", hc.Maintenance.PendingCount)
	for _, t := range hc.Maintenance.Overdue {
		fmt.Fprintf(&sb, "- OVERDUE: %s (due %s, %s priority)\n", t.Title, t.DueDate, t.Priority)
	}
	for _, t := range hc.Maintenance.Upcoming {
		fmt.Fprintf(&sb, "- Upcoming: %s due %s\n", t.Title, t.DueDate)
	}
	for _, t := range hc.Maintenance.RecentlyCompleted {
		fmt.Fprintf(&sb, "- Done: %s on %s\n", t.Title, t.CompletedDate)
	}

	sb.WriteString("\n## Projects\n")
	for _, p := range hc.Projects.Active {
		fmt.Fprintf(&sb, "- Active: %s (%s, %d%% done)\n", p.Name, p.Status, p.Progress)
	}
	for _, p := range hc.Projects.Stalled {
		fmt.Fprintf(&sb, "- On hold: %s\n", p.Name)
	}
	for _, p := range hc.Projects.RecentlyCompleted {
		fmt.Fprintf(&sb, "- Completed: %s\n", p.Name)
	}
	fmt.Fprintf(&sb, "- Budget: $%.2f planned, $%.2f spent\n", hc.Projects.TotalBudget, hc.Projects.TotalActualCost)

	sb.WriteString("\n## Vendors\n")
	for _, v := range hc.Vendors.Preferred {
		fmt.Fprintf(&sb, "- Preferred: %s (rating %.1f)\n", v.BusinessName, v.Rating)
	}
	for _, v := range hc.Vendors.RecentlyUsed {
		fmt.Fprintf(&sb, "- Recently used: %s\n", v.BusinessName)
	}

	sb.WriteString("\n## Documents\n")
	for _, d := range hc.Documents.Recent {
		fmt.Fprintf(&sb, "- %s (%s)\n", d.Name, d.Category)
	}
	writeHistogram(&sb, "Categories", hc.Documents.CategoryCounts)

	if len(hc.Summary.NeedsAttention) > 0 {
		sb.WriteString("\n## Needs Attention\n")
		for _, line := range hc.Summary.NeedsAttention {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}

	out := sb.String()
	if maxLength > 0 && len(out) > maxLength {
		cut := maxLength - len(truncationSuffix)
		if cut < 0 {
			cut = 0
		}
		out = out[:cut] + truncationSuffix
	}
	return out
}

// ToNaturalLanguage renders a bounded prose summary: at most five bullet
// items per major section regardless of how many records exist underneath.
func (hc HomeContext) ToNaturalLanguage() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "As of %s: ", hc.Today)
	fmt.Fprintf(&sb, "the home has %d active inventory items worth about $%.0f, %d pending maintenance tasks, and %d active projects.\n",
		hc.Inventory.ActiveCount, hc.Inventory.TotalValue, hc.Maintenance.PendingCount, len(hc.Projects.Active))

	if len(hc.Maintenance.Overdue) > 0 {
		sb.WriteString("Overdue maintenance:\n")
		for _, t := range capTasks(hc.Maintenance.Overdue, proseItemLimit) {
			fmt.Fprintf(&sb, "- %s (due %s)\n", t.Title, t.DueDate)
		}
	}
	if len(hc.Maintenance.Upcoming) > 0 {
		sb.WriteString("Coming up:\n")
		for _, t := range capTasks(hc.Maintenance.Upcoming, proseItemLimit) {
			fmt.Fprintf(&sb, "- %s (due %s)\n", t.Title, t.DueDate)
		}
	}
	if len(hc.Inventory.ExpiringWarranties) > 0 {
		sb.WriteString("Warranties ending soon:\n")
		for _, w := range hc.Inventory.ExpiringWarranties[:minInt(len(hc.Inventory.ExpiringWarranties), proseItemLimit)] {
			fmt.Fprintf(&sb, "- %s (%s) ends %s\n", w.ItemName, w.Provider, w.EndDate)
		}
	}
	if len(hc.Inventory.LowStock) > 0 {
		sb.WriteString("Running low:\n")
		for _, item := range hc.Inventory.LowStock[:minInt(len(hc.Inventory.LowStock), proseItemLimit)] {
			fmt.Fprintf(&sb, "- %s (%d left)\n", item.Name, item.Consumable.StockQuantity)
		}
	}
	if len(hc.Projects.Active) > 0 {
		sb.WriteString("Projects in motion:\n")
		for _, p := range hc.Projects.Active[:minInt(len(hc.Projects.Active), proseItemLimit)] {
			fmt.Fprintf(&sb, "- %s (%d%% done)\n", p.Name, p.Progress)
		}
	}
	if len(hc.Vendors.RecentlyUsed) > 0 {
		sb.WriteString("Recent vendors:\n")
		for _, v := range hc.Vendors.RecentlyUsed[:minInt(len(hc.Vendors.RecentlyUsed), proseShortLimit)] {
			fmt.Fprintf(&sb, "- %s\n", v.BusinessName)
		}
	}
	if len(hc.Documents.Recent) > 0 {
		sb.WriteString("Recent documents:\n")
		for _, d := range hc.Documents.Recent[:minInt(len(hc.Documents.Recent), proseShortLimit)] {
			fmt.Fprintf(&sb, "- %s (%s)\n", d.Name, d.Category)
		}
	}

	return sb.String()
}

// compactContext is the structured subset serialized by ToCompactJSON.
type compactContext struct {
	Today              string         `json:"today"`
	ActiveItems        int            `json:"active_items"`
	TotalValue         float64        `json:"total_value"`
	PendingTasks       int            `json:"pending_tasks"`
	OverdueTasks       []string       `json:"overdue_tasks,omitempty"`
	ExpiringWarranties []string       `json:"expiring_warranties,omitempty"`
	LowStock           []string       `json:"low_stock,omitempty"`
	ActiveProjects     []string       `json:"active_projects,omitempty"`
	StalledProjects    []string       `json:"stalled_projects,omitempty"`
	PreferredVendors   []string       `json:"preferred_vendors,omitempty"`
	DocumentCounts     map[string]int `json:"document_counts,omitempty"`
}

// ToCompactJSON renders the structured subset used when the prompt budget is
// too tight for prose.
func (hc HomeContext) ToCompactJSON() (string, error) {
	c := compactContext{
		Today:        hc.Today,
		ActiveItems:  hc.Inventory.ActiveCount,
		TotalValue:   hc.Inventory.TotalValue,
		PendingTasks: hc.Maintenance.PendingCount,
	}
	for _, t := range hc.Maintenance.Overdue {
		c.OverdueTasks = append(c.OverdueTasks, t.Title)
	}
	for _, w := range hc.Inventory.ExpiringWarranties {
		c.ExpiringWarranties = append(c.ExpiringWarranties, w.ItemName)
	}
	for _, item := range hc.Inventory.LowStock {
		c.LowStock = append(c.LowStock, item.Name)
	}
	for _, p := range hc.Projects.Active {
		c.ActiveProjects = append(c.ActiveProjects, p.Name)
	}
	for _, p := range hc.Projects.Stalled {
		c.StalledProjects = append(c.StalledProjects, p.Name)
	}
	for _, v := range hc.Vendors.Preferred {
		c.PreferredVendors = append(c.PreferredVendors, v.BusinessName)
	}
	if len(hc.Documents.CategoryCounts) > 0 {
		c.DocumentCounts = hc.Documents.CategoryCounts
	}

	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshalling compact context: %w", err)
	}
	return string(b), nil
}

// SummaryLine renders the one-line tier.
func (hc HomeContext) SummaryLine() string {
	return fmt.Sprintf("%s: %d items, %d pending tasks (%d overdue), %d active projects, %d warranties expiring soon",
		hc.Today,
		hc.Inventory.ActiveCount,
		hc.Maintenance.PendingCount,
		len(hc.Maintenance.Overdue),
		len(hc.Projects.Active),
		len(hc.Inventory.ExpiringWarranties),
	)
}

func capTasks(tasks []storage.MaintenanceTask, limit int) []storage.MaintenanceTask {
	if len(tasks) > limit {
		return tasks[:limit]
	}
	return tasks
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// writeHistogram emits "key: n" pairs in sorted key order for determinism.
func writeHistogram(sb *strings.Builder, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %d", k, counts[k])
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, strings.Join(parts, ", "))
}
