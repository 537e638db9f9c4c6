package homectx

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hometrackerhq/hometracker/internal/storage"
)

const (
	warrantyWindowDays    = 90
	replacementWindowDays = 30
	upcomingHorizonDays   = 14
	recentWindowDays      = 30
	recentVendorLimit     = 5
	recentDocumentLimit   = 10
	dateLayout            = "2006-01-02"
)

// Builder computes HomeContext snapshots from the live repositories. Every
// call recomputes from current store state; there is no cache to go stale.
type Builder struct {
	inventory   InventoryRepo
	maintenance MaintenanceRepo
	projects    ProjectRepo
	vendors     VendorRepo
	warranties  WarrantyRepo
	documents   DocumentRepo
}

// NewBuilder wires a Builder to the six repositories.
func NewBuilder(inv InventoryRepo, maint MaintenanceRepo, proj ProjectRepo, vend VendorRepo, warr WarrantyRepo, docs DocumentRepo) *Builder {
	return &Builder{
		inventory:   inv,
		maintenance: maint,
		projects:    proj,
		vendors:     vend,
		warranties:  warr,
		documents:   docs,
	}
}

// Build assembles a snapshot as of now. The six sections are loaded and
// reduced concurrently; any repository error aborts the build.
func (b *Builder) Build(ctx context.Context, now time.Time) (HomeContext, error) {
	today := now.UTC().Format(dateLayout)

	var hc HomeContext
	hc.Today = today

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := b.inventory.ListInventoryItems()
		if err != nil {
			return fmt.Errorf("listing inventory: %w", err)
		}
		warranties, err := b.warranties.ListWarranties()
		if err != nil {
			return fmt.Errorf("listing warranties: %w", err)
		}
		hc.Inventory = buildInventory(items, warranties, now)
		return nil
	})

	g.Go(func() error {
		tasks, err := b.maintenance.ListMaintenanceTasks()
		if err != nil {
			return fmt.Errorf("listing maintenance tasks: %w", err)
		}
		hc.Maintenance = buildMaintenance(tasks, now)
		return nil
	})

	g.Go(func() error {
		projects, err := b.projects.ListProjects()
		if err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}
		hc.Projects = buildProjects(projects, now)
		return nil
	})

	g.Go(func() error {
		vendors, err := b.vendors.ListVendors()
		if err != nil {
			return fmt.Errorf("listing vendors: %w", err)
		}
		hc.Vendors = buildVendors(vendors)
		return nil
	})

	g.Go(func() error {
		docs, err := b.documents.ListDocuments(recentDocumentLimit)
		if err != nil {
			return fmt.Errorf("listing documents: %w", err)
		}
		counts, err := b.documents.CountDocumentsByCategory()
		if err != nil {
			return fmt.Errorf("counting documents: %w", err)
		}
		hc.Documents = buildDocuments(docs, counts)
		return nil
	})

	if err := g.Wait(); err != nil {
		return HomeContext{}, err
	}

	hc.Summary = buildSummary(hc)
	return hc, nil
}

func buildInventory(items []storage.InventoryItem, warranties []storage.Warranty, now time.Time) InventoryContext {
	ic := InventoryContext{CategoryCounts: make(map[string]int)}

	today := now.UTC().Format(dateLayout)
	replaceCutoff := now.UTC().AddDate(0, 0, replacementWindowDays).Format(dateLayout)

	for _, item := range items {
		if item.Status != storage.ItemActive {
			continue
		}
		ic.ActiveCount++
		ic.TotalValue += item.Value()
		if item.Category != "" {
			ic.CategoryCounts[item.Category]++
		}
		if c := item.Consumable; c != nil {
			if c.StockQuantity <= c.ReorderThreshold {
				ic.LowStock = append(ic.LowStock, item)
			}
			if c.ReplaceBy != "" && c.ReplaceBy >= today && c.ReplaceBy <= replaceCutoff {
				ic.ReplacementDue = append(ic.ReplacementDue, item)
			}
		}
	}

	warrantyCutoff := now.UTC().AddDate(0, 0, warrantyWindowDays).Format(dateLayout)
	for _, w := range warranties {
		if w.EndDate != "" && w.EndDate >= today && w.EndDate <= warrantyCutoff {
			ic.ExpiringWarranties = append(ic.ExpiringWarranties, w)
		}
	}

	return ic
}

func buildMaintenance(tasks []storage.MaintenanceTask, now time.Time) MaintenanceContext {
	mc := MaintenanceContext{
		CategoryCounts: make(map[string]int),
		PriorityCounts: make(map[string]int),
	}

	today := now.UTC().Format(dateLayout)
	upcomingCutoff := now.UTC().AddDate(0, 0, upcomingHorizonDays).Format(dateLayout)
	completedCutoff := now.UTC().AddDate(0, 0, -recentWindowDays).Format(dateLayout)

	for _, t := range tasks {
		if t.Category != "" {
			mc.CategoryCounts[t.Category]++
		}
		mc.PriorityCounts[string(t.Priority)]++

		switch t.Status {
		case storage.TaskPending:
			mc.PendingCount++
			if t.DueDate == "" {
				continue
			}
			if t.DueDate < today {
				mc.Overdue = append(mc.Overdue, t)
			} else if t.DueDate <= upcomingCutoff {
				mc.Upcoming = append(mc.Upcoming, t)
			}
		case storage.TaskCompleted:
			if t.CompletedDate != "" && t.CompletedDate >= completedCutoff {
				mc.RecentlyCompleted = append(mc.RecentlyCompleted, t)
			}
		}
	}

	return mc
}

func buildProjects(projects []storage.Project, now time.Time) ProjectContext {
	var pc ProjectContext

	completedCutoff := now.UTC().AddDate(0, 0, -recentWindowDays).Format(dateLayout)

	for _, p := range projects {
		if p.Budget != nil {
			pc.TotalBudget += *p.Budget
		}
		if p.ActualCost != nil {
			pc.TotalActualCost += *p.ActualCost
		}

		switch p.Status {
		case storage.ProjectInProgress, storage.ProjectPlanning:
			pc.Active = append(pc.Active, p)
		case storage.ProjectOnHold:
			pc.Stalled = append(pc.Stalled, p)
		case storage.ProjectCompleted:
			if p.EndDate != "" && p.EndDate >= completedCutoff {
				pc.RecentlyCompleted = append(pc.RecentlyCompleted, p)
			}
		}
	}

	return pc
}

func buildVendors(vendors []storage.Vendor) VendorContext {
	vc := VendorContext{ByCategory: make(map[string][]string)}

	var used []storage.Vendor
	for _, v := range vendors {
		if v.IsPreferred {
			vc.Preferred = append(vc.Preferred, v)
		}
		for _, cat := range v.Categories {
			vc.ByCategory[cat] = append(vc.ByCategory[cat], v.BusinessName)
		}
		if !v.LastUsed.IsZero() {
			used = append(used, v)
		}
	}

	sort.SliceStable(used, func(i, j int) bool {
		return used[i].LastUsed.After(used[j].LastUsed)
	})
	if len(used) > recentVendorLimit {
		used = used[:recentVendorLimit]
	}
	vc.RecentlyUsed = used

	return vc
}

// buildDocuments keeps the recent list capped; the histogram and total cover
// the whole collection.
func buildDocuments(docs []storage.Document, counts map[string]int) DocumentContext {
	dc := DocumentContext{Recent: docs, CategoryCounts: counts}
	if dc.CategoryCounts == nil {
		dc.CategoryCounts = make(map[string]int)
	}
	for _, n := range dc.CategoryCounts {
		dc.TotalCount += n
	}
	return dc
}

// buildSummary derives the digest from already-built sections. The
// needs-attention sentence order is fixed.
func buildSummary(hc HomeContext) HomeSummary {
	var s HomeSummary

	if n := len(hc.Maintenance.Overdue); n > 0 {
		s.NeedsAttention = append(s.NeedsAttention, fmt.Sprintf("%d maintenance %s overdue", n, pluralize(n, "task is", "tasks are")))
	}
	if n := len(hc.Inventory.ExpiringWarranties); n > 0 {
		s.NeedsAttention = append(s.NeedsAttention, fmt.Sprintf("%d %s expiring within 90 days", n, pluralize(n, "warranty is", "warranties are")))
	}
	if n := len(hc.Inventory.LowStock); n > 0 {
		s.NeedsAttention = append(s.NeedsAttention, fmt.Sprintf("%d consumable %s low on stock", n, pluralize(n, "item is", "items are")))
	}
	if n := len(hc.Projects.Stalled); n > 0 {
		s.NeedsAttention = append(s.NeedsAttention, fmt.Sprintf("%d %s on hold", n, pluralize(n, "project is", "projects are")))
	}

	for _, t := range hc.Maintenance.Upcoming {
		s.UpcomingDeadlines = append(s.UpcomingDeadlines, fmt.Sprintf("%s due %s", t.Title, t.DueDate))
	}
	for _, w := range hc.Inventory.ExpiringWarranties {
		s.UpcomingDeadlines = append(s.UpcomingDeadlines, fmt.Sprintf("%s warranty ends %s", w.ItemName, w.EndDate))
	}

	for _, t := range hc.Maintenance.RecentlyCompleted {
		s.RecentActivity = append(s.RecentActivity, fmt.Sprintf("completed %s on %s", t.Title, t.CompletedDate))
	}
	for _, p := range hc.Projects.RecentlyCompleted {
		s.RecentActivity = append(s.RecentActivity, fmt.Sprintf("finished project %s", p.Name))
	}

	s.QuickStats = QuickStats{
		ActiveItems:      hc.Inventory.ActiveCount,
		PendingTasks:     hc.Maintenance.PendingCount,
		ActiveProjects:   len(hc.Projects.Active),
		PreferredVendors: len(hc.Vendors.Preferred),
		Documents:        hc.Documents.TotalCount,
		TotalValue:       hc.Inventory.TotalValue,
	}

	return s
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
