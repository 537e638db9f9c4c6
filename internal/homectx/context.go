// Package homectx assembles point-in-time snapshots of aggregated home state
// for display and for injection into Maple prompts.
package homectx

import (
	"github.com/hometrackerhq/hometracker/internal/storage"
)

// Repository interfaces are defined on the consumer side so the builder can be
// tested without a database. storage.Store satisfies all of them.

type InventoryRepo interface {
	ListInventoryItems() ([]storage.InventoryItem, error)
}

type MaintenanceRepo interface {
	ListMaintenanceTasks() ([]storage.MaintenanceTask, error)
}

type ProjectRepo interface {
	ListProjects() ([]storage.Project, error)
}

type VendorRepo interface {
	ListVendors() ([]storage.Vendor, error)
}

type WarrantyRepo interface {
	ListWarranties() ([]storage.Warranty, error)
}

type DocumentRepo interface {
	ListDocuments(limit int) ([]storage.Document, error)
	CountDocumentsByCategory() (map[string]int, error)
}

// HomeContext is a derived snapshot; it is never persisted. Today is the
// calendar date the snapshot was taken, so every formatter is a pure function
// of the snapshot alone.
type HomeContext struct {
	Today       string `json:"today"` // YYYY-MM-DD
	Inventory   InventoryContext
	Maintenance MaintenanceContext
	Projects    ProjectContext
	Vendors     VendorContext
	Documents   DocumentContext
	Summary     HomeSummary
}

type InventoryContext struct {
	ActiveCount        int
	TotalValue         float64
	ExpiringWarranties []storage.Warranty        // ending within 90 days
	LowStock           []storage.InventoryItem   // stock <= reorder threshold
	ReplacementDue     []storage.InventoryItem   // consumable replace-by within 30 days
	CategoryCounts     map[string]int
}

type MaintenanceContext struct {
	PendingCount      int
	Overdue           []storage.MaintenanceTask
	Upcoming          []storage.MaintenanceTask // pending, due within 14 days
	RecentlyCompleted []storage.MaintenanceTask // completed within 30 days
	CategoryCounts    map[string]int
	PriorityCounts    map[string]int
}

type ProjectContext struct {
	Active            []storage.Project // in-progress or planning
	Stalled           []storage.Project // on-hold
	RecentlyCompleted []storage.Project // end date within 30 days
	TotalBudget       float64
	TotalActualCost   float64
}

type VendorContext struct {
	Preferred    []storage.Vendor
	ByCategory   map[string][]string // category -> business names
	RecentlyUsed []storage.Vendor    // 5 most recent by last-used
}

type DocumentContext struct {
	Recent         []storage.Document // 10 most recent by upload date
	TotalCount     int                // whole collection
	CategoryCounts map[string]int     // whole collection
}

type QuickStats struct {
	ActiveItems      int     `json:"active_items"`
	PendingTasks     int     `json:"pending_tasks"`
	ActiveProjects   int     `json:"active_projects"`
	PreferredVendors int     `json:"preferred_vendors"`
	Documents        int     `json:"documents"`
	TotalValue       float64 `json:"total_value"`
}

// HomeSummary is the human-readable digest. NeedsAttention sentence order is
// fixed (overdue, expiring, low stock, stalled), not severity-sorted.
type HomeSummary struct {
	NeedsAttention    []string
	UpcomingDeadlines []string
	RecentActivity    []string
	QuickStats        QuickStats
}
