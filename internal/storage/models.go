package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ItemStatus gates visibility of an inventory item in "active" aggregates.
type ItemStatus string

const (
	ItemActive   ItemStatus = "active"
	ItemArchived ItemStatus = "archived"
	ItemDisposed ItemStatus = "disposed"
)

// ItemCondition is the owner-assessed condition of an inventory item.
type ItemCondition string

const (
	ConditionExcellent ItemCondition = "excellent"
	ConditionGood      ItemCondition = "good"
	ConditionFair      ItemCondition = "fair"
	ConditionPoor      ItemCondition = "poor"
)

// TaskStatus is the maintenance task lifecycle: pending -> completed (terminal).
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

type Recurrence string

const (
	RecurNone      Recurrence = "none"
	RecurWeekly    Recurrence = "weekly"
	RecurMonthly   Recurrence = "monthly"
	RecurQuarterly Recurrence = "quarterly"
	RecurBiannual  Recurrence = "biannual"
	RecurAnnual    Recurrence = "annual"
)

type ProjectStatus string

const (
	ProjectBacklog    ProjectStatus = "backlog"
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectOnHold     ProjectStatus = "on-hold"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

type DocumentCategory string

const (
	DocManual   DocumentCategory = "manual"
	DocReceipt  DocumentCategory = "receipt"
	DocInvoice  DocumentCategory = "invoice"
	DocWarranty DocumentCategory = "warranty"
	DocPhoto    DocumentCategory = "photo"
	DocOther    DocumentCategory = "other"
)

// OCRStatus tracks the asynchronous text-recovery step for a document.
type OCRStatus string

const (
	OCRPending       OCRStatus = "pending"
	OCRProcessing    OCRStatus = "processing"
	OCRCompleted     OCRStatus = "completed"
	OCRFailed        OCRStatus = "failed"
	OCRNotApplicable OCRStatus = "not_applicable"
)

type WarrantyType string

const (
	WarrantyManufacturer WarrantyType = "manufacturer"
	WarrantyExtended     WarrantyType = "extended"
	WarrantyHome         WarrantyType = "home"
	WarrantyService      WarrantyType = "service"
)

// Consumable marks an inventory item as stock-tracked. ReplaceBy is the
// estimated date the current stock runs out, empty when unknown.
type Consumable struct {
	StockQuantity    int    `json:"stock_quantity"`
	ReorderThreshold int    `json:"reorder_threshold"`
	ReplaceBy        string `json:"replace_by,omitempty"` // YYYY-MM-DD
}

// InventoryItem is a tracked possession. WarrantyID is a soft reference into
// the warranties collection; there is no embedded warranty sub-record.
type InventoryItem struct {
	ID            string
	Name          string
	Category      string
	Location      string
	Brand         string
	Model         string
	SerialNumber  string
	PurchaseDate  string // YYYY-MM-DD, empty if unknown
	PurchasePrice *float64
	CurrentValue  *float64
	Condition     ItemCondition
	WarrantyID    string
	Consumable    *Consumable
	Tags          []string
	Status        ItemStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Value returns the best known monetary value: current value when set,
// purchase price otherwise, zero when neither is known.
func (i InventoryItem) Value() float64 {
	if i.CurrentValue != nil {
		return *i.CurrentValue
	}
	if i.PurchasePrice != nil {
		return *i.PurchasePrice
	}
	return 0
}

type MaintenanceTask struct {
	ID            string
	Title         string
	Category      string
	Priority      TaskPriority
	Status        TaskStatus
	DueDate       string // YYYY-MM-DD
	Recurrence    Recurrence
	CompletedDate string // YYYY-MM-DD, set on completion
	ActualCost    *float64
	Notes         string
	CreatedAt     time.Time
}

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Project tracks a home project. Progress is the manually set percentage and
// is the authoritative signal; SubtaskProgress is derived and reported
// alongside it, never merged.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      ProjectStatus
	Priority    TaskPriority
	Budget      *float64
	ActualCost  *float64
	Progress    int // 0-100, manually set
	Subtasks    []Subtask
	Tags        []string
	StartDate   string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD, set when completed
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SubtaskProgress returns the completed-subtask percentage, or -1 when the
// project has no subtasks.
func (p Project) SubtaskProgress() int {
	if len(p.Subtasks) == 0 {
		return -1
	}
	done := 0
	for _, s := range p.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done * 100 / len(p.Subtasks)
}

type Vendor struct {
	ID           string
	BusinessName string
	ContactName  string
	Phone        string
	Email        string
	Categories   []string
	Rating       float64
	IsPreferred  bool
	LastUsed     time.Time // zero when never used
	Notes        string
	CreatedAt    time.Time
}

// Warranty is the single source of truth for coverage. ItemID/ItemName are
// soft references resolved at read time.
type Warranty struct {
	ID           string
	ItemID       string
	ItemName     string
	Provider     string
	Type         WarrantyType
	StartDate    string // YYYY-MM-DD
	EndDate      string // YYYY-MM-DD
	PolicyNumber string
	CreatedAt    time.Time
}

// Document is an uploaded file or note. Data holds the raw upload; OCRText is
// populated asynchronously by the ingest worker. ExtractedJSON and
// SuggestionsJSON hold the extraction result and match suggestions as stored
// JSON, written by the worker.
type Document struct {
	ID              string
	Name            string
	Category        DocumentCategory
	RelatedTo       string
	RelatedType     string
	ContentType     string
	Data            []byte
	OCRStatus       OCRStatus
	OCRText         string
	ExtractedJSON   string
	SuggestionsJSON string
	UploadDate      time.Time
}

type Job struct {
	ID          string
	Type        string
	PayloadJSON string
	Status      string // "pending", "running", "completed", "failed"
	Attempts    int
	MaxAttempts int
	RunAfter    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}

// ChatMessage is one row of the Maple transcript. ActionJSON holds the parsed
// action directive, when the assistant proposed one.
type ChatMessage struct {
	ID         string
	Role       string // "user" or "assistant"
	Content    string
	ActionJSON string
	CreatedAt  time.Time
}
