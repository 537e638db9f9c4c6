package action

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hometrackerhq/hometracker/internal/storage"
)

// Store interfaces are consumer-side so the dispatcher is testable without a
// database. storage.Store satisfies all of them.

type MaintenanceStore interface {
	SaveMaintenanceTask(t storage.MaintenanceTask) error
	ListPendingTasks() ([]storage.MaintenanceTask, error)
	CompleteMaintenanceTask(id, completedDate string, actualCost *float64) error
}

type InventoryStore interface {
	SaveInventoryItem(item storage.InventoryItem) error
}

type ProjectStore interface {
	SaveProject(p storage.Project) error
}

type VendorStore interface {
	SaveVendor(v storage.Vendor) error
}

// Result is what an executed directive reports back to the caller. NavigateTo
// is an advisory route hint for the client to follow.
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	NavigateTo string `json:"navigate_to,omitempty"`
}

func failure(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Dispatcher executes decoded directives against the stores. Each executor
// validates its one required field and reports failures as results, never as
// errors; nothing here is fatal to the caller.
type Dispatcher struct {
	maintenance MaintenanceStore
	inventory   InventoryStore
	projects    ProjectStore
	vendors     VendorStore
	log         *slog.Logger

	now func() time.Time
}

// NewDispatcher wires a Dispatcher to the four mutable stores.
func NewDispatcher(m MaintenanceStore, i InventoryStore, p ProjectStore, v VendorStore, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		maintenance: m,
		inventory:   i,
		projects:    p,
		vendors:     v,
		log:         log,
		now:         time.Now,
	}
}

// Execute runs one directive. Directives that only make sense client-side or
// in the assistant layer (search, context display) report a failure here.
func (d *Dispatcher) Execute(dir *Directive) Result {
	switch dir.Type {
	case ActionAddMaintenanceTask:
		return d.addMaintenanceTask(dir.Task)
	case ActionAddInventoryItem:
		return d.addInventoryItem(dir.Item)
	case ActionAddProject:
		return d.addProject(dir.Project)
	case ActionAddVendor:
		return d.addVendor(dir.Vendor)
	case ActionNavigateTo:
		return d.navigateTo(dir.Navigate)
	case ActionCompleteTask:
		return d.completeTask(dir.CompleteTask)
	default:
		return failure("action %q cannot be executed here", dir.Type)
	}
}

func (d *Dispatcher) addMaintenanceTask(p *TaskParams) Result {
	if p == nil || strings.TrimSpace(p.Title) == "" {
		return failure("a task needs a title")
	}

	task := storage.MaintenanceTask{
		ID:         newID("task", d.now()),
		Title:      strings.TrimSpace(p.Title),
		Category:   p.Category,
		Priority:   taskPriority(p.Priority),
		Status:     storage.TaskPending,
		DueDate:    p.DueDate,
		Recurrence: recurrence(p.Recurrence),
		Notes:      p.Notes,
		CreatedAt:  d.now(),
	}
	if err := d.maintenance.SaveMaintenanceTask(task); err != nil {
		d.log.Error("add maintenance task failed", "error", err)
		return failure("could not save task: %v", err)
	}
	return Result{
		Success:    true,
		Message:    fmt.Sprintf("Added task %q", task.Title),
		NavigateTo: "/maintenance",
	}
}

func (d *Dispatcher) addInventoryItem(p *ItemParams) Result {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return failure("an inventory item needs a name")
	}

	item := storage.InventoryItem{
		ID:            newID("item", d.now()),
		Name:          strings.TrimSpace(p.Name),
		Category:      p.Category,
		Location:      p.Location,
		Brand:         p.Brand,
		Model:         p.Model,
		SerialNumber:  p.SerialNumber,
		PurchaseDate:  p.PurchaseDate,
		PurchasePrice: p.Price,
		Status:        storage.ItemActive,
		CreatedAt:     d.now(),
		UpdatedAt:     d.now(),
	}
	if err := d.inventory.SaveInventoryItem(item); err != nil {
		d.log.Error("add inventory item failed", "error", err)
		return failure("could not save item: %v", err)
	}
	return Result{
		Success:    true,
		Message:    fmt.Sprintf("Added %q to inventory", item.Name),
		NavigateTo: "/inventory",
	}
}

func (d *Dispatcher) addProject(p *ProjectParams) Result {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return failure("a project needs a name")
	}

	project := storage.Project{
		ID:          newID("proj", d.now()),
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Status:      storage.ProjectPlanning,
		Priority:    taskPriority(p.Priority),
		Budget:      p.Budget,
		CreatedAt:   d.now(),
		UpdatedAt:   d.now(),
	}
	if err := d.projects.SaveProject(project); err != nil {
		d.log.Error("add project failed", "error", err)
		return failure("could not save project: %v", err)
	}
	return Result{
		Success:    true,
		Message:    fmt.Sprintf("Created project %q", project.Name),
		NavigateTo: "/projects",
	}
}

func (d *Dispatcher) addVendor(p *VendorParams) Result {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return failure("a vendor needs a business name")
	}

	vendor := storage.Vendor{
		ID:           newID("ven", d.now()),
		BusinessName: strings.TrimSpace(p.Name),
		Phone:        p.Phone,
		Email:        strings.ToLower(strings.TrimSpace(p.Email)),
		CreatedAt:    d.now(),
	}
	if p.Category != "" {
		vendor.Categories = []string{p.Category}
	}
	if err := d.vendors.SaveVendor(vendor); err != nil {
		d.log.Error("add vendor failed", "error", err)
		return failure("could not save vendor: %v", err)
	}
	return Result{
		Success:    true,
		Message:    fmt.Sprintf("Added vendor %q", vendor.BusinessName),
		NavigateTo: "/vendors",
	}
}

func (d *Dispatcher) navigateTo(p *NavigateParams) Result {
	if p == nil || strings.TrimSpace(p.Route) == "" {
		return failure("navigation needs a route")
	}
	route := strings.TrimSpace(p.Route)
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return Result{Success: true, Message: "Navigating", NavigateTo: route}
}

// completeTask resolves its target by case-insensitive substring match
// against pending task titles only; first match wins. Ambiguity and absence
// both surface as the same not-found failure.
func (d *Dispatcher) completeTask(p *CompleteTaskParams) Result {
	if p == nil || strings.TrimSpace(p.TaskTitle) == "" {
		return failure("completing a task needs a title to match")
	}

	pending, err := d.maintenance.ListPendingTasks()
	if err != nil {
		d.log.Error("complete task: listing pending failed", "error", err)
		return failure("could not look up tasks: %v", err)
	}

	needle := strings.ToLower(strings.TrimSpace(p.TaskTitle))
	for _, t := range pending {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			today := d.now().UTC().Format("2006-01-02")
			if err := d.maintenance.CompleteMaintenanceTask(t.ID, today, p.ActualCost); err != nil {
				d.log.Error("complete task failed", "task_id", t.ID, "error", err)
				return failure("could not complete %q: %v", t.Title, err)
			}
			return Result{
				Success:    true,
				Message:    fmt.Sprintf("Completed %q", t.Title),
				NavigateTo: "/maintenance",
			}
		}
	}

	return failure("could not find a pending task matching %q", p.TaskTitle)
}

// newID stamps a prefixed millisecond id, e.g. task_1718451600000.
func newID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%d", prefix, now.UnixMilli())
}

func taskPriority(s string) storage.TaskPriority {
	switch storage.TaskPriority(strings.ToLower(s)) {
	case storage.PriorityLow, storage.PriorityMedium, storage.PriorityHigh, storage.PriorityUrgent:
		return storage.TaskPriority(strings.ToLower(s))
	default:
		return storage.PriorityMedium
	}
}

func recurrence(s string) storage.Recurrence {
	switch storage.Recurrence(strings.ToLower(s)) {
	case storage.RecurWeekly, storage.RecurMonthly, storage.RecurQuarterly, storage.RecurBiannual, storage.RecurAnnual:
		return storage.Recurrence(strings.ToLower(s))
	default:
		return storage.RecurNone
	}
}
