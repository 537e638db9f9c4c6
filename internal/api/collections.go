package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hometrackerhq/hometracker/internal/storage"
)

func registerCollectionRoutes(r chi.Router, deps AppDeps) {
	r.Get("/inventory", handleListInventory(deps))
	r.Post("/inventory", handleCreateInventory(deps))
	r.Get("/inventory/{id}", handleGetInventory(deps))
	r.Put("/inventory/{id}", handleUpdateInventory(deps))
	r.Delete("/inventory/{id}", handleDeleteInventory(deps))

	r.Get("/tasks", handleListTasks(deps))
	r.Post("/tasks", handleCreateTask(deps))
	r.Get("/tasks/{id}", handleGetTask(deps))
	r.Delete("/tasks/{id}", handleDeleteTask(deps))
	r.Post("/tasks/{id}/complete", handleCompleteTask(deps))

	r.Get("/projects", handleListProjects(deps))
	r.Post("/projects", handleCreateProject(deps))
	r.Get("/projects/{id}", handleGetProject(deps))
	r.Put("/projects/{id}", handleUpdateProject(deps))
	r.Delete("/projects/{id}", handleDeleteProject(deps))

	r.Get("/vendors", handleListVendors(deps))
	r.Post("/vendors", handleCreateVendor(deps))
	r.Get("/vendors/{id}", handleGetVendor(deps))
	r.Put("/vendors/{id}", handleUpdateVendor(deps))
	r.Delete("/vendors/{id}", handleDeleteVendor(deps))

	r.Get("/warranties", handleListWarranties(deps))
	r.Post("/warranties", handleCreateWarranty(deps))
	r.Get("/warranties/{id}", handleGetWarranty(deps))
	r.Put("/warranties/{id}", handleUpdateWarranty(deps))
	r.Delete("/warranties/{id}", handleDeleteWarranty(deps))
}

// decodeBody decodes a JSON request body into dst with the standard size cap.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusNotFound, "not_found", "%s not found", what)
		return
	}
	httpError(w, http.StatusInternalServerError, "api_error", "%s: %v", what, err)
}

// --- inventory ---

func handleListInventory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := deps.Store.ListInventoryItems()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list inventory: %v", err)
			return
		}
		if items == nil {
			items = []storage.InventoryItem{}
		}
		writeJSON(w, items)
	}
}

func handleCreateInventory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item storage.InventoryItem
		if !decodeBody(w, r, &item) {
			return
		}
		if item.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}
		item.ID = uuid.New().String()
		item.CreatedAt = time.Now().UTC()
		item.UpdatedAt = item.CreatedAt
		if item.Status == "" {
			item.Status = storage.ItemActive
		}
		if err := deps.Store.SaveInventoryItem(item); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save item: %v", err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, item)
	}
}

func handleGetInventory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := deps.Store.GetInventoryItem(chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err, "inventory item")
			return
		}
		writeJSON(w, item)
	}
}

func handleUpdateInventory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item storage.InventoryItem
		if !decodeBody(w, r, &item) {
			return
		}
		item.ID = chi.URLParam(r, "id")
		item.UpdatedAt = time.Now().UTC()
		if err := deps.Store.UpdateInventoryItem(item); err != nil {
			writeStoreError(w, err, "inventory item")
			return
		}
		writeJSON(w, item)
	}
}

func handleDeleteInventory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteInventoryItem(chi.URLParam(r, "id")); err != nil {
			writeStoreError(w, err, "inventory item")
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

// --- maintenance tasks ---

func handleListTasks(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tasks []storage.MaintenanceTask
		var err error
		if r.URL.Query().Get("status") == string(storage.TaskPending) {
			tasks, err = deps.Store.ListPendingTasks()
		} else {
			tasks, err = deps.Store.ListMaintenanceTasks()
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list tasks: %v", err)
			return
		}
		if tasks == nil {
			tasks = []storage.MaintenanceTask{}
		}
		writeJSON(w, tasks)
	}
}

func handleCreateTask(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var task storage.MaintenanceTask
		if !decodeBody(w, r, &task) {
			return
		}
		if task.Title == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "title is required")
			return
		}
		task.ID = uuid.New().String()
		task.Status = storage.TaskPending
		task.CreatedAt = time.Now().UTC()
		if task.Priority == "" {
			task.Priority = storage.PriorityMedium
		}
		if task.Recurrence == "" {
			task.Recurrence = storage.RecurNone
		}
		if err := deps.Store.SaveMaintenanceTask(task); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save task: %v", err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, task)
	}
}

func handleGetTask(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task, err := deps.Store.GetMaintenanceTask(chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err, "task")
			return
		}
		writeJSON(w, task)
	}
}

func handleDeleteTask(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteMaintenanceTask(chi.URLParam(r, "id")); err != nil {
			writeStoreError(w, err, "task")
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

type completeTaskRequest struct {
	CompletedDate string   `json:"completed_date"`
	ActualCost    *float64 `json:"actual_cost"`
}

func handleCompleteTask(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeTaskRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.CompletedDate == "" {
			req.CompletedDate = time.Now().UTC().Format("2006-01-02")
		}
		id := chi.URLParam(r, "id")
		if err := deps.Store.CompleteMaintenanceTask(id, req.CompletedDate, req.ActualCost); err != nil {
			writeStoreError(w, err, "task")
			return
		}
		task, err := deps.Store.GetMaintenanceTask(id)
		if err != nil {
			writeStoreError(w, err, "task")
			return
		}
		writeJSON(w, task)
	}
}

// --- projects ---

func handleListProjects(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := deps.Store.ListProjects()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list projects: %v", err)
			return
		}
		if projects == nil {
			projects = []storage.Project{}
		}
		writeJSON(w, projects)
	}
}

func handleCreateProject(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p storage.Project
		if !decodeBody(w, r, &p) {
			return
		}
		if p.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}
		p.ID = uuid.New().String()
		p.CreatedAt = time.Now().UTC()
		p.UpdatedAt = p.CreatedAt
		if p.Status == "" {
			p.Status = storage.ProjectPlanning
		}
		if err := deps.Store.SaveProject(p); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save project: %v", err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, p)
	}
}

func handleGetProject(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Store.GetProject(chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err, "project")
			return
		}
		writeJSON(w, p)
	}
}

func handleUpdateProject(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p storage.Project
		if !decodeBody(w, r, &p) {
			return
		}
		p.ID = chi.URLParam(r, "id")
		p.UpdatedAt = time.Now().UTC()
		if err := deps.Store.UpdateProject(p); err != nil {
			writeStoreError(w, err, "project")
			return
		}
		writeJSON(w, p)
	}
}

func handleDeleteProject(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteProject(chi.URLParam(r, "id")); err != nil {
			writeStoreError(w, err, "project")
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

// --- vendors ---

func handleListVendors(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendors, err := deps.Store.ListVendors()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list vendors: %v", err)
			return
		}
		if vendors == nil {
			vendors = []storage.Vendor{}
		}
		writeJSON(w, vendors)
	}
}

func handleCreateVendor(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v storage.Vendor
		if !decodeBody(w, r, &v) {
			return
		}
		if v.BusinessName == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "business name is required")
			return
		}
		v.ID = uuid.New().String()
		v.CreatedAt = time.Now().UTC()
		if err := deps.Store.SaveVendor(v); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save vendor: %v", err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, v)
	}
}

func handleGetVendor(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := deps.Store.GetVendor(chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err, "vendor")
			return
		}
		writeJSON(w, v)
	}
}

func handleUpdateVendor(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v storage.Vendor
		if !decodeBody(w, r, &v) {
			return
		}
		v.ID = chi.URLParam(r, "id")
		if err := deps.Store.UpdateVendor(v); err != nil {
			writeStoreError(w, err, "vendor")
			return
		}
		writeJSON(w, v)
	}
}

func handleDeleteVendor(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteVendor(chi.URLParam(r, "id")); err != nil {
			writeStoreError(w, err, "vendor")
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

// --- warranties ---

func handleListWarranties(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warranties, err := deps.Store.ListWarranties()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list warranties: %v", err)
			return
		}
		if warranties == nil {
			warranties = []storage.Warranty{}
		}
		writeJSON(w, warranties)
	}
}

func handleCreateWarranty(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var wa storage.Warranty
		if !decodeBody(w, r, &wa) {
			return
		}
		if wa.Provider == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "provider is required")
			return
		}
		wa.ID = uuid.New().String()
		wa.CreatedAt = time.Now().UTC()
		if wa.Type == "" {
			wa.Type = storage.WarrantyManufacturer
		}
		if err := deps.Store.SaveWarranty(wa); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save warranty: %v", err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, wa)
	}
}

func handleGetWarranty(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wa, err := deps.Store.GetWarranty(chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err, "warranty")
			return
		}
		writeJSON(w, wa)
	}
}

func handleUpdateWarranty(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var wa storage.Warranty
		if !decodeBody(w, r, &wa) {
			return
		}
		wa.ID = chi.URLParam(r, "id")
		if err := deps.Store.UpdateWarranty(wa); err != nil {
			writeStoreError(w, err, "warranty")
			return
		}
		writeJSON(w, wa)
	}
}

func handleDeleteWarranty(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteWarranty(chi.URLParam(r, "id")); err != nil {
			writeStoreError(w, err, "warranty")
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}
