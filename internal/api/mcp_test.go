package api

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hometrackerhq/hometracker/internal/homectx"
	"github.com/hometrackerhq/hometracker/internal/household"
	"github.com/hometrackerhq/hometracker/internal/ingest"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return MCPDeps{
		Store:   store,
		Profile: household.NewManager(store),
		Builder: homectx.NewBuilder(store, store, store, store, store, store),
	}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPAddMaintenanceTask(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	handler := mcpAddMaintenanceTask(deps)

	res, err := handler(context.Background(), makeCallToolRequest("add_maintenance_task", map[string]interface{}{
		"title":    "Clean gutters",
		"due_date": "2025-07-01",
		"priority": "high",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, res))
	}

	tasks, err := store.ListPendingTasks()
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Clean gutters" || tasks[0].Priority != storage.PriorityHigh {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestMCPAddMaintenanceTaskRequiresTitle(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpAddMaintenanceTask(deps)

	res, err := handler(context.Background(), makeCallToolRequest("add_maintenance_task", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing title")
	}
}

func TestMCPCompleteTask(t *testing.T) {
	deps, store := newTestMCPDeps(t)

	task := storage.MaintenanceTask{
		ID:        "task_1",
		Title:     "Replace HVAC filter",
		Priority:  storage.PriorityMedium,
		Status:    storage.TaskPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveMaintenanceTask(task); err != nil {
		t.Fatalf("SaveMaintenanceTask: %v", err)
	}

	handler := mcpCompleteTask(deps)
	res, err := handler(context.Background(), makeCallToolRequest("complete_task", map[string]interface{}{
		"title":       "hvac",
		"actual_cost": 25.5,
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, res))
	}

	got, err := store.GetMaintenanceTask("task_1")
	if err != nil {
		t.Fatalf("GetMaintenanceTask: %v", err)
	}
	if got.Status != storage.TaskCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if got.ActualCost == nil || *got.ActualCost != 25.5 {
		t.Errorf("ActualCost = %v, want 25.5", got.ActualCost)
	}
}

func TestMCPCompleteTaskNotFound(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpCompleteTask(deps)

	res, err := handler(context.Background(), makeCallToolRequest("complete_task", map[string]interface{}{
		"title": "nonexistent",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for unmatched title")
	}
}

func TestMCPLogDocument(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	handler := mcpLogDocument(deps)

	res, err := handler(context.Background(), makeCallToolRequest("log_document", map[string]interface{}{
		"name":     "receipt.txt",
		"content":  "Home Depot total $89.97",
		"category": "receipt",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, res))
	}

	job, err := store.ClaimNextJob([]string{ingest.JobTypeDocumentExtract})
	if err != nil {
		t.Fatalf("ClaimNextJob: %v", err)
	}
	if job == nil {
		t.Fatal("no extraction job enqueued")
	}
}

func TestMCPGetHomeContextSummary(t *testing.T) {
	deps, store := newTestMCPDeps(t)

	item := storage.InventoryItem{
		ID:        "item_1",
		Name:      "Dishwasher",
		Status:    storage.ItemActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.SaveInventoryItem(item); err != nil {
		t.Fatalf("SaveInventoryItem: %v", err)
	}

	handler := mcpGetHomeContext(deps)
	res, err := handler(context.Background(), makeCallToolRequest("get_home_context", map[string]interface{}{
		"tier": "summary",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, res))
	}
	if text := toolText(t, res); !strings.Contains(text, "1 items") {
		t.Errorf("summary = %q, want item count", text)
	}
}

func TestMCPResourceSummary(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpResourceSummary(deps)

	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "home://summary"},
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d entries, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if tc.Text == "" {
		t.Error("empty summary resource")
	}
}
