package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hometrackerhq/hometracker/internal/homectx"
	"github.com/hometrackerhq/hometracker/internal/household"
	"github.com/hometrackerhq/hometracker/internal/ingest"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store   *storage.Store
	Profile *household.Manager
	Builder *homectx.Builder
}

// NewMCPServer creates an MCP server with all HomeTracker tools and
// resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"hometracker",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("HomeTracker: local household management covering inventory, maintenance, projects, vendors, warranties, and documents."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("get_home_context",
			mcp.WithDescription("Get the current home status snapshot at a chosen detail tier."),
			mcp.WithString("tier", mcp.Description("One of: full, prose, compact, summary (default full)")),
		),
		mcpGetHomeContext(deps),
	)

	s.AddTool(
		mcp.NewTool("add_maintenance_task",
			mcp.WithDescription("Create a new maintenance task."),
			mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
			mcp.WithString("due_date", mcp.Description("Due date in YYYY-MM-DD format")),
			mcp.WithString("priority", mcp.Description("One of: low, medium, high, urgent (default medium)")),
			mcp.WithString("category", mcp.Description("Task category, e.g. hvac, plumbing")),
		),
		mcpAddMaintenanceTask(deps),
	)

	s.AddTool(
		mcp.NewTool("complete_task",
			mcp.WithDescription("Mark a pending maintenance task as completed, found by title substring."),
			mcp.WithString("title", mcp.Description("Title or part of the title of the task"), mcp.Required()),
			mcp.WithNumber("actual_cost", mcp.Description("Actual cost of the work, if any")),
		),
		mcpCompleteTask(deps),
	)

	s.AddTool(
		mcp.NewTool("add_inventory_item",
			mcp.WithDescription("Add an item to the home inventory."),
			mcp.WithString("name", mcp.Description("Item name"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Item category")),
			mcp.WithString("location", mcp.Description("Where the item lives")),
			mcp.WithString("brand", mcp.Description("Brand name")),
			mcp.WithNumber("purchase_price", mcp.Description("Purchase price")),
		),
		mcpAddInventoryItem(deps),
	)

	s.AddTool(
		mcp.NewTool("log_document",
			mcp.WithDescription("Store a text document (receipt, invoice, note) and queue it for extraction."),
			mcp.WithString("name", mcp.Description("Document name"), mcp.Required()),
			mcp.WithString("content", mcp.Description("The document text"), mcp.Required()),
			mcp.WithString("category", mcp.Description("One of: manual, receipt, invoice, warranty, photo, other")),
		),
		mcpLogDocument(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"home://summary",
			"Home Summary",
			mcp.WithResourceDescription("One-line home status summary"),
			mcp.WithMIMEType("text/plain"),
		),
		mcpResourceSummary(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"home://profile",
			"Household Profile",
			mcp.WithResourceDescription("Current household profile as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	return s
}

func mcpGetHomeContext(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hc, err := deps.Builder.Build(ctx, time.Now().UTC())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to build context: %v", err)), nil
		}

		switch req.GetString("tier", "full") {
		case "full":
			return mcpText(hc.ToPrompt(contextPromptMaxLength)), nil
		case "prose":
			return mcpText(hc.ToNaturalLanguage()), nil
		case "compact":
			text, err := hc.ToCompactJSON()
			if err != nil {
				return mcpError(fmt.Sprintf("failed to encode context: %v", err)), nil
			}
			return mcpText(text), nil
		case "summary":
			return mcpText(hc.SummaryLine()), nil
		default:
			return mcpError("unknown tier; use full, prose, compact, or summary"), nil
		}
	}
}

func mcpAddMaintenanceTask(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcpError("title is required"), nil
		}

		priority := storage.TaskPriority(req.GetString("priority", string(storage.PriorityMedium)))
		switch priority {
		case storage.PriorityLow, storage.PriorityMedium, storage.PriorityHigh, storage.PriorityUrgent:
		default:
			priority = storage.PriorityMedium
		}

		task := storage.MaintenanceTask{
			ID:         uuid.New().String(),
			Title:      title,
			Category:   req.GetString("category", ""),
			Priority:   priority,
			Status:     storage.TaskPending,
			DueDate:    req.GetString("due_date", ""),
			Recurrence: storage.RecurNone,
			CreatedAt:  time.Now().UTC(),
		}
		if err := deps.Store.SaveMaintenanceTask(task); err != nil {
			return mcpError(fmt.Sprintf("failed to save task: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Added task %q (%s)", task.Title, task.ID)), nil
	}
}

func mcpCompleteTask(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcpError("title is required"), nil
		}

		pending, err := deps.Store.ListPendingTasks()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list tasks: %v", err)), nil
		}

		task, ok := findTaskByTitle(pending, title)
		if !ok {
			return mcpError(fmt.Sprintf("no pending task matching %q", title)), nil
		}

		var cost *float64
		if c := req.GetFloat("actual_cost", 0); c > 0 {
			cost = &c
		}

		today := time.Now().UTC().Format("2006-01-02")
		if err := deps.Store.CompleteMaintenanceTask(task.ID, today, cost); err != nil {
			return mcpError(fmt.Sprintf("failed to complete task: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Completed %q", task.Title)), nil
	}
}

func mcpAddInventoryItem(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}

		var price *float64
		if p := req.GetFloat("purchase_price", 0); p > 0 {
			price = &p
		}

		item := storage.InventoryItem{
			ID:            uuid.New().String(),
			Name:          name,
			Category:      req.GetString("category", ""),
			Location:      req.GetString("location", ""),
			Brand:         req.GetString("brand", ""),
			PurchasePrice: price,
			Status:        storage.ItemActive,
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		}
		if err := deps.Store.SaveInventoryItem(item); err != nil {
			return mcpError(fmt.Sprintf("failed to save item: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Added %q to inventory (%s)", item.Name, item.ID)), nil
	}
}

func mcpLogDocument(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}

		doc := storage.Document{
			ID:          uuid.New().String(),
			Name:        name,
			Category:    storage.DocumentCategory(req.GetString("category", string(storage.DocOther))),
			ContentType: "text/plain",
			Data:        []byte(content),
			UploadDate:  time.Now().UTC(),
		}
		if err := deps.Store.SaveDocument(doc); err != nil {
			return mcpError(fmt.Sprintf("failed to save document: %v", err)), nil
		}

		payload, err := ingest.NewExtractJob(doc.ID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to create job payload: %v", err)), nil
		}
		job := storage.Job{
			ID:          uuid.New().String(),
			Type:        ingest.JobTypeDocumentExtract,
			PayloadJSON: payload,
		}
		if err := deps.Store.EnqueueJob(job); err != nil {
			return mcpError(fmt.Sprintf("saved document but failed to queue extraction: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Stored document %s, extraction queued", doc.ID)), nil
	}
}

func mcpResourceSummary(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		hc, err := deps.Builder.Build(ctx, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to build context: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/plain",
				Text:     hc.SummaryLine(),
			},
		}, nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p, err := deps.Profile.GetProfile()
		if err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}

		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

// findTaskByTitle returns the first pending task whose title contains the
// query, case-insensitively.
func findTaskByTitle(tasks []storage.MaintenanceTask, query string) (storage.MaintenanceTask, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return storage.MaintenanceTask{}, false
	}
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) {
			return t, true
		}
	}
	return storage.MaintenanceTask{}, false
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
