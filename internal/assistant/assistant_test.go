package assistant

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hometrackerhq/hometracker/internal/action"
	"github.com/hometrackerhq/hometracker/internal/homectx"
	"github.com/hometrackerhq/hometracker/internal/ollama"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

type fakeEngine struct {
	resp     string
	captured []ollama.Message
}

func (f *fakeEngine) Chat(_ context.Context, _ string, messages []ollama.Message, _ *ollama.Schema) (string, error) {
	f.captured = messages
	return f.resp, nil
}

type fakeProfile struct{}

func (fakeProfile) GetSummary() (string, error) {
	return "Home: single-family, built 1987.", nil
}

type fakeChats struct {
	saved   []storage.ChatMessage
	history []storage.ChatMessage
}

func (f *fakeChats) SaveChatMessage(m storage.ChatMessage) error {
	f.saved = append(f.saved, m)
	return nil
}

func (f *fakeChats) RecentChatMessages(limit int) ([]storage.ChatMessage, error) {
	return f.history, nil
}

type emptyRepos struct {
	tasks []storage.MaintenanceTask
}

func (r *emptyRepos) ListInventoryItems() ([]storage.InventoryItem, error)     { return nil, nil }
func (r *emptyRepos) ListMaintenanceTasks() ([]storage.MaintenanceTask, error) { return r.tasks, nil }
func (r *emptyRepos) ListProjects() ([]storage.Project, error)                 { return nil, nil }
func (r *emptyRepos) ListVendors() ([]storage.Vendor, error)                   { return nil, nil }
func (r *emptyRepos) ListWarranties() ([]storage.Warranty, error)              { return nil, nil }
func (r *emptyRepos) ListDocuments(limit int) ([]storage.Document, error)      { return nil, nil }
func (r *emptyRepos) CountDocumentsByCategory() (map[string]int, error)        { return nil, nil }

type dispatcherStores struct {
	tasks     []storage.MaintenanceTask
	completed []string
}

func (d *dispatcherStores) SaveMaintenanceTask(t storage.MaintenanceTask) error {
	d.tasks = append(d.tasks, t)
	return nil
}
func (d *dispatcherStores) ListPendingTasks() ([]storage.MaintenanceTask, error) {
	return d.tasks, nil
}
func (d *dispatcherStores) CompleteMaintenanceTask(id, completedDate string, actualCost *float64) error {
	d.completed = append(d.completed, id)
	return nil
}
func (d *dispatcherStores) SaveInventoryItem(storage.InventoryItem) error { return nil }
func (d *dispatcherStores) SaveProject(storage.Project) error             { return nil }
func (d *dispatcherStores) SaveVendor(storage.Vendor) error               { return nil }

func newTestAssistant(engine *fakeEngine, chats *fakeChats, stores *dispatcherStores) *Assistant {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := &emptyRepos{}
	builder := homectx.NewBuilder(repos, repos, repos, repos, repos, repos)
	dispatcher := action.NewDispatcher(stores, stores, stores, stores, log)

	a := New(builder, fakeProfile{}, chats, engine, dispatcher, "llama3.2", log)
	a.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestChatPlainReply(t *testing.T) {
	engine := &fakeEngine{resp: "Your next task is cleaning the gutters."}
	chats := &fakeChats{}

	reply, err := newTestAssistant(engine, chats, &dispatcherStores{}).Chat(context.Background(), "what's next?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if reply.Action != nil {
		t.Errorf("Action = %+v, want nil for plain reply", reply.Action)
	}
	if reply.Message != "Your next task is cleaning the gutters." {
		t.Errorf("Message = %q", reply.Message)
	}
	if len(chats.saved) != 2 {
		t.Errorf("persisted %d messages, want user and assistant turns", len(chats.saved))
	}
}

func TestChatSystemPromptGrounded(t *testing.T) {
	engine := &fakeEngine{resp: "ok"}

	_, err := newTestAssistant(engine, &fakeChats{}, &dispatcherStores{}).Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if len(engine.captured) == 0 || engine.captured[0].Role != "system" {
		t.Fatalf("first message should be the system prompt: %+v", engine.captured)
	}
	system := engine.captured[0].Content
	for _, want := range []string{"Maple", "built 1987", "Home Status (2025-06-15)"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestChatExecutesDirective(t *testing.T) {
	engine := &fakeEngine{resp: "I'll add that task.\n```json\n{\"action\":\"add_maintenance_task\",\"params\":{\"title\":\"Clean gutters\"}}\n```"}
	stores := &dispatcherStores{}

	reply, err := newTestAssistant(engine, &fakeChats{}, stores).Chat(context.Background(), "remind me to clean the gutters")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if reply.Action == nil || !reply.Action.Success {
		t.Fatalf("Action = %+v, want executed directive", reply.Action)
	}
	if len(stores.tasks) != 1 || stores.tasks[0].Title != "Clean gutters" {
		t.Errorf("tasks = %+v", stores.tasks)
	}
	if reply.NavigateTo != "/maintenance" {
		t.Errorf("NavigateTo = %q", reply.NavigateTo)
	}
	if strings.Contains(reply.Message, "```") {
		t.Errorf("Message still contains the directive fence: %q", reply.Message)
	}
}

func TestChatMalformedDirectiveSurfaced(t *testing.T) {
	engine := &fakeEngine{resp: "```json\n{\"action\":\"add_project\",\"params\":{\"name\": }\n```"}

	reply, err := newTestAssistant(engine, &fakeChats{}, &dispatcherStores{}).Chat(context.Background(), "start a project")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Action == nil || reply.Action.Success {
		t.Errorf("Action = %+v, want surfaced failure", reply.Action)
	}
}

func TestChatHistoryIncluded(t *testing.T) {
	engine := &fakeEngine{resp: "ok"}
	chats := &fakeChats{history: []storage.ChatMessage{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}}

	_, err := newTestAssistant(engine, chats, &dispatcherStores{}).Chat(context.Background(), "follow-up")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	// system + 2 history + current user message
	if len(engine.captured) != 4 {
		t.Fatalf("sent %d messages, want 4", len(engine.captured))
	}
	if engine.captured[1].Content != "earlier question" {
		t.Errorf("history not included in order: %+v", engine.captured)
	}
}

func TestChatEmptyMessage(t *testing.T) {
	_, err := newTestAssistant(&fakeEngine{}, &fakeChats{}, &dispatcherStores{}).Chat(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestSelectContextTierDegrades(t *testing.T) {
	hc := homectx.HomeContext{Today: "2025-06-15"}
	for i := 0; i < 500; i++ {
		hc.Maintenance.Overdue = append(hc.Maintenance.Overdue, storage.MaintenanceTask{
			Title:   strings.Repeat("x", 60),
			DueDate: "2025-01-01",
		})
	}

	_, tier := selectContextTier(hc, 100)
	if tier == "full" {
		t.Errorf("tier = %q, want a degraded tier under a tiny budget", tier)
	}

	small := homectx.HomeContext{Today: "2025-06-15"}
	if _, tier := selectContextTier(small, 100000); tier != "full" {
		t.Errorf("tier = %q, want full under a huge budget", tier)
	}
}
