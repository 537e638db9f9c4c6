package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hometrackerhq/hometracker/internal/assistant"
	"github.com/hometrackerhq/hometracker/internal/homectx"
	"github.com/hometrackerhq/hometracker/internal/household"
	"github.com/hometrackerhq/hometracker/internal/ingest"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

const testToken = "test-token-12345"

type fakeAssistant struct {
	reply   assistant.Reply
	err     error
	history []storage.ChatMessage
	gotMsg  string
}

func (f *fakeAssistant) Chat(ctx context.Context, userMessage string) (assistant.Reply, error) {
	f.gotMsg = userMessage
	return f.reply, f.err
}

func (f *fakeAssistant) History(limit int) ([]storage.ChatMessage, error) {
	return f.history, nil
}

func setupAppHandler(t *testing.T, token string) (http.Handler, *storage.Store, *fakeAssistant) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	fa := &fakeAssistant{reply: assistant.Reply{Message: "ok"}}
	handler := NewAppHandler(AppDeps{
		Store:     store,
		Profile:   household.NewManager(store),
		Builder:   homectx.NewBuilder(store, store, store, store, store, store),
		Assistant: fa,
		Token:     token,
		RateRPS:   1000,
		RateBurst: 1000,
	})
	return handler, store, fa
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func doJSON(t *testing.T, h http.Handler, req *http.Request, wantCode int) map[string]any {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != wantCode {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, wantCode, rr.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestHealthNeedsNoAuth(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestBearerAuthRejects(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	for _, token := range []string{"", "wrong-token"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, authReq(http.MethodGet, "/inventory", "", token))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("token %q: status = %d, want 401", token, rr.Code)
		}
	}
}

func TestRateLimit(t *testing.T) {
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := NewAppHandler(AppDeps{
		Store:     store,
		Profile:   household.NewManager(store),
		Builder:   homectx.NewBuilder(store, store, store, store, store, store),
		Assistant: &fakeAssistant{},
		Token:     testToken,
		RateRPS:   1,
		RateBurst: 2,
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := authReq(http.MethodGet, "/inventory", "", testToken)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestInventoryCRUD(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	resp := doJSON(t, h, authReq(http.MethodPost, "/inventory",
		`{"Name":"Dishwasher","Brand":"Bosch","Location":"kitchen"}`, testToken), http.StatusCreated)
	id, _ := resp["ID"].(string)
	if id == "" {
		t.Fatalf("response missing ID: %v", resp)
	}

	got := doJSON(t, h, authReq(http.MethodGet, "/inventory/"+id, "", testToken), http.StatusOK)
	if got["Name"] != "Dishwasher" || got["Status"] != "active" {
		t.Errorf("got %v", got)
	}

	doJSON(t, h, authReq(http.MethodPut, "/inventory/"+id,
		`{"Name":"Dishwasher","Brand":"Bosch","Location":"garage","Status":"active"}`, testToken), http.StatusOK)
	got = doJSON(t, h, authReq(http.MethodGet, "/inventory/"+id, "", testToken), http.StatusOK)
	if got["Location"] != "garage" {
		t.Errorf("Location = %v after update", got["Location"])
	}

	doJSON(t, h, authReq(http.MethodDelete, "/inventory/"+id, "", testToken), http.StatusOK)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/inventory/"+id, "", testToken))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", rr.Code)
	}
}

func TestCreateInventoryRequiresName(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPost, "/inventory", `{"Brand":"Bosch"}`, testToken))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestTaskCompleteEndpoint(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	resp := doJSON(t, h, authReq(http.MethodPost, "/tasks",
		`{"Title":"Replace HVAC filter","DueDate":"2025-07-01"}`, testToken), http.StatusCreated)
	id := resp["ID"].(string)

	got := doJSON(t, h, authReq(http.MethodPost, "/tasks/"+id+"/complete",
		`{"actual_cost": 25.5}`, testToken), http.StatusOK)
	if got["Status"] != "completed" {
		t.Errorf("Status = %v, want completed", got["Status"])
	}
	if got["CompletedDate"] == "" {
		t.Error("CompletedDate not set")
	}
	if got["ActualCost"].(float64) != 25.5 {
		t.Errorf("ActualCost = %v", got["ActualCost"])
	}

	// Completed tasks drop out of the pending filter.
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/tasks?status=pending", "", testToken))
	var pending []map[string]any
	json.NewDecoder(rr.Body).Decode(&pending)
	if len(pending) != 0 {
		t.Errorf("pending = %d tasks, want 0", len(pending))
	}
}

func TestUploadDocumentQueuesExtraction(t *testing.T) {
	h, store, _ := setupAppHandler(t, testToken)

	body := `{"name":"receipt.txt","category":"receipt","content_type":"text/plain","content":"Home Depot total $89.97"}`
	resp := doJSON(t, h, authReq(http.MethodPost, "/documents", body, testToken), http.StatusCreated)
	if resp["status"] != "queued" {
		t.Errorf("status = %v, want queued", resp["status"])
	}
	docID := resp["id"].(string)

	doc, err := store.GetDocument(docID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Category != storage.DocReceipt || doc.OCRStatus != storage.OCRPending {
		t.Errorf("doc = %+v", doc)
	}

	job, err := store.ClaimNextJob([]string{ingest.JobTypeDocumentExtract})
	if err != nil {
		t.Fatalf("ClaimNextJob: %v", err)
	}
	if job == nil {
		t.Fatal("no extraction job enqueued")
	}
	if !strings.Contains(job.PayloadJSON, docID) {
		t.Errorf("payload %q missing doc id", job.PayloadJSON)
	}
}

func TestUploadDocumentRejectsBadBase64(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	body := `{"name":"scan.pdf","content_type":"application/pdf","content":"not base64!!!"}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPost, "/documents", body, testToken))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestDocumentSuggestions(t *testing.T) {
	h, store, _ := setupAppHandler(t, testToken)

	resp := doJSON(t, h, authReq(http.MethodPost, "/documents",
		`{"name":"receipt.txt","content_type":"text/plain","content":"paid ABC Plumbing"}`, testToken), http.StatusCreated)
	docID := resp["id"].(string)

	stored := `[{"Type":"vendor","TargetID":"ven_1","Confidence":0.8}]`
	if err := store.SetDocumentExtraction(docID, `{}`, stored); err != nil {
		t.Fatalf("SetDocumentExtraction: %v", err)
	}

	got := doJSON(t, h, authReq(http.MethodGet, "/documents/"+docID+"/suggestions", "", testToken), http.StatusOK)
	matches, ok := got["matches"].([]any)
	if !ok || len(matches) != 1 {
		t.Errorf("matches = %v", got["matches"])
	}
	if _, ok := got["links"].([]any); !ok {
		t.Errorf("links = %v, want array", got["links"])
	}
}

func TestContextTiers(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	for _, tier := range []string{"full", "prose", "compact", "summary"} {
		resp := doJSON(t, h, authReq(http.MethodGet, "/context?tier="+tier, "", testToken), http.StatusOK)
		if resp["tier"] != tier {
			t.Errorf("tier = %v, want %s", resp["tier"], tier)
		}
		if resp["context"] == "" {
			t.Errorf("tier %s: empty context", tier)
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/context?tier=verbose", "", testToken))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown tier status = %d, want 400", rr.Code)
	}
}

func TestSummaryCounts(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	doJSON(t, h, authReq(http.MethodPost, "/tasks",
		`{"Title":"Clean gutters","DueDate":"2000-01-01"}`, testToken), http.StatusCreated)

	resp := doJSON(t, h, authReq(http.MethodGet, "/summary", "", testToken), http.StatusOK)
	if resp["overdue_tasks"].(float64) != 1 {
		t.Errorf("overdue_tasks = %v, want 1", resp["overdue_tasks"])
	}
}

func TestChatEndpoint(t *testing.T) {
	h, _, fa := setupAppHandler(t, testToken)
	fa.reply = assistant.Reply{Message: "Added it.", NavigateTo: "/maintenance"}

	resp := doJSON(t, h, authReq(http.MethodPost, "/maple/chat",
		`{"message":"add a task to clean gutters"}`, testToken), http.StatusOK)
	if resp["message"] != "Added it." {
		t.Errorf("message = %v", resp["message"])
	}
	if fa.gotMsg != "add a task to clean gutters" {
		t.Errorf("assistant received %q", fa.gotMsg)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPost, "/maple/chat", `{"message":""}`, testToken))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty message status = %d, want 400", rr.Code)
	}
}

func TestProfilePatchAndGet(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	doJSON(t, h, authReq(http.MethodPatch, "/profile",
		`{"home.type":"single-family","preferences.units":"imperial"}`, testToken), http.StatusOK)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/profile", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "single-family") {
		t.Errorf("profile missing patched field: %s", rr.Body.String())
	}
}
