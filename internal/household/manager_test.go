package household

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string

	getAllCalls int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) SetProfileKey(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockStore) GetProfileKey(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *mockStore) GetAllProfileKeys() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getAllCalls++
	cp := make(map[string]string, len(m.data))
	for k, v := range m.data {
		cp[k] = v
	}
	return cp, nil
}

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestGetProfile_Empty(t *testing.T) {
	mgr := NewManager(newMockStore())

	p, err := mgr.GetProfile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Home.Address != "" {
		t.Errorf("expected empty address, got %q", p.Home.Address)
	}
	if len(p.Occupants) != 0 {
		t.Errorf("expected no occupants, got %v", p.Occupants)
	}
}

func TestSetAndGetField(t *testing.T) {
	mgr := NewManager(newMockStore())

	if err := mgr.SetField("home.type", "single-family"); err != nil {
		t.Fatalf("SetField error: %v", err)
	}

	p, err := mgr.GetProfile()
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if p.Home.Type != "single-family" {
		t.Errorf("Home.Type = %q, want single-family", p.Home.Type)
	}
}

func TestGetSummary_Empty(t *testing.T) {
	mgr := NewManager(newMockStore())

	summary, err := mgr.GetSummary()
	if err != nil {
		t.Fatalf("GetSummary error: %v", err)
	}
	if summary == "" {
		t.Error("expected non-empty summary for empty profile")
	}
}

func TestGetSummary_Full(t *testing.T) {
	mgr := NewManager(newMockStore())

	mgr.SetField("home.type", "single-family")
	mgr.SetField("home.year_built", "1987")
	mgr.SetField("preferences.units", "imperial")
	mgr.SetField("occupants", []string{"2 adults", "1 dog"})

	summary, err := mgr.GetSummary()
	if err != nil {
		t.Fatalf("GetSummary error: %v", err)
	}

	for _, want := range []string{"single-family", "built 1987", "imperial", "2 adults"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q: %s", want, summary)
		}
	}
}

func TestGetSummary_TokenBudget(t *testing.T) {
	mgr := NewManager(newMockStore())

	notes := make([]string, 50)
	for i := range notes {
		notes[i] = "The previous owner replaced the roof with architectural shingles sometime before the sale closed"
	}
	mgr.SetField("notes", notes)

	summary, err := mgr.GetSummary()
	if err != nil {
		t.Fatalf("GetSummary error: %v", err)
	}
	if tokens := len(summary) / 4; tokens >= 500 {
		t.Errorf("summary too long: %d estimated tokens (len=%d)", tokens, len(summary))
	}
}

func TestCacheTTL(t *testing.T) {
	store := newMockStore()
	clock := &mockClock{now: time.Now()}
	mgr := NewManagerWithClock(store, clock, 60*time.Second)

	mgr.SetField("home.type", "condo")

	mgr.GetProfile()
	mgr.GetProfile()

	store.mu.Lock()
	calls := store.getAllCalls
	store.mu.Unlock()

	if calls != 1 {
		t.Errorf("expected 1 store call (cache hit on second), got %d", calls)
	}
}

func TestCacheInvalidation(t *testing.T) {
	store := newMockStore()
	clock := &mockClock{now: time.Now()}
	ttl := 60 * time.Second
	mgr := NewManagerWithClock(store, clock, ttl)

	mgr.SetField("home.type", "condo")

	mgr.GetProfile()

	clock.Advance(ttl + time.Second)

	mgr.GetProfile()

	store.mu.Lock()
	calls := store.getAllCalls
	store.mu.Unlock()

	if calls != 2 {
		t.Errorf("expected 2 store calls (cache expired), got %d", calls)
	}
}

func TestSetFieldInvalidatesCache(t *testing.T) {
	store := newMockStore()
	clock := &mockClock{now: time.Now()}
	mgr := NewManagerWithClock(store, clock, time.Hour)

	mgr.GetProfile()
	mgr.SetField("home.type", "townhouse")

	p, err := mgr.GetProfile()
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if p.Home.Type != "townhouse" {
		t.Errorf("Home.Type = %q, want townhouse (stale cache?)", p.Home.Type)
	}
}
