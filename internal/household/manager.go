// Package household provides cached, structured access to the household
// profile stored in SQLite.
package household

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// ProfileStore defines the storage operations the Manager needs.
// Implemented by storage.Store.
type ProfileStore interface {
	SetProfileKey(key, value string) error
	GetProfileKey(key string) (string, error)
	GetAllProfileKeys() (map[string]string, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Manager assembles the flat profile key-value rows into a structured
// Profile, with a short-lived cache in front of the database.
type Manager struct {
	store ProfileStore
	clock Clock
	ttl   time.Duration

	mu       sync.RWMutex
	cached   *Profile
	cachedAt time.Time
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store ProfileStore) *Manager {
	return &Manager{
		store: store,
		clock: realClock{},
		ttl:   60 * time.Second,
	}
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store ProfileStore, clock Clock, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		clock: clock,
		ttl:   ttl,
	}
}

// GetProfile reads all profile keys from storage (or cache) and assembles a
// structured Profile. Returns a zero-value Profile on empty store.
func (m *Manager) GetProfile() (Profile, error) {
	// Fast path: read lock for cache hit.
	m.mu.RLock()
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		p := deepCopyProfile(m.cached)
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	// Slow path: write lock for cache miss.
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock.
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		return deepCopyProfile(m.cached), nil
	}

	keys, err := m.store.GetAllProfileKeys()
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile keys: %w", err)
	}

	p := buildProfile(keys)
	m.cached = &p
	m.cachedAt = m.clock.Now()
	return deepCopyProfile(&p), nil
}

// SetField persists a profile key and invalidates the cache.
func (m *Manager) SetField(key string, value any) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling value for key %q: %w", key, err)
		}
		str = string(b)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SetProfileKey(key, str); err != nil {
		return fmt.Errorf("setting profile key %q: %w", key, err)
	}

	m.cached = nil
	return nil
}

// GetSummary returns a compact string representation of the household
// suitable for injection into a system prompt. Targets < 500 tokens.
func (m *Manager) GetSummary() (string, error) {
	p, err := m.GetProfile()
	if err != nil {
		return "", fmt.Errorf("getting profile for summary: %w", err)
	}
	return summarize(p), nil
}

// maxSummaryChars caps the summary to stay under ~500 tokens (4 chars/token).
const maxSummaryChars = 2000

func summarize(p Profile) string {
	var parts []string

	var homeParts []string
	if p.Home.Type != "" {
		homeParts = append(homeParts, p.Home.Type)
	}
	if p.Home.YearBuilt != "" {
		homeParts = append(homeParts, "built "+p.Home.YearBuilt)
	}
	if p.Home.SquareFeet != "" {
		homeParts = append(homeParts, p.Home.SquareFeet+" sq ft")
	}
	if p.Home.Climate != "" {
		homeParts = append(homeParts, p.Home.Climate+" climate")
	}
	if len(homeParts) > 0 {
		parts = append(parts, fmt.Sprintf("Home: %s.", strings.Join(homeParts, ", ")))
	}
	if p.Home.Address != "" {
		parts = append(parts, fmt.Sprintf("Located at %s.", p.Home.Address))
	}

	if len(p.Occupants) > 0 {
		parts = append(parts, fmt.Sprintf("Occupants: %s.", strings.Join(p.Occupants, ", ")))
	}

	var prefParts []string
	if p.Preferences.Units != "" {
		prefParts = append(prefParts, p.Preferences.Units+" units")
	}
	if p.Preferences.Currency != "" {
		prefParts = append(prefParts, "prices in "+p.Preferences.Currency)
	}
	if p.Preferences.ReminderLeadDays != "" {
		prefParts = append(prefParts, "reminders "+p.Preferences.ReminderLeadDays+" days ahead")
	}
	if len(prefParts) > 0 {
		parts = append(parts, fmt.Sprintf("Prefers: %s.", strings.Join(prefParts, ", ")))
	}

	parts = append(parts, p.Notes...)

	if len(parts) == 0 {
		return "Household profile: not yet configured."
	}

	summary := strings.Join(parts, " ")
	if len(summary) > maxSummaryChars {
		// Ensure we don't split a multi-byte UTF-8 character.
		end := maxSummaryChars
		for end > 0 && !utf8.RuneStart(summary[end]) {
			end--
		}
		if idx := strings.LastIndex(summary[:end], " "); idx > 0 {
			summary = summary[:idx]
		} else {
			summary = summary[:end]
		}
	}
	return summary
}

func deepCopyProfile(p *Profile) Profile {
	if p == nil {
		return Profile{}
	}
	cp := *p

	if p.Occupants != nil {
		cp.Occupants = make([]string, len(p.Occupants))
		copy(cp.Occupants, p.Occupants)
	}
	if p.Notes != nil {
		cp.Notes = make([]string, len(p.Notes))
		copy(cp.Notes, p.Notes)
	}
	return cp
}

// buildProfile assembles a Profile from flat key-value pairs.
// Keys use dot-notation: "home.address", "home.type", "home.year_built",
// "home.square_feet", "home.climate", "preferences.units",
// "preferences.currency", "preferences.reminder_lead_days"; "occupants" and
// "notes" are stored as JSON arrays.
func buildProfile(keys map[string]string) Profile {
	var p Profile

	if v, ok := keys["home.address"]; ok {
		p.Home.Address = v
	}
	if v, ok := keys["home.type"]; ok {
		p.Home.Type = v
	}
	if v, ok := keys["home.year_built"]; ok {
		p.Home.YearBuilt = v
	}
	if v, ok := keys["home.square_feet"]; ok {
		p.Home.SquareFeet = v
	}
	if v, ok := keys["home.climate"]; ok {
		p.Home.Climate = v
	}

	if v, ok := keys["preferences.units"]; ok {
		p.Preferences.Units = v
	}
	if v, ok := keys["preferences.currency"]; ok {
		p.Preferences.Currency = v
	}
	if v, ok := keys["preferences.reminder_lead_days"]; ok {
		p.Preferences.ReminderLeadDays = v
	}

	unmarshalProfileKey(keys, "occupants", &p.Occupants)
	unmarshalProfileKey(keys, "notes", &p.Notes)

	return p
}

// unmarshalProfileKey unmarshals a JSON value from keys into target, logging
// a warning if the value is present but malformed.
func unmarshalProfileKey(keys map[string]string, key string, target any) {
	v, ok := keys[key]
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(v), target); err != nil {
		slog.Warn("malformed profile key, skipping", "key", key, "error", err)
	}
}
