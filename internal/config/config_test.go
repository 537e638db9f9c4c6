package config

import (
	"strings"
	"testing"
)

// memBackend is an in-memory ConfigBackend for tests.
type memBackend struct {
	strings map[string]string
	ints    map[string]int
}

func newMemBackend() *memBackend {
	return &memBackend{strings: make(map[string]string), ints: make(map[string]int)}
}

func (m *memBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *memBackend) SetString(key, val string) error {
	m.strings[key] = val
	return nil
}

func (m *memBackend) SetInt(key string, val int) error {
	m.ints[key] = val
	return nil
}

func (m *memBackend) Delete(key string) error {
	delete(m.strings, key)
	delete(m.ints, key)
	return nil
}

// mockSecrets is a test double for the secrets file.
type mockSecrets struct {
	values map[string]string
	sets   int
}

func newMockSecrets() *mockSecrets {
	return &mockSecrets{values: make(map[string]string)}
}

func (m *mockSecrets) Get(account string) (string, error) {
	return m.values[account], nil
}

func (m *mockSecrets) Set(account, value string) error {
	m.values[account] = value
	m.sets++
	return nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(newMemBackend(), newMockSecrets())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want 4100", cfg.Server.Port)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("Ollama.BaseURL = %q, want %q", cfg.Ollama.BaseURL, "http://localhost:11434")
	}
	if cfg.Ollama.FastModel != "phi3.5" {
		t.Errorf("Ollama.FastModel = %q, want %q", cfg.Ollama.FastModel, "phi3.5")
	}
	if cfg.Ollama.DeepModel != "mistral-nemo" {
		t.Errorf("Ollama.DeepModel = %q, want %q", cfg.Ollama.DeepModel, "mistral-nemo")
	}
	if cfg.API.RateRPS != 10 {
		t.Errorf("API.RateRPS = %v, want 10", cfg.API.RateRPS)
	}
	if cfg.API.RateBurst != 30 {
		t.Errorf("API.RateBurst = %d, want 30", cfg.API.RateBurst)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
}

func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := newMemBackend()
	b.ints["server.port"] = 5000
	b.strings["ollama.base_url"] = "http://custom:11434"
	b.strings["ollama.fast_model"] = "custom-fast"
	b.strings["storage.data_dir"] = "/tmp/hometracker-test"
	b.strings["api.rate_rps"] = "2.5"
	b.strings["log.level"] = "debug"

	cfg, err := loadWith(b, newMockSecrets())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Ollama.BaseURL != "http://custom:11434" {
		t.Errorf("Ollama.BaseURL = %q", cfg.Ollama.BaseURL)
	}
	if cfg.Ollama.FastModel != "custom-fast" {
		t.Errorf("Ollama.FastModel = %q", cfg.Ollama.FastModel)
	}
	if cfg.Storage.DataDir != "/tmp/hometracker-test" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.API.RateRPS != 2.5 {
		t.Errorf("API.RateRPS = %v, want 2.5", cfg.API.RateRPS)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)

	b := newMemBackend()
	b.ints["server.port"] = 5000

	t.Setenv("HOMETRACKER_SERVER_PORT", "6000")
	t.Setenv("HOMETRACKER_OLLAMA_DEEP_MODEL", "env-deep")

	cfg, err := loadWith(b, newMockSecrets())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 6000 {
		t.Errorf("Server.Port = %d, want env override 6000", cfg.Server.Port)
	}
	if cfg.Ollama.DeepModel != "env-deep" {
		t.Errorf("Ollama.DeepModel = %q, want %q", cfg.Ollama.DeepModel, "env-deep")
	}
}

func TestTokenFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOMETRACKER_API_TOKEN", "env-token")

	sec := newMockSecrets()
	cfg, err := loadWith(newMemBackend(), sec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.Token != "env-token" {
		t.Errorf("API.Token = %q, want %q", cfg.API.Token, "env-token")
	}
	if sec.sets != 0 {
		t.Errorf("secrets written %d times, want 0 when env token is set", sec.sets)
	}
}

func TestTokenFromSecretsFile(t *testing.T) {
	clearEnv(t)

	sec := newMockSecrets()
	sec.values["api_token"] = "stored-token"

	cfg, err := loadWith(newMemBackend(), sec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.Token != "stored-token" {
		t.Errorf("API.Token = %q, want %q", cfg.API.Token, "stored-token")
	}
}

func TestTokenGeneratedOnFirstRun(t *testing.T) {
	clearEnv(t)

	sec := newMockSecrets()
	cfg, err := loadWith(newMemBackend(), sec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.Token == "" {
		t.Fatal("API.Token empty, want a generated token")
	}
	if sec.values["api_token"] != cfg.API.Token {
		t.Error("generated token was not persisted to the secrets file")
	}
	if len(cfg.API.Token) != 48 {
		t.Errorf("token length = %d, want 48 hex chars", len(cfg.API.Token))
	}
}

func TestShowAllHidesSecrets(t *testing.T) {
	cfg := defaults()
	cfg.API.Token = "should-not-appear"

	for _, info := range ShowAll(cfg) {
		if info.Key == "api.token" {
			t.Error("ShowAll listed the secret api.token key")
		}
		if strings.Contains(info.Value, "should-not-appear") {
			t.Errorf("ShowAll leaked the token via %s", info.Key)
		}
	}
}

func TestValidKeys(t *testing.T) {
	keys := ValidKeys()
	want := map[string]bool{
		"server.port": true, "ollama.base_url": true, "log.level": true,
	}
	got := make(map[string]bool, len(keys))
	for _, k := range keys {
		got[k] = true
		if k == "api.token" {
			t.Error("ValidKeys included the secret api.token")
		}
	}
	for k := range want {
		if !got[k] {
			t.Errorf("ValidKeys missing %s", k)
		}
	}
}
