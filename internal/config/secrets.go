package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileSecrets stores secrets as a JSON map at
// $XDG_DATA_HOME/hometracker/secrets.json with 0600 permissions.
type fileSecrets struct{}

func secretsFilePath() string {
	return filepath.Join(defaultDataDir(), "secrets.json")
}

func (fileSecrets) Get(account string) (string, error) {
	data, err := os.ReadFile(secretsFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading secrets file: %w", err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("parsing secrets file: %w", err)
	}
	return m[account], nil
}

func (fileSecrets) Set(account, value string) error {
	path := secretsFilePath()
	m := make(map[string]string)
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("parsing secrets file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading secrets file: %w", err)
	}

	m[account] = value

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func generateToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("generating token: %v", err))
	}
	return hex.EncodeToString(buf)
}
