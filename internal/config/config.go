package config

// Config holds all runtime settings. Values come from defaults, the JSON
// config file, and HOMETRACKER_* environment variables, in that order.
type Config struct {
	Server  ServerConfig
	Ollama  OllamaConfig
	Storage StorageConfig
	API     APIConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type OllamaConfig struct {
	BaseURL   string
	FastModel string
	DeepModel string
}

type StorageConfig struct {
	DataDir string
}

type APIConfig struct {
	// Token is the bearer token required on HTTP API requests. Generated
	// into the secrets file on first run when not set explicitly.
	Token string
	// RateRPS and RateBurst configure the per-client token bucket.
	RateRPS   float64
	RateBurst int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Ollama: OllamaConfig{
			BaseURL:   "http://localhost:11434",
			FastModel: "phi3.5",
			DeepModel: "mistral-nemo",
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		API: APIConfig{
			RateRPS:   10,
			RateBurst: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/hometracker/config.json, applies HOMETRACKER_*
// environment overrides, and resolves the API token from the secrets
// file, generating one on first run.
func Load() (Config, error) {
	return loadWith(newFileBackend(), fileSecrets{})
}

// secrets abstracts the secrets file for testing.
type secrets interface {
	Get(account string) (string, error)
	Set(account, value string) error
}

func loadWith(b ConfigBackend, sec secrets) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.API.Token == "" {
		token, err := sec.Get("api_token")
		if err != nil {
			return Config{}, err
		}
		if token == "" {
			token = generateToken()
			if err := sec.Set("api_token", token); err != nil {
				return Config{}, err
			}
		}
		cfg.API.Token = token
	}

	return cfg, nil
}
