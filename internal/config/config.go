package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap/zapcore"
)

const maxResultCount = 50

type Config struct {
	APIKey        string `json:"api_key" env:"WEAVE_API_KEY" env-description:"search service API key"`
	ServiceURL    string `json:"service_url" env:"WEAVE_SERVICE_URL" env-description:"search service base URL"`
	EnvironmentID string `json:"environment_id" env:"WEAVE_ENVIRONMENT_ID" env-description:"search environment id"`
	CollectionID  string `json:"collection_id" env:"WEAVE_COLLECTION_ID" env-description:"collection to query"`
	APIVersion    string `json:"api_version" env:"WEAVE_API_VERSION" env-description:"service API version date"`
	ResultCount   int    `json:"result_count" env:"WEAVE_RESULT_COUNT" env-description:"documents requested per query"`
	TimeoutSec    int    `json:"timeout_sec" env:"WEAVE_TIMEOUT_SEC" env-description:"search request timeout in seconds"`
	CohereAPIKey  string `json:"cohere_api_key" env:"CO_API_KEY" env-description:"optional Cohere key for ranking results"`
	RerankModel   string `json:"rerank_model" env:"WEAVE_RERANK_MODEL" env-description:"Cohere rerank model"`
	LogLevel      string `json:"log_level" env:"WEAVE_LOG_LEVEL" env-description:"debug, info, warn or error"`
	LogFile       string `json:"log_file" env:"WEAVE_LOG_FILE" env-description:"diagnostic log path"`
	MetricsFile   string `json:"metrics_file" env:"WEAVE_METRICS_FILE" env-description:"write run metrics to this file"`
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "weavesearch"), nil
}

func configPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "weavesearch.log"), nil
}

// Load reads the config file, applies environment overrides and defaults.
// A missing file is not an error.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	var cfg Config

	_, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.EnvironmentID == "" {
		c.EnvironmentID = "default"
	}
	if c.CollectionID == "" {
		c.CollectionID = "default"
	}
	if c.APIVersion == "" {
		c.APIVersion = "2019-04-30"
	}
	if c.ResultCount == 0 {
		c.ResultCount = 10
	}
	if c.TimeoutSec == 0 {
		c.TimeoutSec = 30
	}
	if c.RerankModel == "" {
		c.RerankModel = "rerank-v3.5"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	if c.ResultCount < 1 || c.ResultCount > maxResultCount {
		return fmt.Errorf("result_count must be between 1 and %d, got %d", maxResultCount, c.ResultCount)
	}
	if c.TimeoutSec < 1 {
		return fmt.Errorf("timeout_sec must be positive, got %d", c.TimeoutSec)
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Usage describes the environment overrides.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return desc
}

// SaveCredentials stores the search service credentials in the config file.
// Other settings are kept as they are in the file; environment overrides are
// never written.
func SaveCredentials(apiKey, serviceURL string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return SaveCredentialsFile(path, apiKey, serviceURL)
}

func SaveCredentialsFile(path, apiKey, serviceURL string) error {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return err
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.APIKey = apiKey
	cfg.ServiceURL = serviceURL
	return cfg.SaveFile(path)
}

func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	data = append(data, '\n')
	return os.WriteFile(path, data, 0600)
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
