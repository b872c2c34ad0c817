package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the rfpflow API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Inference InferenceConfig `yaml:"inference"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds cache store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ModelsConfig names the model used per inference capability.
type ModelsConfig struct {
	Summarizer string `yaml:"summarizer"`
	Generator  string `yaml:"generator"`
	Classifier string `yaml:"classifier"`
	Embedder   string `yaml:"embedder"`
}

// InferenceConfig holds inference provider settings.
type InferenceConfig struct {
	Provider   string       `yaml:"provider"`
	APIKey     string       `yaml:"api_key"`
	BaseURL    string       `yaml:"base_url"`
	Models     ModelsConfig `yaml:"models"`
	TimeoutSec int          `yaml:"timeout_sec"`
}

// PipelineConfig holds document processing settings.
type PipelineConfig struct {
	ChunkSize         int    `yaml:"chunk_size"`
	ChunkOverlap      int    `yaml:"chunk_overlap"`
	TopK              int    `yaml:"top_k"`
	CacheTTLSec       int    `yaml:"cache_ttl_sec"`
	Retries           int    `yaml:"retries"`
	SummaryTokenLimit int    `yaml:"summary_token_limit"`
	MaxUploadMB       int    `yaml:"max_upload_mb"`
	TokenEncoding     string `yaml:"token_encoding"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Inference.Provider == "" {
		c.Inference.Provider = "openai"
	}
	if c.Inference.TimeoutSec <= 0 {
		c.Inference.TimeoutSec = 60
	}
	if c.Inference.Models.Summarizer == "" {
		c.Inference.Models.Summarizer = "gpt-4o-mini"
	}
	if c.Inference.Models.Generator == "" {
		c.Inference.Models.Generator = "gpt-4"
	}
	if c.Inference.Models.Classifier == "" {
		c.Inference.Models.Classifier = "gpt-4o-mini"
	}
	if c.Inference.Models.Embedder == "" {
		c.Inference.Models.Embedder = "text-embedding-3-small"
	}
	if c.Pipeline.ChunkSize <= 0 {
		c.Pipeline.ChunkSize = 200
	}
	if c.Pipeline.ChunkOverlap <= 0 {
		c.Pipeline.ChunkOverlap = 40
	}
	if c.Pipeline.TopK <= 0 {
		c.Pipeline.TopK = 3
	}
	if c.Pipeline.CacheTTLSec <= 0 {
		c.Pipeline.CacheTTLSec = 3600
	}
	if c.Pipeline.Retries < 0 {
		c.Pipeline.Retries = 0
	} else if c.Pipeline.Retries == 0 {
		c.Pipeline.Retries = 2
	}
	if c.Pipeline.SummaryTokenLimit <= 0 {
		c.Pipeline.SummaryTokenLimit = 1024
	}
	if c.Pipeline.MaxUploadMB <= 0 {
		c.Pipeline.MaxUploadMB = 25
	}
	if c.Pipeline.TokenEncoding == "" {
		c.Pipeline.TokenEncoding = "cl100k_base"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Inference.APIKey == "" {
		return fmt.Errorf("inference.api_key is required")
	}
	if c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return fmt.Errorf("pipeline.chunk_overlap must be smaller than pipeline.chunk_size, got %d >= %d",
			c.Pipeline.ChunkOverlap, c.Pipeline.ChunkSize)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
