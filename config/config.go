// Package config holds the application configuration for extraction runs.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BackendConfig selects and configures the model backend used for both
// chat generation and embeddings.
type BackendConfig struct {
	Type    string         `yaml:"type"`
	OpenAI  *OpenAIConfig  `yaml:"openai,omitempty"`
	Ollama  *OllamaConfig  `yaml:"ollama,omitempty"`
	Bedrock *BedrockConfig `yaml:"bedrock,omitempty"`
}

// OpenAIConfig contains connection details for the OpenAI backend.
type OpenAIConfig struct {
	APIKeyEnv  string `yaml:"api_key_env"`
	ChatModel  string `yaml:"chat_model"`
	EmbedModel string `yaml:"embed_model"`
}

// OllamaConfig contains connection details for a local Ollama server.
type OllamaConfig struct {
	BaseURL    string `yaml:"base_url"`
	ChatModel  string `yaml:"chat_model"`
	EmbedModel string `yaml:"embed_model"`
}

// BedrockConfig configures the AWS Bedrock backend. Chat goes through
// Bedrock; embeddings still need an OpenAI-compatible endpoint.
type BedrockConfig struct {
	Region     string `yaml:"region"`
	ChatModel  string `yaml:"chat_model"`
	EmbedModel string `yaml:"embed_model"`
}

// IndexConfig selects and configures the vector index implementation.
type IndexConfig struct {
	Type     string          `yaml:"type"`
	Postgres *PostgresConfig `yaml:"postgres,omitempty"`
}

// PostgresConfig contains connection details for a pgvector-backed index.
type PostgresConfig struct {
	URL       string `yaml:"url"`
	URLEnv    string `yaml:"url_env"`
	Table     string `yaml:"table"`
	Dimension int    `yaml:"dimension"`
}

// SourceConfig selects where filing texts are loaded from.
type SourceConfig struct {
	Type string    `yaml:"type"`
	Dir  string    `yaml:"dir"`
	URLs []string  `yaml:"urls,omitempty"`
	S3   *S3Config `yaml:"s3,omitempty"`
}

// ArtifactsConfig selects where run artifacts are written.
type ArtifactsConfig struct {
	Type string    `yaml:"type"`
	Dir  string    `yaml:"dir"`
	S3   *S3Config `yaml:"s3,omitempty"`
}

// S3Config names an S3 bucket and key prefix.
type S3Config struct {
	Region string `yaml:"region"`
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// RunConfig controls how the extraction run executes.
type RunConfig struct {
	Mode           string  `yaml:"mode"`
	Workers        int     `yaml:"workers"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
	MaxRetries     int     `yaml:"max_retries"`
	ReferenceFile  string  `yaml:"reference_file"`
	ToleranceRatio float64 `yaml:"tolerance_ratio"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Backend   BackendConfig   `yaml:"backend"`
	Index     IndexConfig     `yaml:"index"`
	Source    SourceConfig    `yaml:"source"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Run       RunConfig       `yaml:"run"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults. A .env file in the working directory is loaded first so
// that *_env keys resolve.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// APIKey resolves the configured OpenAI key from the environment.
func (c *OpenAIConfig) APIKey() (string, error) {
	key := os.Getenv(c.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("config: environment variable %s is not set", c.APIKeyEnv)
	}
	return key, nil
}

// ConnString resolves the Postgres connection string, preferring the
// environment variable when one is named.
func (c *PostgresConfig) ConnString() (string, error) {
	if c.URLEnv != "" {
		if url := os.Getenv(c.URLEnv); url != "" {
			return url, nil
		}
	}
	if c.URL == "" {
		return "", errors.New("config: postgres url is not set")
	}
	return c.URL, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Backend: BackendConfig{
			Type: "openai",
			OpenAI: &OpenAIConfig{
				APIKeyEnv: "OPENAI_API_KEY",
			},
		},
		Index:  IndexConfig{Type: "memory"},
		Source: SourceConfig{Type: "local", Dir: "filings"},
		Artifacts: ArtifactsConfig{
			Type: "local",
			Dir:  "results",
		},
		Run: RunConfig{Mode: "both"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Backend.Type == "" {
		cfg.Backend.Type = "openai"
	}
	if cfg.Backend.Type == "openai" {
		if cfg.Backend.OpenAI == nil {
			cfg.Backend.OpenAI = &OpenAIConfig{}
		}
		if cfg.Backend.OpenAI.APIKeyEnv == "" {
			cfg.Backend.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Backend.OpenAI.ChatModel == "" {
			cfg.Backend.OpenAI.ChatModel = "gpt-4o"
		}
		if cfg.Backend.OpenAI.EmbedModel == "" {
			cfg.Backend.OpenAI.EmbedModel = "text-embedding-3-small"
		}
	}
	if cfg.Backend.Type == "ollama" {
		if cfg.Backend.Ollama == nil {
			cfg.Backend.Ollama = &OllamaConfig{}
		}
		if cfg.Backend.Ollama.BaseURL == "" {
			cfg.Backend.Ollama.BaseURL = "http://localhost:11434"
		}
		if cfg.Backend.Ollama.ChatModel == "" {
			cfg.Backend.Ollama.ChatModel = "llama3.1"
		}
		if cfg.Backend.Ollama.EmbedModel == "" {
			cfg.Backend.Ollama.EmbedModel = "nomic-embed-text"
		}
	}
	if cfg.Backend.Type == "bedrock" {
		if cfg.Backend.Bedrock == nil {
			cfg.Backend.Bedrock = &BedrockConfig{}
		}
		if cfg.Backend.Bedrock.Region == "" {
			cfg.Backend.Bedrock.Region = "us-east-1"
		}
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if cfg.Index.Type == "postgres" {
		if cfg.Index.Postgres == nil {
			cfg.Index.Postgres = &PostgresConfig{}
		}
		if cfg.Index.Postgres.URLEnv == "" {
			cfg.Index.Postgres.URLEnv = "DATABASE_URL"
		}
		if cfg.Index.Postgres.Table == "" {
			cfg.Index.Postgres.Table = "filing_segments"
		}
		if cfg.Index.Postgres.Dimension == 0 {
			cfg.Index.Postgres.Dimension = 1536
		}
	}
	if cfg.Source.Type == "" {
		cfg.Source.Type = "local"
	}
	if cfg.Source.Type == "local" && cfg.Source.Dir == "" {
		cfg.Source.Dir = "filings"
	}
	if cfg.Artifacts.Type == "" {
		cfg.Artifacts.Type = "local"
	}
	if cfg.Artifacts.Type == "local" && cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = "results"
	}
	if cfg.Run.Mode == "" {
		cfg.Run.Mode = "both"
	}
	if cfg.Run.Workers == 0 {
		cfg.Run.Workers = 4
	}
	if cfg.Run.TimeoutSecs == 0 {
		cfg.Run.TimeoutSecs = 300
	}
	if cfg.Run.MaxRetries == 0 {
		cfg.Run.MaxRetries = 2
	}
	if cfg.Run.ToleranceRatio == 0 {
		cfg.Run.ToleranceRatio = 0.01
	}
}

func validate(cfg *AppConfig) error {
	switch cfg.Backend.Type {
	case "openai", "ollama", "bedrock":
	default:
		return fmt.Errorf("config: unknown backend type %q", cfg.Backend.Type)
	}
	switch cfg.Index.Type {
	case "memory", "postgres":
	default:
		return fmt.Errorf("config: unknown index type %q", cfg.Index.Type)
	}
	switch cfg.Source.Type {
	case "local", "s3", "web":
	default:
		return fmt.Errorf("config: unknown source type %q", cfg.Source.Type)
	}
	if cfg.Source.Type == "s3" && (cfg.Source.S3 == nil || cfg.Source.S3.Bucket == "") {
		return errors.New("config: s3 source requires a bucket")
	}
	if cfg.Source.Type == "web" && len(cfg.Source.URLs) == 0 {
		return errors.New("config: web source requires at least one url")
	}
	switch cfg.Artifacts.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("config: unknown artifacts type %q", cfg.Artifacts.Type)
	}
	if cfg.Artifacts.Type == "s3" && (cfg.Artifacts.S3 == nil || cfg.Artifacts.S3.Bucket == "") {
		return errors.New("config: s3 artifacts require a bucket")
	}
	return nil
}
