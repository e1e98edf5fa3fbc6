package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr    string `yaml:"addr"`
	DataDir string `yaml:"data_dir"`

	OpenAIAPIKey      string `yaml:"openai_api_key"`
	OllamaHost        string `yaml:"ollama_host"`
	EmbeddingProvider string `yaml:"embedding_provider"` // "openai" or "ollama"
	EmbeddingModel    string `yaml:"embedding_model"`
	ChatModel         string `yaml:"chat_model"`

	MaxPages        int     `yaml:"max_pages"`
	MaxPagesLimit   int     `yaml:"max_pages_limit"`
	ChunkSize       int     `yaml:"chunk_size"`
	MaxConcurrent   int     `yaml:"max_concurrent"`
	SearchThreshold float64 `yaml:"search_threshold"`
	Language        string  `yaml:"language"`

	NavigationTimeout string `yaml:"navigation_timeout"`
	RenderTimeout     string `yaml:"render_timeout"`
	SitemapTimeout    string `yaml:"sitemap_timeout"`

	MinIOEndpoint  string `yaml:"minio_endpoint"`
	MinIOAccessKey string `yaml:"minio_access_key"`
	MinIOSecretKey string `yaml:"minio_secret_key"`
	MinIOBucket    string `yaml:"minio_bucket"`
}

// LoadConfig builds the config from defaults, an optional config.yaml, and
// environment variables, in that order of precedence (env wins).
func LoadConfig() Config {
	return LoadConfigFrom("config.yaml")
}

func LoadConfigFrom(path string) Config {
	cfg := defaults()

	if data, err := os.ReadFile(path); err == nil {
		// yaml only touches keys present in the file
		_ = yaml.Unmarshal(data, &cfg)
	}

	cfg.Addr = getEnv("WEBSAGE_ADDR", cfg.Addr)
	cfg.DataDir = getEnv("WEBSAGE_DATA_DIR", cfg.DataDir)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OllamaHost = getEnv("OLLAMA_HOST", cfg.OllamaHost)
	cfg.EmbeddingProvider = getEnv("WEBSAGE_EMBEDDING_PROVIDER", cfg.EmbeddingProvider)
	cfg.MinIOEndpoint = getEnv("MINIO_ENDPOINT", cfg.MinIOEndpoint)
	cfg.MinIOAccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIOAccessKey)
	cfg.MinIOSecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIOSecretKey)
	cfg.MinIOBucket = getEnv("MINIO_BUCKET", cfg.MinIOBucket)

	return cfg
}

func defaults() Config {
	return Config{
		Addr:              ":8000",
		DataDir:           "./data",
		OllamaHost:        "http://localhost:11434",
		EmbeddingProvider: "openai",
		// model defaults live with each provider client; empty means
		// "use the provider default"
		EmbeddingModel: "",
		ChatModel:      "",
		MaxPages:          10,
		MaxPagesLimit:     200,
		ChunkSize:         500,
		MaxConcurrent:     5,
		SearchThreshold:   0.4,
		Language:          "en",
		NavigationTimeout: "60s",
		RenderTimeout:     "30s",
		SitemapTimeout:    "10s",
		MinIOBucket:       "websage",
	}
}

// NavTimeout parses the navigation timeout with a safe fallback.
func (c Config) NavTimeout() time.Duration { return parseDuration(c.NavigationTimeout, 60*time.Second) }

// RenderWait parses the network-idle wait timeout with a safe fallback.
func (c Config) RenderWait() time.Duration { return parseDuration(c.RenderTimeout, 30*time.Second) }

// SitemapWait parses the sitemap HTTP timeout with a safe fallback.
func (c Config) SitemapWait() time.Duration { return parseDuration(c.SitemapTimeout, 10*time.Second) }

// ArchiveEnabled reports whether crawl archival to object storage is configured.
func (c Config) ArchiveEnabled() bool { return c.MinIOEndpoint != "" }

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}
