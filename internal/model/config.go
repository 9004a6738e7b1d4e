package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete runtime configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Catalog     CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
	Questions   QuestionsConfig   `yaml:"questions" mapstructure:"questions"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// ServerConfig configures the upload web server
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	Env            string   `yaml:"env" mapstructure:"env"` // "development" or "production"
	Title          string   `yaml:"title" mapstructure:"title"`
	MaxUploadBytes int      `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	AllowedTypes   []string `yaml:"allowed_types" mapstructure:"allowed_types"`
	RequestsPerMin int      `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// IsDev reports whether the server runs in development mode
func (s ServerConfig) IsDev() bool {
	return s.Env == "development" || s.Env == "dev"
}

// CatalogConfig points at an optional phrase table override
type CatalogConfig struct {
	File string `yaml:"file,omitempty" mapstructure:"file"` // Empty = built-in table
}

// QuestionsConfig selects the questions asked of each contract
type QuestionsConfig struct {
	File    string `yaml:"file,omitempty" mapstructure:"file"` // CUAD-format JSON; empty = built-in questions
	Indices []int  `yaml:"indices" mapstructure:"indices"`
}

// LLMConfig configures the question-answering model
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"` // Never written to config files
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`

	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`

	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the answer cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"` // Rotated JSON log file; empty = console only
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose         bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeContract bool `yaml:"include_contract" mapstructure:"include_contract"`
}

// DefaultQuestionIndices is the fixed subset of the CUAD question file
// asked of every contract
var DefaultQuestionIndices = []int{2, 3, 5, 15}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":3000",
			Env:            "development",
			Title:          "Project Rainier",
			MaxUploadBytes: 20 << 20,
			AllowedTypes:   []string{"application/pdf"},
			RequestsPerMin: 30,
		},
		Questions: QuestionsConfig{
			Indices: append([]int(nil), DefaultQuestionIndices...),
		},
		LLM: LLMConfig{
			Provider:          "", // Disabled by default
			Timeout:           60,
			MaxTokens:         300,
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			IncludeContract: true,
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".rainier-cache"
	}
	return filepath.Join(dir, "rainier")
}
