package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/travellive/tourquery/internal/domain"
)

// Database drivers.
const (
	DriverAtlas = "atlas"
	DriverRedis = "redis"
)

// Embedding cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheBolt   = "bolt"
)

// Config holds the tourquery configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
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

// DatabaseConfig holds the document database and vector index settings.
type DatabaseConfig struct {
	Driver                   string `yaml:"driver"` // atlas, redis (default: atlas)
	URI                      string `yaml:"uri"`
	Name                     string `yaml:"name"`
	Collection               string `yaml:"collection"`
	VectorIndex              string `yaml:"vector_index"`
	TextKey                  string `yaml:"text_key"`
	EmbeddingKey             string `yaml:"embedding_key"`
	ServerSelectionTimeoutMS int    `yaml:"server_selection_timeout_ms"`
	NumCandidatesFactor      int    `yaml:"num_candidates_factor"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
}

// CacheConfig holds the query-embedding cache settings.
type CacheConfig struct {
	Driver string   `yaml:"driver"` // none, memory, redis, bolt (default: memory)
	Size   int      `yaml:"size"`   // memory: max entries
	Addrs  []string `yaml:"addrs"`  // redis
	URL    string   `yaml:"url"`    // redis, overrides addrs
	Path   string   `yaml:"path"`   // bolt
	TTLSec int      `yaml:"ttl_sec"`
}

// SearchConfig holds result-count limits and start-up behaviour.
type SearchConfig struct {
	DefaultK int  `yaml:"default_k"`
	MaxK     int  `yaml:"max_k"`
	Warmup   bool `yaml:"warmup"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, when present, is loaded first; variables
// already set in the environment win.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands, defaults and validates the configuration at path.
func LoadFile(configPath string) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverAtlas
	}
	if c.Database.Name == "" {
		c.Database.Name = "travellive_db"
	}
	if c.Database.Collection == "" {
		c.Database.Collection = "tour_departure_package"
	}
	if c.Database.VectorIndex == "" {
		c.Database.VectorIndex = "vector_index"
	}
	if c.Database.TextKey == "" {
		c.Database.TextKey = "content"
	}
	if c.Database.EmbeddingKey == "" {
		c.Database.EmbeddingKey = "embedding"
	}
	if c.Database.ServerSelectionTimeoutMS <= 0 {
		c.Database.ServerSelectionTimeoutMS = int(domain.DefaultServerSelectionTimeout / time.Millisecond)
	}
	if c.Database.NumCandidatesFactor <= 0 {
		c.Database.NumCandidatesFactor = 10
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-ada-002"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheMemory
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "tourquery-embeddings.db"
	}
	if c.Search.DefaultK <= 0 {
		c.Search.DefaultK = 3
	}
	if c.Search.MaxK <= 0 {
		c.Search.MaxK = 10
	}
}

// Validate checks the configuration for correctness. Missing connection values
// are not checked here: they surface through Provider.Connection so the process
// can start and report them per request.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverAtlas, DriverRedis:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverAtlas, DriverRedis, c.Database.Driver)
	}
	switch c.Cache.Driver {
	case CacheNone, CacheMemory, CacheBolt:
	case CacheRedis:
		if c.Cache.URL == "" && len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.url or cache.addrs is required for the redis cache")
		}
	default:
		return fmt.Errorf("cache.driver must be one of none, memory, redis, bolt, got %q", c.Cache.Driver)
	}
	if c.Search.DefaultK > c.Search.MaxK {
		return fmt.Errorf("search.default_k (%d) must not exceed search.max_k (%d)", c.Search.DefaultK, c.Search.MaxK)
	}
	return nil
}

// Connection builds the immutable connection settings the resource cache keys on.
func (c *Config) Connection() domain.ConnectionConfig {
	return domain.ConnectionConfig{
		Driver:                 c.Database.Driver,
		URI:                    c.Database.URI,
		Database:               c.Database.Name,
		Collection:             c.Database.Collection,
		VectorIndex:            c.Database.VectorIndex,
		TextKey:                c.Database.TextKey,
		EmbeddingKey:           c.Database.EmbeddingKey,
		EmbeddingModel:         c.Embedding.Model,
		EmbeddingAPIKey:        c.Embedding.APIKey,
		EmbeddingBaseURL:       c.Embedding.BaseURL,
		EmbeddingDimensions:    c.Embedding.Dimensions,
		ServerSelectionTimeout: time.Duration(c.Database.ServerSelectionTimeoutMS) * time.Millisecond,
		NumCandidatesFactor:    c.Database.NumCandidatesFactor,
	}
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
