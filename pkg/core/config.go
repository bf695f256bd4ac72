// Package core provides the main cogmem client and memory management functionality.
package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/cogmem/cogmem-go/pkg/assessment"
	"github.com/cogmem/cogmem-go/pkg/graph"
	"github.com/cogmem/cogmem-go/pkg/reflex"
)

// Config contains the complete configuration for a cogmem client.
//
// A client is scoped to one (tenant, agent) pair. It includes settings for:
//   - Embedding provider (for vector generation)
//   - Vector store (for memory persistence)
//   - Metric store (for assessments, graphs, and cognitive metrics)
//   - Context assembly limits
//   - Goal rating, belief-graph, and reflex heuristics (optional overrides)
//
// Example:
//
//	config := &core.Config{
//	    TenantID: "tenant_001",
//	    AgentID:  "coach",
//	    Embedder: core.EmbedderConfig{
//	        Provider:   "openai",
//	        APIKey:     "sk-...",
//	        Dimensions: 1536,
//	    },
//	    VectorStore: core.VectorStoreConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./memories.db",
//	        },
//	    },
//	}
type Config struct {
	// TenantID is the owning tenant. Required; must not contain ':'.
	TenantID string `json:"tenant_id"`

	// AgentID is the agent within the tenant. Required; must not contain ':'.
	AgentID string `json:"agent_id"`

	// Embedder contains embedding provider configuration.
	Embedder EmbedderConfig `json:"embedder"`

	// VectorStore contains vector store configuration.
	VectorStore VectorStoreConfig `json:"vector_store"`

	// MetricStore contains metric/assessment store configuration.
	MetricStore MetricStoreConfig `json:"metric_store"`

	// Context contains context assembly limits.
	Context ContextConfig `json:"context"`

	// Rater overrides the goal-rating baseline constants (optional).
	Rater *assessment.RaterConfig `json:"rater,omitempty"`

	// Graph overrides the belief-graph heuristic constants (optional).
	Graph *graph.BuilderConfig `json:"graph,omitempty"`

	// Reflex overrides the reflex engine thresholds (optional).
	Reflex *reflex.Config `json:"reflex,omitempty"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: openai, mock
type EmbedderConfig struct {
	// Provider is the embedding provider name (openai, mock).
	Provider string `json:"provider"`

	// APIKey is the API key for the embedding provider.
	APIKey string `json:"api_key"`

	// Model is the embedding model name (e.g. "text-embedding-3-small").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the dimension of the embedding vectors (e.g. 1536).
	Dimensions int `json:"dimensions,omitempty"`
}

// VectorStoreConfig contains configuration for the vector store.
//
// Supported providers: sqlite, postgres, mysql
type VectorStoreConfig struct {
	// Provider is the vector store provider name (sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path, table_name, embedding_model_dims
	// For PostgreSQL: host, port, user, password, db_name, table_name, embedding_model_dims, ssl_mode
	// For MySQL: host, port, user, password, db_name, table_name, embedding_model_dims
	Config map[string]interface{} `json:"config"`
}

// MetricStoreConfig contains configuration for the metric/assessment store.
//
// Supported providers: sqlite
type MetricStoreConfig struct {
	// Provider is the metric store provider name (sqlite).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path
	Config map[string]interface{} `json:"config"`
}

// ContextConfig contains context assembly limits.
type ContextConfig struct {
	// RecentLimit is the number of raw interaction records fetched per
	// thread. Default 10.
	RecentLimit int `json:"recent_limit,omitempty"`

	// SemanticLimit is the number of agent-level semantic matches fetched
	// per query. Default 6.
	SemanticLimit int `json:"semantic_limit,omitempty"`

	// UserLimit is the number of user-level semantic matches fetched per
	// query when a user ID is given. Default 3.
	UserLimit int `json:"user_limit,omitempty"`
}

// applyDefaults fills in unset context limits.
func (c *ContextConfig) applyDefaults() {
	if c.RecentLimit == 0 {
		c.RecentLimit = 10
	}
	if c.SemanticLimit == 0 {
		c.SemanticLimit = 6
	}
	if c.UserLimit == 0 {
		c.UserLimit = 3
	}
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - TENANT_ID, AGENT_ID
//   - DATABASE_PROVIDER (sqlite, postgres, mysql)
//   - SQLITE_PATH, SQLITE_TABLE, SQLITE_EMBEDDING_MODEL_DIMS
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, etc.
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, etc.
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL
//   - METRICS_SQLITE_PATH
//   - REFLEX_ENABLED ("true"/"false", overrides the reflex engine default)
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnv() (*Config, error) {
	// Use FindEnvFile to locate .env file (supports upward search)
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")

	vectorStoreConfig := make(map[string]interface{})

	switch provider {
	case "sqlite":
		dims, _ := strconv.Atoi(getEnvOrDefault("SQLITE_EMBEDDING_MODEL_DIMS", "1536"))

		vectorStoreConfig = map[string]interface{}{
			"db_path":              getEnvOrDefault("SQLITE_PATH", "./cogmem.db"),
			"table_name":           getEnvOrDefault("SQLITE_TABLE", "memories"),
			"embedding_model_dims": dims,
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
		dims, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_EMBEDDING_MODEL_DIMS", "1536"))

		vectorStoreConfig = map[string]interface{}{
			"host":                 getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":                 port,
			"user":                 getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":             os.Getenv("POSTGRES_PASSWORD"),
			"db_name":              getEnvOrDefault("POSTGRES_DATABASE", "cogmem"),
			"table_name":           getEnvOrDefault("POSTGRES_TABLE", "memories"),
			"embedding_model_dims": dims,
			"ssl_mode":             getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))
		dims, _ := strconv.Atoi(getEnvOrDefault("MYSQL_EMBEDDING_MODEL_DIMS", "1536"))

		vectorStoreConfig = map[string]interface{}{
			"host":                 getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":                 port,
			"user":                 getEnvOrDefault("MYSQL_USER", "root"),
			"password":             os.Getenv("MYSQL_PASSWORD"),
			"db_name":              getEnvOrDefault("MYSQL_DATABASE", "cogmem"),
			"table_name":           getEnvOrDefault("MYSQL_TABLE", "memories"),
			"embedding_model_dims": dims,
		}
	}

	embedderProvider := getEnvOrDefault("EMBEDDING_PROVIDER", "openai")
	embedderModel := os.Getenv("EMBEDDING_MODEL")
	embedderBaseURL := os.Getenv("EMBEDDING_BASE_URL")
	embedderDims, _ := strconv.Atoi(getEnvOrDefault("EMBEDDING_DIMS", "1536"))

	if embedderProvider == "openai" && embedderModel == "" {
		embedderModel = "text-embedding-3-small"
	}

	config := &Config{
		TenantID: getEnvOrDefault("TENANT_ID", "default"),
		AgentID:  getEnvOrDefault("AGENT_ID", "default"),
		Embedder: EmbedderConfig{
			Provider:   embedderProvider,
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      embedderModel,
			BaseURL:    embedderBaseURL,
			Dimensions: embedderDims,
		},
		VectorStore: VectorStoreConfig{
			Provider: provider,
			Config:   vectorStoreConfig,
		},
		MetricStore: MetricStoreConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path": getEnvOrDefault("METRICS_SQLITE_PATH", "./cogmem_metrics.db"),
			},
		},
	}

	// Reflex engine configuration (optional). Unset keeps the engine
	// defaults; an explicit value forces it on or off.
	if v := os.Getenv("REFLEX_ENABLED"); v != "" {
		reflexConfig := reflex.DefaultConfig()
		reflexConfig.Enabled = v == "true"
		config.Reflex = reflexConfig
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// Checks that all required fields are set:
//   - Tenant and agent IDs must be non-empty and colon-free
//   - Embedder provider must be specified
//   - Vector store provider must be specified
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if err := validateComponent("tenant id", c.TenantID); err != nil {
		return NewMemoryError("Validate", err)
	}
	if err := validateComponent("agent id", c.AgentID); err != nil {
		return NewMemoryError("Validate", err)
	}
	if c.Embedder.Provider == "" {
		return NewMemoryError("Validate", ErrInvalidConfig)
	}
	if c.VectorStore.Provider == "" {
		return NewMemoryError("Validate", ErrInvalidConfig)
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	// First check the current directory
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	// Check project root directory (search upward)
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
