package core

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/cogmem/cogmem-go/pkg/assessment"
	"github.com/cogmem/cogmem-go/pkg/embedder"
	mockEmbedder "github.com/cogmem/cogmem-go/pkg/embedder/mock"
	openaiEmbedder "github.com/cogmem/cogmem-go/pkg/embedder/openai"
	"github.com/cogmem/cogmem-go/pkg/graph"
	"github.com/cogmem/cogmem-go/pkg/metricstore"
	metricsqlite "github.com/cogmem/cogmem-go/pkg/metricstore/sqlite"
	"github.com/cogmem/cogmem-go/pkg/reflex"
	"github.com/cogmem/cogmem-go/pkg/storage"
	mysqlStore "github.com/cogmem/cogmem-go/pkg/storage/mysql"
	postgresStore "github.com/cogmem/cogmem-go/pkg/storage/postgres"
	sqliteStore "github.com/cogmem/cogmem-go/pkg/storage/sqlite"
)

// touchTimeout bounds the best-effort access-count update that runs after
// a search returns.
const touchTimeout = 5 * time.Second

// Client is the main cogmem client for one (tenant, agent) pair.
//
// It provides namespace-isolated semantic memory with retrieval scoring,
// goal assessment, belief-graph construction, and reflex trigger checks.
//
// The client holds no mutable state beyond its configuration and is safe
// for concurrent use from multiple goroutines, provided the backing stores
// support concurrent access.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	record, _ := client.Add(ctx, "User wants to change careers",
//	    core.WithUserID("user_001"),
//	    core.WithMemoryType(core.MemoryTypeInsight),
//	)
type Client struct {
	// config contains the client configuration.
	config *Config

	// storage is the vector store for memory persistence.
	storage storage.VectorStore

	// embedder is the embedding provider for vector generation.
	embedder embedder.Provider

	// metrics is the append-only metric/assessment store.
	metrics metricstore.Store

	// rater rates and categorizes goals.
	rater *assessment.Rater

	// builder constructs belief graphs.
	builder *graph.Builder

	// reflexEngine evaluates reflex trigger conditions.
	reflexEngine *reflex.Engine

	// snowflakeNode generates unique IDs for memory records.
	snowflakeNode *snowflake.Node
}

// NewClient creates a new cogmem client.
//
// The client is initialized with:
//   - Vector store (SQLite, PostgreSQL, or MySQL)
//   - Embedding provider (OpenAI, mock)
//   - Metric/assessment store (SQLite)
//   - Goal rater, belief-graph builder, and reflex engine
//
// Configuration errors, including an embedding-dimension mismatch between
// the provider and the vector store, are fatal here and never retried.
//
// Parameters:
//   - cfg: Configuration containing tenant/agent scope, storage, and embedding settings
//
// Returns a new Client instance, or an error if initialization fails.
func NewClient(cfg *Config) (*Client, error) {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Context.applyDefaults()

	// Initialize embedder
	embedderProvider, err := initEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}

	// Reject dimension mismatches before anything touches the store.
	storeDims := intFromConfig(cfg.VectorStore.Config, "embedding_model_dims")
	if storeDims != 0 && storeDims != embedderProvider.Dimensions() {
		return nil, NewMemoryError("NewClient", fmt.Errorf(
			"%w: embedder produces %d-dim vectors but store expects %d",
			ErrInvalidConfig, embedderProvider.Dimensions(), storeDims))
	}

	// Initialize storage
	store, err := initStorage(cfg.VectorStore)
	if err != nil {
		return nil, err
	}

	// Initialize metric store
	metricStore, err := initMetricStore(cfg.MetricStore)
	if err != nil {
		return nil, err
	}

	// Initialize Snowflake ID generator
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewMemoryError("NewClient", err)
	}

	return &Client{
		config:        cfg,
		storage:       store,
		embedder:      embedderProvider,
		metrics:       metricStore,
		rater:         assessment.NewRater(cfg.Rater, nil),
		builder:       graph.NewBuilder(cfg.Graph),
		reflexEngine:  reflex.NewEngine(metricStore, cfg.Reflex),
		snowflakeNode: node,
	}, nil
}

// Add adds a new memory record to the store.
//
// The method:
//  1. Resolves the target namespace (thread, user, or agent level)
//  2. Generates an embedding vector for the content
//  3. Persists the record with a single atomic insert
//
// A failure to reach the embedding provider surfaces as
// ErrEmbeddingUnavailable; a cancelled context leaves no partial record
// behind. The error is returned to the caller rather than swallowed so
// callers can choose best-effort semantics.
//
// Parameters:
//   - ctx: Context for cancellation
//   - content: Memory content (text string)
//   - opts: Optional parameters (ThreadID, UserID, MemoryType, Metadata)
//
// Returns the created MemoryRecord, or an error if the operation fails.
func (c *Client) Add(ctx context.Context, content string, opts ...AddOption) (*MemoryRecord, error) {
	if content == "" {
		return nil, NewMemoryError("Add", ErrInvalidInput)
	}

	addOpts := applyAddOptions(opts)
	namespace := c.resolveNamespace(addOpts.ThreadID, addOpts.UserID)

	// Generate embedding
	embedding, err := c.embedder.Embed(ctx, content)
	if err != nil {
		return nil, NewMemoryError("Add", fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err))
	}

	record := &MemoryRecord{
		ID:         c.snowflakeNode.Generate().Int64(),
		Namespace:  namespace,
		Content:    content,
		Embedding:  embedding,
		MemoryType: addOpts.MemoryType,
		Metadata:   addOpts.Metadata,
		CreatedAt:  time.Now(),
	}

	if err := c.storage.Insert(ctx, toStorageRecord(record)); err != nil {
		return nil, NewMemoryError("Add", err)
	}

	return record, nil
}

// Search searches for memory records using vector similarity.
//
// The method:
//  1. Generates an embedding vector for the query
//  2. Performs similarity search within one namespace
//  3. Returns results sorted by similarity, ties broken newest-first
//
// Returned records have their access counters updated asynchronously;
// that update is best-effort telemetry and never blocks or fails the
// search itself.
//
// Parameters:
//   - ctx: Context for cancellation
//   - query: Search query (text string)
//   - opts: Optional parameters (ThreadID, UserID, Limit, MinScore, MemoryType)
//
// Returns a list of records sorted by relevance (highest first), or an error.
//
// Example:
//
//	results, err := client.Search(ctx, "career change",
//	    core.WithUserIDForSearch("user_001"),
//	    core.WithLimit(10),
//	)
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) ([]*MemoryRecord, error) {
	searchOpts := applySearchOptions(opts)
	namespace := c.resolveNamespace(searchOpts.ThreadID, searchOpts.UserID)

	// Generate query embedding
	queryEmbedding, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, NewMemoryError("Search", fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err))
	}

	limit := searchOpts.Limit
	if limit <= 0 {
		limit = c.config.Context.SemanticLimit
	}

	records, err := c.storage.Search(ctx, queryEmbedding, &storage.SearchOptions{
		Namespace:  namespace.String(),
		Limit:      limit,
		MinScore:   searchOpts.MinScore,
		MemoryType: searchOpts.MemoryType,
	})
	if err != nil {
		return nil, NewMemoryError("Search", err)
	}

	c.touchAsync(records)

	return fromStorageRecords(records), nil
}

// Get retrieves a memory record by its ID.
func (c *Client) Get(ctx context.Context, id int64) (*MemoryRecord, error) {
	record, err := c.storage.Get(ctx, id)
	if err != nil {
		return nil, NewMemoryError("Get", err)
	}
	return fromStorageRecord(record), nil
}

// DeleteAll deletes all records in the given namespace.
//
// Intended for administrative cleanup and tests; regular operation never
// deletes memories.
func (c *Client) DeleteAll(ctx context.Context, namespace Namespace) error {
	if err := c.storage.DeleteAll(ctx, namespace.String()); err != nil {
		return NewMemoryError("DeleteAll", err)
	}
	return nil
}

// Close closes the client and releases all resources.
//
// This method closes the vector store, the metric store, and the embedder.
// Returns the first error encountered during cleanup, or nil.
func (c *Client) Close() error {
	var errs []error

	if c.storage != nil {
		if err := c.storage.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.metrics != nil {
		if err := c.metrics.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}

	return nil
}

// AgentNamespace returns the client's agent-level namespace.
func (c *Client) AgentNamespace() Namespace {
	return AgentNamespace(c.config.TenantID, c.config.AgentID)
}

// resolveNamespace picks the namespace level for an operation.
// Thread scope wins over user scope; both default to agent level.
func (c *Client) resolveNamespace(threadID, userID string) Namespace {
	switch {
	case threadID != "":
		return ThreadNamespace(c.config.TenantID, c.config.AgentID, threadID)
	case userID != "":
		return UserNamespace(c.config.TenantID, c.config.AgentID, userID)
	default:
		return c.AgentNamespace()
	}
}

// touchAsync bumps access counters for returned records without blocking
// the search. The update runs on a fresh context so a caller cancelling
// right after a successful search does not lose the telemetry write; any
// failure here is dropped (lost updates are acceptable).
func (c *Client) touchAsync(records []*storage.Record) {
	if len(records) == 0 {
		return
	}

	ids := make([]int64, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}

	go func() {
		touchCtx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()
		_ = c.storage.TouchAccess(touchCtx, ids)
	}()
}

// scope returns the metric-store scope for a user under this client.
func (c *Client) scope(userID string) metricstore.Scope {
	return metricstore.Scope{
		TenantID: c.config.TenantID,
		AgentID:  c.config.AgentID,
		UserID:   userID,
	}
}

// initStorage initializes the storage backend.
func initStorage(cfg VectorStoreConfig) (storage.VectorStore, error) {
	switch cfg.Provider {
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:             stringFromConfig(cfg.Config, "db_path"),
			TableName:          stringFromConfig(cfg.Config, "table_name"),
			EmbeddingModelDims: intFromConfig(cfg.Config, "embedding_model_dims"),
		})
	case "postgres":
		sslMode := stringFromConfig(cfg.Config, "ssl_mode")
		if sslMode == "" {
			sslMode = "disable"
		}
		return postgresStore.NewClient(&postgresStore.Config{
			Host:               stringFromConfig(cfg.Config, "host"),
			Port:               intFromConfig(cfg.Config, "port"),
			User:               stringFromConfig(cfg.Config, "user"),
			Password:           stringFromConfig(cfg.Config, "password"),
			DBName:             stringFromConfig(cfg.Config, "db_name"),
			TableName:          stringFromConfig(cfg.Config, "table_name"),
			EmbeddingModelDims: intFromConfig(cfg.Config, "embedding_model_dims"),
			SSLMode:            sslMode,
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:               stringFromConfig(cfg.Config, "host"),
			Port:               intFromConfig(cfg.Config, "port"),
			User:               stringFromConfig(cfg.Config, "user"),
			Password:           stringFromConfig(cfg.Config, "password"),
			DBName:             stringFromConfig(cfg.Config, "db_name"),
			TableName:          stringFromConfig(cfg.Config, "table_name"),
			EmbeddingModelDims: intFromConfig(cfg.Config, "embedding_model_dims"),
		})
	default:
		return nil, NewMemoryError("initStorage", ErrInvalidConfig)
	}
}

// initEmbedder initializes the embedder provider.
func initEmbedder(cfg EmbedderConfig) (embedder.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiEmbedder.NewClient(&openaiEmbedder.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	case "mock":
		return mockEmbedder.NewProvider(cfg.Dimensions), nil
	default:
		return nil, NewMemoryError("initEmbedder", ErrInvalidConfig)
	}
}

// initMetricStore initializes the metric/assessment store.
func initMetricStore(cfg MetricStoreConfig) (metricstore.Store, error) {
	switch cfg.Provider {
	case "sqlite", "":
		dbPath := stringFromConfig(cfg.Config, "db_path")
		if dbPath == "" {
			dbPath = "./cogmem_metrics.db"
		}
		return metricsqlite.NewStore(&metricsqlite.Config{DBPath: dbPath})
	default:
		return nil, NewMemoryError("initMetricStore", ErrInvalidConfig)
	}
}

// stringFromConfig reads a string value from a provider config map.
func stringFromConfig(config map[string]interface{}, key string) string {
	if config == nil {
		return ""
	}
	if value, ok := config[key].(string); ok {
		return value
	}
	return ""
}

// intFromConfig reads an int value from a provider config map.
// JSON-decoded configs carry numbers as float64.
func intFromConfig(config map[string]interface{}, key string) int {
	if config == nil {
		return 0
	}
	switch value := config[key].(type) {
	case int:
		return value
	case float64:
		return int(value)
	default:
		return 0
	}
}
