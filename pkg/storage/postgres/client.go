// Package postgres provides a PostgreSQL + pgvector implementation of the
// vector store. Similarity ordering is pushed down to the database using
// pgvector's cosine distance operator.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/cogmem/cogmem-go/pkg/storage"
)

// Client is a PostgreSQL + pgvector client.
type Client struct {
	db         *sql.DB
	tableName  string
	dimensions int
}

// Config contains PostgreSQL configuration.
type Config struct {
	Host               string
	Port               int
	User               string
	Password           string
	DBName             string
	TableName          string
	EmbeddingModelDims int
	SSLMode            string
}

// NewClient creates a new PostgreSQL client.
func NewClient(cfg *Config) (*Client, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	client := &Client{
		db:         db,
		tableName:  cfg.TableName,
		dimensions: cfg.EmbeddingModelDims,
	}

	// Initialize pgvector extension and table structure
	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table.
func (c *Client) initTables(ctx context.Context) error {
	// Enable pgvector extension
	_, err := c.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("initTables: create extension: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			namespace VARCHAR(512) NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			memory_type VARCHAR(64),
			metadata JSONB,
			access_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_accessed_at TIMESTAMP
		)
	`, c.tableName, c.dimensions)

	_, err = c.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("initTables: create table: %w", err)
	}

	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_namespace ON %s(namespace)
	`, c.tableName, c.tableName)
	_, err = c.db.ExecContext(ctx, indexQuery)
	if err != nil {
		return fmt.Errorf("initTables: create index: %w", err)
	}

	return nil
}

// Insert inserts a record.
func (c *Client) Insert(ctx context.Context, record *storage.Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, namespace, content, embedding, memory_type, metadata, access_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7)
	`, c.tableName)

	// Convert vector to pgvector format: "[0.1,0.2,0.3,...]"
	vectorStr := vectorToString(record.Embedding)

	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = c.db.ExecContext(ctx, query,
		record.ID,
		record.Namespace,
		record.Content,
		vectorStr,
		record.MemoryType,
		string(metadataJSON),
		createdAt,
	)

	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	return nil
}

// Search performs vector search using pgvector's cosine distance.
//
// Ordering happens in SQL: ascending cosine distance (i.e. descending
// similarity), ties broken by most recent creation time.
func (c *Client) Search(ctx context.Context, embedding []float64, opts *storage.SearchOptions) ([]*storage.Record, error) {
	queryVectorStr := vectorToString(embedding)

	// Build WHERE clause (starting from $2 since $1 is the query vector)
	whereClause, filterArgs := buildWhereClauseWithOffset(opts.Namespace, opts.MemoryType, 2)

	query := fmt.Sprintf(`
		SELECT
			id, namespace, content, memory_type, metadata,
			access_count, created_at, last_accessed_at,
			1 - (embedding <=> $1) AS similarity
		FROM %s
		%s
		ORDER BY embedding <=> $1, created_at DESC
		LIMIT $%d
	`, c.tableName, whereClause, len(filterArgs)+2)

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	args := append([]interface{}{queryVectorStr}, filterArgs...)
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*storage.Record
	for rows.Next() {
		record, err := scanSearchRow(rows)
		if err != nil {
			return nil, err
		}

		if record.Score >= opts.MinScore {
			records = append(records, record)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// FetchRecent returns the last limit records in the namespace,
// ordered oldest first.
func (c *Client) FetchRecent(ctx context.Context, namespace string, limit int) ([]*storage.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, namespace, content, memory_type, metadata,
		       access_count, created_at, last_accessed_at
		FROM %s
		WHERE namespace = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, c.tableName)

	rows, err := c.db.QueryContext(ctx, query, namespace, limit)
	if err != nil {
		return nil, fmt.Errorf("FetchRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*storage.Record
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query returns newest first; callers want chronological order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// TouchAccess increments access counters and refreshes last-accessed
// timestamps for the given record IDs.
func (c *Client) TouchAccess(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET access_count = access_count + 1, last_accessed_at = $1
		WHERE id = ANY($2)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query, time.Now(), pq.Array(ids)); err != nil {
		return fmt.Errorf("TouchAccess: %w", err)
	}

	return nil
}

// Get retrieves a record by ID.
func (c *Client) Get(ctx context.Context, id int64) (*storage.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, namespace, content, memory_type, metadata,
		       access_count, created_at, last_accessed_at
		FROM %s
		WHERE id = $1
	`, c.tableName)

	rows, err := c.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, fmt.Errorf("Get: record not found")
	}

	record, err := scanRow(rows)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	return record, nil
}

// DeleteAll deletes all records in the given namespace.
func (c *Client) DeleteAll(ctx context.Context, namespace string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE namespace = $1", c.tableName)

	if _, err := c.db.ExecContext(ctx, query, namespace); err != nil {
		return fmt.Errorf("DeleteAll: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
