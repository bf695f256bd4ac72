// Package mysql provides a MySQL implementation of the vector store.
//
// Stock MySQL has no vector operations, so embeddings are stored as JSON
// text and similarity is calculated in memory after loading the namespace's
// records, mirroring the SQLite backend.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/cogmem/cogmem-go/pkg/storage"
)

// Client is a MySQL vector store client.
type Client struct {
	db        *sql.DB
	tableName string
	config    *Config
}

// Config contains MySQL configuration.
type Config struct {
	Host               string
	Port               int
	User               string
	Password           string
	DBName             string
	TableName          string
	EmbeddingModelDims int
}

// NewClient creates a new MySQL client.
func NewClient(cfg *Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	client := &Client{
		db:        db,
		tableName: cfg.TableName,
		config:    cfg,
	}

	// Initialize table structure
	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			namespace VARCHAR(512) NOT NULL,
			content LONGTEXT NOT NULL,
			embedding LONGTEXT NOT NULL,
			memory_type VARCHAR(64),
			metadata JSON,
			access_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP(6) DEFAULT CURRENT_TIMESTAMP(6),
			last_accessed_at TIMESTAMP(6) NULL,
			INDEX idx_namespace (namespace)
		)
	`, c.tableName)

	_, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	return nil
}

// Insert inserts a record.
func (c *Client) Insert(ctx context.Context, record *storage.Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, namespace, content, embedding, memory_type, metadata, access_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, c.tableName)

	embeddingJSON, err := json.Marshal(record.Embedding)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

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
		string(embeddingJSON),
		record.MemoryType,
		string(metadataJSON),
		createdAt,
	)

	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	return nil
}

// Search performs vector similarity search using in-memory cosine similarity.
func (c *Client) Search(ctx context.Context, embedding []float64, opts *storage.SearchOptions) ([]*storage.Record, error) {
	whereClause, args := buildWhereClause(opts.Namespace, opts.MemoryType)

	query := fmt.Sprintf(`
		SELECT id, namespace, content, embedding, memory_type, metadata,
		       access_count, created_at, last_accessed_at
		FROM %s
		%s
		ORDER BY id
	`, c.tableName, whereClause)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*storage.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}

		score := cosineSimilarity(embedding, record.Embedding)
		record.Score = score

		if score >= opts.MinScore {
			records = append(records, record)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rankAndLimit(records, opts.Limit), nil
}

// FetchRecent returns the last limit records in the namespace,
// ordered oldest first.
func (c *Client) FetchRecent(ctx context.Context, namespace string, limit int) ([]*storage.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, namespace, content, embedding, memory_type, metadata,
		       access_count, created_at, last_accessed_at
		FROM %s
		WHERE namespace = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, c.tableName)

	rows, err := c.db.QueryContext(ctx, query, namespace, limit)
	if err != nil {
		return nil, fmt.Errorf("FetchRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*storage.Record
	for rows.Next() {
		record, err := scanRecord(rows)
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

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, time.Now())
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET access_count = access_count + 1, last_accessed_at = ?
		WHERE id IN (%s)
	`, c.tableName, strings.Join(placeholders, ", "))

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("TouchAccess: %w", err)
	}

	return nil
}

// Get retrieves a record by ID.
func (c *Client) Get(ctx context.Context, id int64) (*storage.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, namespace, content, embedding, memory_type, metadata,
		       access_count, created_at, last_accessed_at
		FROM %s
		WHERE id = ?
	`, c.tableName)

	rows, err := c.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, fmt.Errorf("Get: record not found")
	}

	record, err := scanRecord(rows)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	return record, nil
}

// DeleteAll deletes all records in the given namespace.
func (c *Client) DeleteAll(ctx context.Context, namespace string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE namespace = ?", c.tableName)

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
