package mysql

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cogmem/cogmem-go/pkg/storage"
)

// buildWhereClause builds a WHERE clause for namespace and memory-type filters.
// Namespace matching is exact equality only.
func buildWhereClause(namespace, memoryType string) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	if namespace != "" {
		conditions = append(conditions, "namespace = ?")
		args = append(args, namespace)
	}

	if memoryType != "" {
		conditions = append(conditions, "memory_type = ?")
		args = append(args, memoryType)
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// scanRecord scans a record from a result set.
func scanRecord(rows *sql.Rows) (*storage.Record, error) {
	var record storage.Record
	var embeddingStr string
	var memoryType sql.NullString
	var metadataStr sql.NullString
	var lastAccessedAt sql.NullTime

	err := rows.Scan(
		&record.ID,
		&record.Namespace,
		&record.Content,
		&embeddingStr,
		&memoryType,
		&metadataStr,
		&record.AccessCount,
		&record.CreatedAt,
		&lastAccessedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(embeddingStr), &record.Embedding); err != nil {
		return nil, fmt.Errorf("parse embedding: %w", err)
	}

	if memoryType.Valid {
		record.MemoryType = memoryType.String
	}

	if metadataStr.Valid && metadataStr.String != "" {
		if err := json.Unmarshal([]byte(metadataStr.String), &record.Metadata); err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}
	}

	if lastAccessedAt.Valid {
		record.LastAccessedAt = &lastAccessedAt.Time
	}

	return &record, nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankAndLimit sorts records by score (descending), breaking ties by most
// recent creation time first, and limits the number of results.
func rankAndLimit(records []*storage.Record, limit int) []*storage.Record {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		return records[:limit]
	}

	return records
}
