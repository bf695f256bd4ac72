package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cogmem/cogmem-go/pkg/storage"
)

// vectorToString converts a float64 slice to the pgvector text format.
// Example: [0.1, 0.2, 0.3] -> "[0.1,0.2,0.3]"
func vectorToString(vector []float64) string {
	if len(vector) == 0 {
		return "[]"
	}

	parts := make([]string, len(vector))
	for i, v := range vector {
		parts[i] = fmt.Sprintf("%f", v)
	}

	return "[" + strings.Join(parts, ",") + "]"
}

// buildWhereClauseWithOffset builds a WHERE clause starting from a specific
// parameter index. Namespace matching is exact equality only.
func buildWhereClauseWithOffset(namespace, memoryType string, startIndex int) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := startIndex

	if namespace != "" {
		conditions = append(conditions, fmt.Sprintf("namespace = $%d", argIndex))
		args = append(args, namespace)
		argIndex++
	}

	if memoryType != "" {
		conditions = append(conditions, fmt.Sprintf("memory_type = $%d", argIndex))
		args = append(args, memoryType)
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// scanRow scans a record without a similarity column.
func scanRow(rows *sql.Rows) (*storage.Record, error) {
	var record storage.Record
	var memoryType sql.NullString
	var metadataStr sql.NullString
	var lastAccessedAt sql.NullTime

	err := rows.Scan(
		&record.ID,
		&record.Namespace,
		&record.Content,
		&memoryType,
		&metadataStr,
		&record.AccessCount,
		&record.CreatedAt,
		&lastAccessedAt,
	)
	if err != nil {
		return nil, err
	}

	return finishScan(&record, memoryType, metadataStr, lastAccessedAt)
}

// scanSearchRow scans a record with a trailing similarity column.
func scanSearchRow(rows *sql.Rows) (*storage.Record, error) {
	var record storage.Record
	var memoryType sql.NullString
	var metadataStr sql.NullString
	var lastAccessedAt sql.NullTime

	err := rows.Scan(
		&record.ID,
		&record.Namespace,
		&record.Content,
		&memoryType,
		&metadataStr,
		&record.AccessCount,
		&record.CreatedAt,
		&lastAccessedAt,
		&record.Score,
	)
	if err != nil {
		return nil, err
	}

	return finishScan(&record, memoryType, metadataStr, lastAccessedAt)
}

func finishScan(record *storage.Record, memoryType, metadataStr sql.NullString, lastAccessedAt sql.NullTime) (*storage.Record, error) {
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

	return record, nil
}
