package sqlite

import (
	"math"
	"sort"
	"strings"

	"github.com/cogmem/cogmem-go/pkg/storage"
)

// buildWhereClause builds a WHERE clause for namespace and memory-type filters.
//
// The namespace condition is exact equality; prefix or pattern matching would
// leak records across namespace boundaries.
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
