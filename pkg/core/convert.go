// Package core provides the main cogmem client and memory management functionality.
package core

import "github.com/cogmem/cogmem-go/pkg/storage"

// toStorageRecord converts a core.MemoryRecord to a storage.Record.
func toStorageRecord(record *MemoryRecord) *storage.Record {
	if record == nil {
		return nil
	}
	return &storage.Record{
		ID:             record.ID,
		Namespace:      record.Namespace.String(),
		Content:        record.Content,
		Embedding:      record.Embedding,
		MemoryType:     record.MemoryType,
		Metadata:       record.Metadata,
		AccessCount:    record.AccessCount,
		CreatedAt:      record.CreatedAt,
		LastAccessedAt: record.LastAccessedAt,
		Score:          record.Score,
	}
}

// fromStorageRecord converts a storage.Record to a core.MemoryRecord.
func fromStorageRecord(record *storage.Record) *MemoryRecord {
	if record == nil {
		return nil
	}
	return &MemoryRecord{
		ID:             record.ID,
		Namespace:      Namespace(record.Namespace),
		Content:        record.Content,
		Embedding:      record.Embedding,
		MemoryType:     record.MemoryType,
		Metadata:       record.Metadata,
		AccessCount:    record.AccessCount,
		CreatedAt:      record.CreatedAt,
		LastAccessedAt: record.LastAccessedAt,
		Score:          record.Score,
	}
}

// fromStorageRecords converts a slice of storage records.
func fromStorageRecords(records []*storage.Record) []*MemoryRecord {
	result := make([]*MemoryRecord, len(records))
	for i, record := range records {
		result[i] = fromStorageRecord(record)
	}
	return result
}
