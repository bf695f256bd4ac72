// Package core provides the main cogmem client and memory management functionality.
package core

import (
	"fmt"
	"strings"
	"time"
)

// MemoryRecord represents a single memory stored in the system.
//
// A record contains:
//   - Content: The text content of the memory (immutable after creation)
//   - Embedding: Vector representation for similarity search
//   - Namespace: The storage namespace the record belongs to
//   - Metadata: Additional structured information
//
// AccessCount and LastAccessedAt are the only fields mutated after creation.
type MemoryRecord struct {
	// ID is the unique identifier of the record.
	ID int64 `json:"id"`

	// Namespace is the full namespace key the record belongs to.
	Namespace Namespace `json:"namespace"`

	// Content is the text content of the memory.
	Content string `json:"content"`

	// Embedding is the vector embedding for similarity search.
	// Omitted from JSON to reduce payload size.
	Embedding []float64 `json:"embedding,omitempty"`

	// MemoryType tags the kind of memory (e.g. "interaction", "insight").
	MemoryType string `json:"memory_type,omitempty"`

	// Metadata contains additional structured information about the memory.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// AccessCount is the number of times the record was returned by a search.
	AccessCount int64 `json:"access_count"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`

	// LastAccessedAt is when the record was last returned by a search
	// (nil if never accessed).
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`

	// Score is the similarity score from search operations (0.0-1.0).
	// Higher scores indicate better matches.
	Score float64 `json:"score,omitempty"`
}

// Common memory type tags.
const (
	// MemoryTypeInteraction tags a stored conversational turn.
	MemoryTypeInteraction = "interaction"

	// MemoryTypeInsight tags a distilled semantic memory.
	MemoryTypeInsight = "insight"
)

// Namespace is a composite memory-scoping key.
//
// Namespaces take one of three forms:
//
//	tenant:agent                     (agent level)
//	tenant:agent:thread:<threadID>   (thread level)
//	tenant:agent:user:<userID>       (user level)
//
// Search never crosses namespace boundaries: backends match the full key
// with exact equality, not prefixes.
type Namespace string

// AgentNamespace returns the agent-level namespace for a tenant/agent pair.
func AgentNamespace(tenant, agent string) Namespace {
	return Namespace(fmt.Sprintf("%s:%s", tenant, agent))
}

// ThreadNamespace returns the thread-level namespace for one conversation.
func ThreadNamespace(tenant, agent, threadID string) Namespace {
	return Namespace(fmt.Sprintf("%s:%s:thread:%s", tenant, agent, threadID))
}

// UserNamespace returns the user-level namespace for one end user.
func UserNamespace(tenant, agent, userID string) Namespace {
	return Namespace(fmt.Sprintf("%s:%s:user:%s", tenant, agent, userID))
}

// String returns the namespace key.
func (n Namespace) String() string {
	return string(n)
}

// validateComponent rejects namespace components that would corrupt the
// composite key.
func validateComponent(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, name)
	}
	if strings.Contains(value, ":") {
		return fmt.Errorf("%w: %s must not contain ':'", ErrInvalidConfig, name)
	}
	return nil
}

// MemoryContext is the assembled retrieval context for one user input.
type MemoryContext struct {
	// SemanticMemories are the top semantic matches across the agent-level
	// and (optionally) user-level namespaces, with similarity scores set.
	SemanticMemories []*MemoryRecord `json:"semantic_memories"`

	// RecentMessages are the last raw interaction records for the thread,
	// in chronological order. Populated even when the semantic path is down.
	RecentMessages []*MemoryRecord `json:"recent_messages"`

	// Confidence is the arithmetic mean of the similarity scores of
	// SemanticMemories, or exactly 0.0 when none were returned.
	Confidence float64 `json:"confidence"`

	// Namespace is the agent-level namespace the semantic search ran in.
	Namespace Namespace `json:"namespace"`

	// Degraded reports that the semantic path failed and the context was
	// assembled from conversation history alone.
	Degraded bool `json:"degraded,omitempty"`
}

// InteractionResult reports the outcome of storing one conversational
// exchange. Storage failures do not propagate to the caller as errors;
// they are recorded here so the caller can decide to log or ignore them.
type InteractionResult struct {
	// UserRecord is the stored user turn (nil if storage failed).
	UserRecord *MemoryRecord

	// AssistantRecord is the stored assistant turn (nil if storage failed).
	AssistantRecord *MemoryRecord

	// UserErr is the storage error for the user turn, if any.
	UserErr error

	// AssistantErr is the storage error for the assistant turn, if any.
	AssistantErr error
}

// Ok reports whether both turns were stored successfully.
func (r *InteractionResult) Ok() bool {
	return r.UserErr == nil && r.AssistantErr == nil
}
