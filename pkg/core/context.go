package core

import (
	"context"
	"time"

	"github.com/cogmem/cogmem-go/pkg/storage"
)

// GetContext assembles the retrieval context for one user input.
//
// The method:
//  1. Always fetches the thread's recent interaction history first,
//     regardless of vector-store or embedder health. This guarantees
//     conversational continuity even in degraded mode.
//  2. Searches the agent-level namespace for the top semantic matches.
//  3. If a user ID is given, additionally searches the user-level
//     namespace for the top user matches.
//
// Confidence is the arithmetic mean of the similarity scores across all
// returned semantic memories, exactly 0.0 when none were returned or when
// the embedding/store path failed. A failing semantic path never produces
// an error: the context degrades to history-only with Degraded set.
//
// An error is returned only when the history fetch itself fails or the
// context is cancelled.
//
// Parameters:
//   - ctx: Context for cancellation
//   - userInput: The user input to match semantic memories against
//   - threadID: The conversation thread to fetch history for
//   - opts: Optional parameters (UserID)
//
// Example:
//
//	memCtx, err := client.GetContext(ctx, "I want to quit my job", "thread_42",
//	    core.WithContextUserID("user_001"))
func (c *Client) GetContext(ctx context.Context, userInput, threadID string, opts ...ContextOption) (*MemoryContext, error) {
	ctxOpts := applyContextOptions(opts)
	agentNS := c.AgentNamespace()
	threadNS := ThreadNamespace(c.config.TenantID, c.config.AgentID, threadID)

	memCtx := &MemoryContext{
		SemanticMemories: []*MemoryRecord{},
		RecentMessages:   []*MemoryRecord{},
		Namespace:        agentNS,
	}

	// Recent history comes first and is the one hard dependency.
	recent, err := c.storage.FetchRecent(ctx, threadNS.String(), c.config.Context.RecentLimit)
	if err != nil {
		return nil, NewMemoryError("GetContext", err)
	}
	memCtx.RecentMessages = fromStorageRecords(recent)

	// The semantic path degrades instead of failing.
	queryEmbedding, err := c.embedder.Embed(ctx, userInput)
	if err != nil {
		memCtx.Degraded = true
		return memCtx, nil
	}

	semantic, err := c.storage.Search(ctx, queryEmbedding, &storage.SearchOptions{
		Namespace: agentNS.String(),
		Limit:     c.config.Context.SemanticLimit,
	})
	if err != nil {
		memCtx.Degraded = true
		return memCtx, nil
	}

	if ctxOpts.UserID != "" {
		userNS := UserNamespace(c.config.TenantID, c.config.AgentID, ctxOpts.UserID)
		userMatches, err := c.storage.Search(ctx, queryEmbedding, &storage.SearchOptions{
			Namespace: userNS.String(),
			Limit:     c.config.Context.UserLimit,
		})
		if err != nil {
			// Keep the agent-level matches; only the user slice is lost.
			memCtx.Degraded = true
		} else {
			semantic = append(semantic, userMatches...)
		}
	}

	c.touchAsync(semantic)

	memCtx.SemanticMemories = fromStorageRecords(semantic)
	memCtx.Confidence = meanScore(memCtx.SemanticMemories)

	return memCtx, nil
}

// ProcessInteraction stores both turns of a conversational exchange under
// the thread namespace.
//
// Storage failures do not propagate: each turn's outcome is reported in
// the returned InteractionResult so the caller can decide whether to log
// or ignore it. The assistant turn is attempted even when the user turn
// fails.
//
// Parameters:
//   - ctx: Context for cancellation
//   - userInput: The user's message
//   - response: The assistant's reply
//   - threadID: The conversation thread
//   - opts: Optional parameters (UserID)
func (c *Client) ProcessInteraction(ctx context.Context, userInput, response, threadID string, opts ...ContextOption) *InteractionResult {
	ctxOpts := applyContextOptions(opts)
	now := time.Now()

	result := &InteractionResult{}

	result.UserRecord, result.UserErr = c.Add(ctx, userInput,
		WithThreadID(threadID),
		WithMemoryType(MemoryTypeInteraction),
		WithMetadata(turnMetadata("user", ctxOpts.UserID, now)),
	)

	result.AssistantRecord, result.AssistantErr = c.Add(ctx, response,
		WithThreadID(threadID),
		WithMemoryType(MemoryTypeInteraction),
		WithMetadata(turnMetadata("assistant", ctxOpts.UserID, now)),
	)

	return result
}

// turnMetadata builds the metadata map for one stored conversational turn.
func turnMetadata(role, userID string, at time.Time) map[string]interface{} {
	metadata := map[string]interface{}{
		"role":    role,
		"turn_at": at.Format(time.RFC3339),
	}
	if userID != "" {
		metadata["user_id"] = userID
	}
	return metadata
}

// meanScore returns the arithmetic mean of record similarity scores,
// exactly 0.0 for an empty slice.
func meanScore(records []*MemoryRecord) float64 {
	if len(records) == 0 {
		return 0.0
	}

	var sum float64
	for _, record := range records {
		sum += record.Score
	}
	return sum / float64(len(records))
}
