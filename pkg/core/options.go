// Package core provides the main cogmem client and memory management functionality.
package core

// AddOption is a function type for configuring Add operations.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type AddOption func(*AddOptions)

// AddOptions contains configuration options for Add operations.
type AddOptions struct {
	// ThreadID stores the memory under the thread-level namespace.
	// Takes precedence over UserID when both are set.
	ThreadID string

	// UserID stores the memory under the user-level namespace.
	UserID string

	// MemoryType specifies the type of memory (e.g. "interaction", "insight").
	MemoryType string

	// Metadata contains additional metadata about the memory.
	Metadata map[string]interface{}
}

// WithThreadID scopes an Add to a thread-level namespace.
//
// Example:
//
//	record, _ := client.Add(ctx, "content", core.WithThreadID("thread_42"))
func WithThreadID(threadID string) AddOption {
	return func(opts *AddOptions) {
		opts.ThreadID = threadID
	}
}

// WithUserID scopes an Add to a user-level namespace.
//
// Example:
//
//	record, _ := client.Add(ctx, "content", core.WithUserID("user_001"))
func WithUserID(userID string) AddOption {
	return func(opts *AddOptions) {
		opts.UserID = userID
	}
}

// WithMemoryType sets the memory type tag for Add operations.
func WithMemoryType(memoryType string) AddOption {
	return func(opts *AddOptions) {
		opts.MemoryType = memoryType
	}
}

// WithMetadata sets additional metadata for Add operations.
func WithMetadata(metadata map[string]interface{}) AddOption {
	return func(opts *AddOptions) {
		opts.Metadata = metadata
	}
}

// applyAddOptions applies Add options to a default options struct.
func applyAddOptions(opts []AddOption) *AddOptions {
	options := &AddOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// SearchOption is a function type for configuring Search operations.
type SearchOption func(*SearchOptions)

// SearchOptions contains configuration options for Search operations.
type SearchOptions struct {
	// ThreadID searches the thread-level namespace.
	// Takes precedence over UserID when both are set.
	ThreadID string

	// UserID searches the user-level namespace.
	UserID string

	// Limit sets the maximum number of results to return.
	Limit int

	// MinScore sets the minimum similarity score for results.
	MinScore float64

	// MemoryType restricts results to records with this memory type.
	MemoryType string
}

// WithThreadIDForSearch scopes a Search to a thread-level namespace.
func WithThreadIDForSearch(threadID string) SearchOption {
	return func(opts *SearchOptions) {
		opts.ThreadID = threadID
	}
}

// WithUserIDForSearch scopes a Search to a user-level namespace.
//
// Example:
//
//	results, _ := client.Search(ctx, "query", core.WithUserIDForSearch("user_001"))
func WithUserIDForSearch(userID string) SearchOption {
	return func(opts *SearchOptions) {
		opts.UserID = userID
	}
}

// WithLimit sets the maximum number of results for Search operations.
func WithLimit(limit int) SearchOption {
	return func(opts *SearchOptions) {
		opts.Limit = limit
	}
}

// WithMinScore sets the minimum similarity score for Search operations.
func WithMinScore(minScore float64) SearchOption {
	return func(opts *SearchOptions) {
		opts.MinScore = minScore
	}
}

// WithMemoryTypeFilter restricts Search results to one memory type.
func WithMemoryTypeFilter(memoryType string) SearchOption {
	return func(opts *SearchOptions) {
		opts.MemoryType = memoryType
	}
}

// applySearchOptions applies Search options to a default options struct.
func applySearchOptions(opts []SearchOption) *SearchOptions {
	options := &SearchOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// ContextOption is a function type for configuring GetContext and
// ProcessInteraction operations.
type ContextOption func(*ContextOptions)

// ContextOptions contains configuration options for context assembly.
type ContextOptions struct {
	// UserID additionally searches the user-level namespace and tags
	// stored turns with the user.
	UserID string
}

// WithContextUserID adds user-level retrieval to GetContext, or tags
// stored turns in ProcessInteraction.
//
// Example:
//
//	memCtx, _ := client.GetContext(ctx, input, "thread_42",
//	    core.WithContextUserID("user_001"))
func WithContextUserID(userID string) ContextOption {
	return func(opts *ContextOptions) {
		opts.UserID = userID
	}
}

// applyContextOptions applies context options to a default options struct.
func applyContextOptions(opts []ContextOption) *ContextOptions {
	options := &ContextOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
