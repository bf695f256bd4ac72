package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogmem/cogmem-go/pkg/metricstore"
	"github.com/cogmem/cogmem-go/pkg/storage"
)

// Failure stubs for the degraded paths. They replace the client's
// dependencies after construction, so the rest of the wiring stays real.

type failingEmbedder struct {
	dims int
}

func (f failingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return nil, errors.New("embedding provider offline")
}

func (f failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return nil, errors.New("embedding provider offline")
}

func (f failingEmbedder) Dimensions() int { return f.dims }

func (f failingEmbedder) Close() error { return nil }

// searchFailingStore fails Search calls. With an empty failNamespace every
// search fails; otherwise only searches scoped to that namespace fail.
type searchFailingStore struct {
	storage.VectorStore
	failNamespace string
}

func (s searchFailingStore) Search(ctx context.Context, embedding []float64, opts *storage.SearchOptions) ([]*storage.Record, error) {
	if s.failNamespace == "" || opts.Namespace == s.failNamespace {
		return nil, errors.New("vector index offline")
	}
	return s.VectorStore.Search(ctx, embedding, opts)
}

type historyFailingStore struct {
	storage.VectorStore
}

func (s historyFailingStore) FetchRecent(ctx context.Context, namespace string, limit int) ([]*storage.Record, error) {
	return nil, errors.New("store offline")
}

type appendFailingMetrics struct {
	metricstore.Store
}

func (m appendFailingMetrics) AppendMetric(ctx context.Context, scope metricstore.Scope, metric *metricstore.CognitiveMetric) (int64, error) {
	return 0, errors.New("metric store offline")
}

func newOfflineTestClient(t *testing.T) *Client {
	t.Helper()

	dir := t.TempDir()
	client, err := NewClient(&Config{
		TenantID: "tenant_a",
		AgentID:  "coach",
		Embedder: EmbedderConfig{
			Provider:   "mock",
			Dimensions: 64,
		},
		VectorStore: VectorStoreConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path":              filepath.Join(dir, "memories.db"),
				"table_name":           "memories",
				"embedding_model_dims": 64,
			},
		},
		MetricStore: MetricStoreConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path": filepath.Join(dir, "metrics.db"),
			},
		},
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestGetContext_DegradedOnEmbedderFailure(t *testing.T) {
	client := newOfflineTestClient(t)
	ctx := context.Background()

	// Seed history while the embedder still works.
	result := client.ProcessInteraction(ctx, "I feel stuck", "Tell me more", "t1")
	require.True(t, result.Ok())

	client.embedder = failingEmbedder{dims: 64}

	memCtx, err := client.GetContext(ctx, "what should I do next", "t1")
	require.NoError(t, err)
	require.NotNil(t, memCtx)

	// History survives; the semantic path degrades silently.
	assert.True(t, memCtx.Degraded)
	require.Len(t, memCtx.RecentMessages, 2)
	assert.Equal(t, "I feel stuck", memCtx.RecentMessages[0].Content)
	assert.Empty(t, memCtx.SemanticMemories)
	assert.Equal(t, 0.0, memCtx.Confidence)
}

func TestGetContext_DegradedOnSearchFailure(t *testing.T) {
	client := newOfflineTestClient(t)
	ctx := context.Background()

	_, err := client.Add(ctx, "agent level insight")
	require.NoError(t, err)
	result := client.ProcessInteraction(ctx, "hello", "hi there", "t1")
	require.True(t, result.Ok())

	client.storage = searchFailingStore{VectorStore: client.storage}

	memCtx, err := client.GetContext(ctx, "agent level insight", "t1")
	require.NoError(t, err)

	assert.True(t, memCtx.Degraded)
	assert.Len(t, memCtx.RecentMessages, 2)
	assert.Empty(t, memCtx.SemanticMemories)
	assert.Equal(t, 0.0, memCtx.Confidence)
}

func TestGetContext_DegradedOnUserSliceFailure(t *testing.T) {
	client := newOfflineTestClient(t)
	ctx := context.Background()

	_, err := client.Add(ctx, "shared agent knowledge")
	require.NoError(t, err)

	// Only the user-level namespace fails; agent matches are kept.
	userNS := UserNamespace("tenant_a", "coach", "u1").String()
	client.storage = searchFailingStore{VectorStore: client.storage, failNamespace: userNS}

	memCtx, err := client.GetContext(ctx, "shared agent knowledge", "t1",
		WithContextUserID("u1"))
	require.NoError(t, err)

	assert.True(t, memCtx.Degraded)
	require.Len(t, memCtx.SemanticMemories, 1)
	assert.Equal(t, "shared agent knowledge", memCtx.SemanticMemories[0].Content)
	assert.Greater(t, memCtx.Confidence, 0.0)
}

func TestGetContext_HistoryFetchFailure(t *testing.T) {
	client := newOfflineTestClient(t)

	client.storage = historyFailingStore{VectorStore: client.storage}

	// History is the one hard dependency: its failure is an error, not a
	// degraded context.
	memCtx, err := client.GetContext(context.Background(), "anything", "t1")
	assert.Error(t, err)
	assert.Nil(t, memCtx)
}

func TestAdd_EmbedderFailure(t *testing.T) {
	client := newOfflineTestClient(t)

	client.embedder = failingEmbedder{dims: 64}

	_, err := client.Add(context.Background(), "some content")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestBuildBeliefGraph_MetricAppendFailure(t *testing.T) {
	client := newOfflineTestClient(t)
	ctx := context.Background()

	client.metrics = appendFailingMetrics{Store: client.metrics}

	// The snapshot is persisted before the metric append, so the graph
	// comes back alongside the error.
	g, err := client.BuildBeliefGraph(ctx, "u1",
		[]string{"goal"}, []string{"belief"}, nil)
	assert.Error(t, err)
	require.NotNil(t, g)
	assert.Equal(t, int64(1), g.Version)
}
