package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogmem/cogmem-go/pkg/assessment"
	"github.com/cogmem/cogmem-go/pkg/graph"
	"github.com/cogmem/cogmem-go/pkg/metricstore"
	metricsqlite "github.com/cogmem/cogmem-go/pkg/metricstore/sqlite"
)

func setupMetricStoreTest(t *testing.T) metricstore.Store {
	t.Helper()

	store, err := metricsqlite.NewStore(&metricsqlite.Config{
		DBPath: filepath.Join(t.TempDir(), "metrics_test.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testScope() metricstore.Scope {
	return metricstore.Scope{
		TenantID: "tenant_a",
		AgentID:  "coach",
		UserID:   "user_001",
	}
}

func TestMetricStore_SaveAndGetAssessment(t *testing.T) {
	store := setupMetricStoreTest(t)
	ctx := context.Background()
	scope := testScope()

	rater := assessment.NewRater(nil, nil)
	a := rater.Rate("save money for retirement")

	id, err := store.SaveAssessment(ctx, scope, a)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, a.ID)

	retrieved, err := store.GetAssessment(ctx, scope, id)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, "save money for retirement", retrieved.GoalText)
	assert.Equal(t, assessment.CategoryFinancial, retrieved.Category)
	assert.Equal(t, 70, retrieved.Gap)
	assert.Zero(t, retrieved.AttemptCount)
}

func TestMetricStore_GetAssessment_ScopeIsolation(t *testing.T) {
	store := setupMetricStoreTest(t)
	ctx := context.Background()
	scope := testScope()

	rater := assessment.NewRater(nil, nil)
	id, err := store.SaveAssessment(ctx, scope, rater.Rate("run a marathon"))
	require.NoError(t, err)

	otherUser := scope
	otherUser.UserID = "user_002"

	retrieved, err := store.GetAssessment(ctx, otherUser, id)
	require.NoError(t, err)
	assert.Nil(t, retrieved)
}

func TestMetricStore_GetAssessment_NotFound(t *testing.T) {
	store := setupMetricStoreTest(t)

	retrieved, err := store.GetAssessment(context.Background(), testScope(), 999)
	require.NoError(t, err)
	assert.Nil(t, retrieved)
}

func TestMetricStore_TrackAttempt(t *testing.T) {
	store := setupMetricStoreTest(t)
	ctx := context.Background()
	scope := testScope()

	rater := assessment.NewRater(nil, nil)
	id, err := store.SaveAssessment(ctx, scope, rater.Rate("write a novel"))
	require.NoError(t, err)

	require.NoError(t, store.TrackAttempt(ctx, scope, id, false))
	require.NoError(t, store.TrackAttempt(ctx, scope, id, false))
	require.NoError(t, store.TrackAttempt(ctx, scope, id, true))

	retrieved, err := store.GetAssessment(ctx, scope, id)
	require.NoError(t, err)
	assert.Equal(t, 3, retrieved.AttemptCount)
	assert.Equal(t, 1, retrieved.SuccessCount)
}

func TestMetricStore_TrackAttempt_MissingGoal(t *testing.T) {
	store := setupMetricStoreTest(t)

	err := store.TrackAttempt(context.Background(), testScope(), 999, true)
	assert.Error(t, err)
}

func TestMetricStore_ListAssessments_SinceFilter(t *testing.T) {
	store := setupMetricStoreTest(t)
	ctx := context.Background()
	scope := testScope()

	rater := assessment.NewRater(nil, nil)

	_, err := store.SaveAssessment(ctx, scope, rater.Rate("first goal"))
	require.NoError(t, err)
	_, err = store.SaveAssessment(ctx, scope, rater.Rate("second goal"))
	require.NoError(t, err)

	// Zero since returns everything in scope.
	all, err := store.ListAssessments(ctx, scope, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A future since excludes records updated before it.
	none, err := store.ListAssessments(ctx, scope, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMetricStore_SaveGraph_Versioning(t *testing.T) {
	store := setupMetricStoreTest(t)
	ctx := context.Background()
	scope := testScope()

	builder := graph.NewBuilder(nil)

	first, err := builder.Build([]string{"goal one"}, []string{"belief"}, nil)
	require.NoError(t, err)

	version, err := store.SaveGraph(ctx, scope, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, int64(1), first.Version)

	second, err := builder.Build([]string{"goal one", "goal two"}, []string{"belief"}, nil)
	require.NoError(t, err)

	version, err = store.SaveGraph(ctx, scope, second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestMetricStore_LatestGraph(t *testing.T) {
	store := setupMetricStoreTest(t)
	ctx := context.Background()
	scope := testScope()

	latest, err := store.LatestGraph(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, latest)

	builder := graph.NewBuilder(nil)

	g1, err := builder.Build([]string{"goal"}, nil, nil)
	require.NoError(t, err)
	_, err = store.SaveGraph(ctx, scope, g1)
	require.NoError(t, err)

	g2, err := builder.Build([]string{"goal"}, []string{"belief"}, nil)
	require.NoError(t, err)
	_, err = store.SaveGraph(ctx, scope, g2)
	require.NoError(t, err)

	latest, err = store.LatestGraph(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(2), latest.Version)
	assert.InDelta(t, 0.15, latest.ConflictScore, 1e-9)
	assert.Len(t, latest.Nodes, 2)
}

func TestMetricStore_AppendAndLatestMetric(t *testing.T) {
	store := setupMetricStoreTest(t)
	ctx := context.Background()
	scope := testScope()

	latest, err := store.LatestMetric(ctx, scope, metricstore.MetricEmotionConflict)
	require.NoError(t, err)
	assert.Nil(t, latest)

	threshold := 0.7
	base := time.Now().Add(-time.Minute)

	for i, value := range []float64{0.4, 0.8} {
		_, err := store.AppendMetric(ctx, scope, &metricstore.CognitiveMetric{
			Type:              metricstore.MetricEmotionConflict,
			Value:             value,
			Context:           map[string]interface{}{"sample": i},
			Threshold:         &threshold,
			ThresholdExceeded: value >= threshold,
			MeasuredAt:        base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	latest, err = store.LatestMetric(ctx, scope, metricstore.MetricEmotionConflict)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 0.8, latest.Value)
	assert.True(t, latest.ThresholdExceeded)
	require.NotNil(t, latest.Threshold)
	assert.Equal(t, 0.7, *latest.Threshold)
}

func TestMetricStore_LatestMetric_TypeAndScopeFilter(t *testing.T) {
	store := setupMetricStoreTest(t)
	ctx := context.Background()
	scope := testScope()

	_, err := store.AppendMetric(ctx, scope, &metricstore.CognitiveMetric{
		Type:  metricstore.MetricBeliefConflict,
		Value: 0.9,
	})
	require.NoError(t, err)

	// Different metric type sees nothing.
	latest, err := store.LatestMetric(ctx, scope, metricstore.MetricEmotionConflict)
	require.NoError(t, err)
	assert.Nil(t, latest)

	// Different user sees nothing.
	otherUser := scope
	otherUser.UserID = "user_002"
	latest, err = store.LatestMetric(ctx, otherUser, metricstore.MetricBeliefConflict)
	require.NoError(t, err)
	assert.Nil(t, latest)
}
