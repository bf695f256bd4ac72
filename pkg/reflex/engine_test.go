package reflex_test

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
	"github.com/cogmem/cogmem-go/pkg/reflex"
)

func setupReflexTest(t *testing.T, config *reflex.Config) (*reflex.Engine, metricstore.Store) {
	t.Helper()

	store, err := metricsqlite.NewStore(&metricsqlite.Config{
		DBPath: filepath.Join(t.TempDir(), "reflex_test.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return reflex.NewEngine(store, config), store
}

func reflexScope() metricstore.Scope {
	return metricstore.Scope{
		TenantID: "tenant_a",
		AgentID:  "coach",
		UserID:   "user_001",
	}
}

func appendEmotionConflict(t *testing.T, store metricstore.Store, scope metricstore.Scope, value float64) {
	t.Helper()

	_, err := store.AppendMetric(context.Background(), scope, &metricstore.CognitiveMetric{
		Type:  metricstore.MetricEmotionConflict,
		Value: value,
	})
	require.NoError(t, err)
}

func TestEngine_Disabled(t *testing.T) {
	config := reflex.DefaultConfig()
	config.Enabled = false
	engine, store := setupReflexTest(t, config)
	scope := reflexScope()

	// Even with trigger-worthy data, a disabled engine stays silent.
	appendEmotionConflict(t, store, scope, 0.95)

	events, err := engine.CheckTriggers(context.Background(), scope)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestEngine_NoData(t *testing.T) {
	engine, _ := setupReflexTest(t, nil)

	events, err := engine.CheckTriggers(context.Background(), reflexScope())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_EmotionConflict(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()

	appendEmotionConflict(t, store, scope, 0.75)

	events, err := engine.CheckTriggers(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, reflex.TriggerEmotionConflict, event.Type)
	assert.Equal(t, reflex.SeverityMedium, event.Severity)
	assert.Equal(t, 0.75, event.Value)
	assert.Equal(t, 0.7, event.Threshold)
	assert.Equal(t, "open_emotion_checkin", event.Action)
	assert.NotEmpty(t, event.PromptTemplate)
	assert.NotEmpty(t, event.ID)
}

func TestEngine_EmotionConflict_BelowThreshold(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()

	appendEmotionConflict(t, store, scope, 0.69)

	events, err := engine.CheckTriggers(context.Background(), scope)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_EmotionConflict_HighSeverity(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()

	appendEmotionConflict(t, store, scope, 0.92)

	events, err := engine.CheckTriggers(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, reflex.SeverityHigh, events[0].Severity)
}

func TestEngine_EmotionConflict_LatestSampleWins(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()
	ctx := context.Background()

	// An older spike followed by a calm reading must not fire.
	_, err := store.AppendMetric(ctx, scope, &metricstore.CognitiveMetric{
		Type:       metricstore.MetricEmotionConflict,
		Value:      0.95,
		MeasuredAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	_, err = store.AppendMetric(ctx, scope, &metricstore.CognitiveMetric{
		Type:       metricstore.MetricEmotionConflict,
		Value:      0.2,
		MeasuredAt: time.Now(),
	})
	require.NoError(t, err)

	events, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_RepeatedFailure(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()
	ctx := context.Background()

	rater := assessment.NewRater(nil, nil)
	id, err := store.SaveAssessment(ctx, scope, rater.Rate("quit smoking"))
	require.NoError(t, err)

	require.NoError(t, store.TrackAttempt(ctx, scope, id, false))
	require.NoError(t, store.TrackAttempt(ctx, scope, id, false))

	events, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, reflex.TriggerRepeatedFailure, event.Type)
	assert.Equal(t, reflex.SeverityMedium, event.Severity)
	assert.Equal(t, 2.0, event.Value)
	assert.Equal(t, "suggest_goal_review", event.Action)
	assert.Equal(t, id, event.Context["goal_id"])
	assert.Equal(t, "quit smoking", event.Context["goal_text"])
}

func TestEngine_RepeatedFailure_SuccessesOffsetFailures(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()
	ctx := context.Background()

	rater := assessment.NewRater(nil, nil)
	id, err := store.SaveAssessment(ctx, scope, rater.Rate("exercise daily"))
	require.NoError(t, err)

	// Two attempts, one success: one failure, below the threshold of two.
	require.NoError(t, store.TrackAttempt(ctx, scope, id, false))
	require.NoError(t, store.TrackAttempt(ctx, scope, id, true))

	events, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_RepeatedFailure_HighSeverity(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()
	ctx := context.Background()

	rater := assessment.NewRater(nil, nil)
	id, err := store.SaveAssessment(ctx, scope, rater.Rate("find a new job"))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.TrackAttempt(ctx, scope, id, false))
	}

	events, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, reflex.SeverityHigh, events[0].Severity)
	assert.Equal(t, 5.0, events[0].Value)
}

func TestEngine_RepeatedFailure_PerGoal(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()
	ctx := context.Background()

	rater := assessment.NewRater(nil, nil)

	first, err := store.SaveAssessment(ctx, scope, rater.Rate("goal one"))
	require.NoError(t, err)
	second, err := store.SaveAssessment(ctx, scope, rater.Rate("goal two"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.TrackAttempt(ctx, scope, first, false))
		require.NoError(t, store.TrackAttempt(ctx, scope, second, false))
	}

	events, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestEngine_BeliefConflict(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()
	ctx := context.Background()

	// 3 beliefs x 2 goals at scale 0.15 gives a conflict score of 0.9.
	builder := graph.NewBuilder(nil)
	g, err := builder.Build(
		[]string{"goal one", "goal two"},
		[]string{"belief one", "belief two", "belief three"},
		nil,
	)
	require.NoError(t, err)
	_, err = store.SaveGraph(ctx, scope, g)
	require.NoError(t, err)

	events, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, reflex.TriggerBeliefConflict, event.Type)
	assert.Equal(t, reflex.SeverityMedium, event.Severity)
	assert.InDelta(t, 0.9, event.Value, 1e-9)
	assert.Equal(t, "open_belief_reframe", event.Action)
}

func TestEngine_BeliefConflict_BelowThreshold(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()
	ctx := context.Background()

	builder := graph.NewBuilder(nil)
	g, err := builder.Build([]string{"goal"}, []string{"belief"}, nil)
	require.NoError(t, err)
	_, err = store.SaveGraph(ctx, scope, g)
	require.NoError(t, err)

	events, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_CustomThresholds(t *testing.T) {
	config := reflex.DefaultConfig()
	config.EmotionConflictThreshold = 0.5
	engine, store := setupReflexTest(t, config)
	scope := reflexScope()

	// 0.6 fires under the lowered threshold, not under the default.
	appendEmotionConflict(t, store, scope, 0.6)

	events, err := engine.CheckTriggers(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 0.5, events[0].Threshold)
}

func TestEngine_MultipleTriggersInOneCall(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()
	ctx := context.Background()

	appendEmotionConflict(t, store, scope, 0.8)

	rater := assessment.NewRater(nil, nil)
	id, err := store.SaveAssessment(ctx, scope, rater.Rate("meditate daily"))
	require.NoError(t, err)
	require.NoError(t, store.TrackAttempt(ctx, scope, id, false))
	require.NoError(t, store.TrackAttempt(ctx, scope, id, false))

	events, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestEngine_Idempotent(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()
	ctx := context.Background()

	appendEmotionConflict(t, store, scope, 0.8)

	first, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)
	second, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)

	// Unchanged data re-fires the same trigger; there is no cooldown.
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Type, second[0].Type)
	assert.Equal(t, first[0].Value, second[0].Value)
}

func TestEngine_ScopeIsolation(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()

	appendEmotionConflict(t, store, scope, 0.8)

	otherUser := scope
	otherUser.UserID = "user_002"

	events, err := engine.CheckTriggers(context.Background(), otherUser)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_LogTrigger(t *testing.T) {
	engine, store := setupReflexTest(t, nil)
	scope := reflexScope()
	ctx := context.Background()

	appendEmotionConflict(t, store, scope, 0.8)

	events, err := engine.CheckTriggers(ctx, scope)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, engine.LogTrigger(ctx, scope, &events[0]))

	audit, err := store.LatestMetric(ctx, scope, metricstore.MetricType("trigger_emotion_conflict"))
	require.NoError(t, err)
	require.NotNil(t, audit)
	assert.Equal(t, 0.8, audit.Value)
	assert.True(t, audit.ThresholdExceeded)
	assert.Equal(t, events[0].ID, audit.Context["trigger_id"])
}
