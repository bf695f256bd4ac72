package core

import (
	"context"
	"errors"

	"github.com/cogmem/cogmem-go/pkg/assessment"
	"github.com/cogmem/cogmem-go/pkg/graph"
	"github.com/cogmem/cogmem-go/pkg/metricstore"
	"github.com/cogmem/cogmem-go/pkg/reflex"
)

// Categorize classifies a goal into the fixed taxonomy.
//
// Classification is deterministic: the same input always yields the same
// category. Goals matching no keyword fall back to "other".
func (c *Client) Categorize(goalText string) assessment.Category {
	return c.rater.Categorize(goalText)
}

// RateGoal rates a goal with the baseline heuristic and persists the
// assessment for the user.
//
// The GAS levels and ratings come from the configured rater constants; the
// returned assessment carries the ID assigned by the metric store.
func (c *Client) RateGoal(ctx context.Context, userID, goalText string) (*assessment.GoalAssessment, error) {
	if goalText == "" {
		return nil, NewMemoryError("RateGoal", ErrInvalidInput)
	}

	a := c.rater.Rate(goalText)

	if _, err := c.metrics.SaveAssessment(ctx, c.scope(userID), a); err != nil {
		return nil, NewMemoryError("RateGoal", err)
	}

	return a, nil
}

// TrackAttempt records one attempt at a goal.
//
// The attempt counter always increments; the success counter increments
// only when success is true. The reflex engine's rolling failure check
// reads these counters.
func (c *Client) TrackAttempt(ctx context.Context, userID string, goalID int64, success bool) error {
	if err := c.metrics.TrackAttempt(ctx, c.scope(userID), goalID, success); err != nil {
		return NewMemoryError("TrackAttempt", err)
	}
	return nil
}

// BuildBeliefGraph constructs a belief graph from intake lists and persists
// it for the user.
//
// The graph is rebuilt wholesale: the store assigns the next version number
// and the previous snapshot stays untouched. A belief_conflict metric is
// appended alongside the snapshot so the reflex engine can evaluate it.
//
// Blank entries in any input list are rejected with ErrInvalidInput; empty
// lists are valid and produce a trivial graph.
//
// If appending the derived belief_conflict metric fails after the snapshot
// was saved, the persisted graph is returned together with a non-nil error.
// Callers that only need the graph may use it and treat the error as a
// telemetry warning; a nil graph is returned only when nothing was persisted.
func (c *Client) BuildBeliefGraph(ctx context.Context, userID string, goals, limitingBeliefs, desiredOutcomes []string) (*graph.BeliefGraph, error) {
	g, err := c.builder.Build(goals, limitingBeliefs, desiredOutcomes)
	if err != nil {
		if errors.Is(err, graph.ErrInvalidEntry) {
			err = ErrInvalidInput
		}
		return nil, NewMemoryError("BuildBeliefGraph", err)
	}

	scope := c.scope(userID)

	if _, err := c.metrics.SaveGraph(ctx, scope, g); err != nil {
		return nil, NewMemoryError("BuildBeliefGraph", err)
	}

	threshold := c.reflexConfig().BeliefConflictThreshold
	metric := &metricstore.CognitiveMetric{
		Type:  metricstore.MetricBeliefConflict,
		Value: g.ConflictScore,
		Context: map[string]interface{}{
			"graph_version": g.Version,
			"node_count":    len(g.Nodes),
			"edge_count":    len(g.Edges),
		},
		Threshold:         &threshold,
		ThresholdExceeded: g.ConflictScore >= threshold,
	}

	if _, err := c.metrics.AppendMetric(ctx, scope, metric); err != nil {
		return g, NewMemoryError("BuildBeliefGraph", err)
	}

	return g, nil
}

// RecordEmotionConflict appends an emotion_conflict metric sample for the
// user. The value is expected in [0, 1].
func (c *Client) RecordEmotionConflict(ctx context.Context, userID string, value float64, details map[string]interface{}) error {
	threshold := c.reflexConfig().EmotionConflictThreshold
	metric := &metricstore.CognitiveMetric{
		Type:              metricstore.MetricEmotionConflict,
		Value:             value,
		Context:           details,
		Threshold:         &threshold,
		ThresholdExceeded: value >= threshold,
	}

	if _, err := c.metrics.AppendMetric(ctx, c.scope(userID), metric); err != nil {
		return NewMemoryError("RecordEmotionConflict", err)
	}
	return nil
}

// CheckTriggers evaluates the reflex trigger conditions for a user.
//
// Returns an empty list when the engine is disabled. Each condition is
// evaluated independently; partial results are returned alongside any
// store errors.
func (c *Client) CheckTriggers(ctx context.Context, userID string) ([]reflex.TriggerEvent, error) {
	return c.reflexEngine.CheckTriggers(ctx, c.scope(userID))
}

// LogTrigger appends an audit metric for a fired trigger event.
//
// A failure here does not invalidate the already-returned trigger list;
// callers may ignore the error.
func (c *Client) LogTrigger(ctx context.Context, userID string, event *reflex.TriggerEvent) error {
	return c.reflexEngine.LogTrigger(ctx, c.scope(userID), event)
}

// reflexConfig returns the effective reflex configuration.
func (c *Client) reflexConfig() *reflex.Config {
	if c.config.Reflex != nil {
		return c.config.Reflex
	}
	return reflex.DefaultConfig()
}
