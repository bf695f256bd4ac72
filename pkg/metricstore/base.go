// Package metricstore provides append-only persistence for cognitive
// metrics, goal assessments, and belief-graph snapshots.
//
// Everything is scoped to a (tenant, agent, user) triple and queried by
// "latest of kind" semantics. Metrics are never mutated after the append;
// goal assessments mutate only their attempt/success counters.
package metricstore

import (
	"context"
	"time"

	"github.com/cogmem/cogmem-go/pkg/assessment"
	"github.com/cogmem/cogmem-go/pkg/graph"
)

// MetricType identifies the kind of a cognitive metric.
type MetricType string

const (
	// MetricEmotionConflict records a detected emotional conflict level.
	MetricEmotionConflict MetricType = "emotion_conflict"

	// MetricRepeatedFailure records a repeated-failure observation.
	MetricRepeatedFailure MetricType = "repeated_failure"

	// MetricBeliefConflict records a belief-graph conflict score.
	MetricBeliefConflict MetricType = "belief_conflict"

	// TriggerMetricPrefix prefixes audit metrics written when a reflex
	// trigger fires, e.g. "trigger_emotion_conflict".
	TriggerMetricPrefix = "trigger_"
)

// Scope identifies whose data a store operation touches.
type Scope struct {
	// TenantID is the owning tenant.
	TenantID string

	// AgentID is the agent within the tenant.
	AgentID string

	// UserID is the end user, when the data is user-specific.
	UserID string
}

// CognitiveMetric is one append-only time-series sample.
type CognitiveMetric struct {
	// ID is the unique identifier, assigned on append.
	ID int64 `json:"id"`

	// Type is the metric kind.
	Type MetricType `json:"type"`

	// Value is the measured value.
	Value float64 `json:"value"`

	// Context carries structured context data for the sample.
	Context map[string]interface{} `json:"context,omitempty"`

	// Threshold is the threshold in effect when the sample was taken
	// (nil if none applied).
	Threshold *float64 `json:"threshold,omitempty"`

	// ThresholdExceeded reports whether Value crossed Threshold.
	ThresholdExceeded bool `json:"threshold_exceeded"`

	// MeasuredAt is when the sample was taken.
	MeasuredAt time.Time `json:"measured_at"`
}

// Store defines the interface for metric/assessment persistence backends.
type Store interface {
	// SaveAssessment persists a new goal assessment and returns its ID.
	SaveAssessment(ctx context.Context, scope Scope, a *assessment.GoalAssessment) (int64, error)

	// GetAssessment retrieves an assessment by ID within a scope.
	// Returns nil without error when not found.
	GetAssessment(ctx context.Context, scope Scope, id int64) (*assessment.GoalAssessment, error)

	// ListAssessments returns assessments in the scope whose counters were
	// last updated at or after since. A zero since returns all.
	ListAssessments(ctx context.Context, scope Scope, since time.Time) ([]*assessment.GoalAssessment, error)

	// TrackAttempt increments an assessment's attempt counter, and its
	// success counter when success is true.
	TrackAttempt(ctx context.Context, scope Scope, goalID int64, success bool) error

	// SaveGraph persists a belief-graph snapshot, assigning the next
	// version number for the scope. Returns the assigned version.
	SaveGraph(ctx context.Context, scope Scope, g *graph.BeliefGraph) (int64, error)

	// LatestGraph returns the highest-version graph snapshot for the scope.
	// Returns nil without error when none exists.
	LatestGraph(ctx context.Context, scope Scope) (*graph.BeliefGraph, error)

	// AppendMetric appends a metric sample and returns its ID.
	AppendMetric(ctx context.Context, scope Scope, m *CognitiveMetric) (int64, error)

	// LatestMetric returns the most recent metric of the given type for
	// the scope. Returns nil without error when none exists.
	LatestMetric(ctx context.Context, scope Scope, metricType MetricType) (*CognitiveMetric, error)

	// Close closes the store and releases resources.
	Close() error
}
