package reflex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cogmem/cogmem-go/pkg/metricstore"
)

// Engine evaluates reflex trigger conditions against persisted metrics.
//
// Checks are pure reads: the engine holds no mutable state beyond its
// configuration, so concurrent checks for different users are independent
// and repeated checks for the same user are idempotent.
type Engine struct {
	config *Config
	store  metricstore.Store
}

// NewEngine creates a reflex engine over a metric store. A nil config uses
// the reference thresholds.
func NewEngine(store metricstore.Store, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{config: config, store: store}
}

// CheckTriggers evaluates the three trigger conditions for a scope.
//
// When the engine is disabled it returns an empty list without touching the
// store. Otherwise each condition is evaluated independently against the
// latest persisted record of its kind; zero, one, or many triggers may fire
// in a single call. A store failure on one condition does not block the
// others: partial results are returned alongside the joined errors.
func (e *Engine) CheckTriggers(ctx context.Context, scope metricstore.Scope) ([]TriggerEvent, error) {
	if !e.config.Enabled {
		return []TriggerEvent{}, nil
	}

	now := time.Now()
	events := []TriggerEvent{}
	var errs []error

	if ev, err := e.checkEmotionConflict(ctx, scope, now); err != nil {
		errs = append(errs, err)
	} else if ev != nil {
		events = append(events, *ev)
	}

	if failureEvents, err := e.checkRepeatedFailures(ctx, scope, now); err != nil {
		errs = append(errs, err)
	} else {
		events = append(events, failureEvents...)
	}

	if ev, err := e.checkBeliefConflict(ctx, scope, now); err != nil {
		errs = append(errs, err)
	} else if ev != nil {
		events = append(events, *ev)
	}

	return events, errors.Join(errs...)
}

// checkEmotionConflict fires when the latest emotion_conflict metric value
// reaches the configured threshold.
func (e *Engine) checkEmotionConflict(ctx context.Context, scope metricstore.Scope, now time.Time) (*TriggerEvent, error) {
	metric, err := e.store.LatestMetric(ctx, scope, metricstore.MetricEmotionConflict)
	if err != nil {
		return nil, fmt.Errorf("reflex: emotion conflict check: %w", err)
	}
	if metric == nil || metric.Value < e.config.EmotionConflictThreshold {
		return nil, nil
	}

	severity := SeverityMedium
	if metric.Value >= e.config.EmotionHighBand {
		severity = SeverityHigh
	}

	return &TriggerEvent{
		ID:        uuid.NewString(),
		Type:      TriggerEmotionConflict,
		Severity:  severity,
		Value:     metric.Value,
		Threshold: e.config.EmotionConflictThreshold,
		Context: map[string]interface{}{
			"metric_id":   metric.ID,
			"measured_at": metric.MeasuredAt,
		},
		Action:         actionEmotionConflict,
		PromptTemplate: promptEmotionConflict,
		FiredAt:        now,
	}, nil
}

// checkRepeatedFailures fires once per goal whose recent failure count
// (attempts minus successes within the rolling window) reaches the
// configured threshold.
func (e *Engine) checkRepeatedFailures(ctx context.Context, scope metricstore.Scope, now time.Time) ([]TriggerEvent, error) {
	since := now.Add(-e.config.FailureWindow)

	assessments, err := e.store.ListAssessments(ctx, scope, since)
	if err != nil {
		return nil, fmt.Errorf("reflex: repeated failure check: %w", err)
	}

	var events []TriggerEvent
	for _, a := range assessments {
		if a.AttemptCount < 1 {
			continue
		}

		failures := a.AttemptCount - a.SuccessCount
		if failures < e.config.FailureThreshold {
			continue
		}

		severity := SeverityMedium
		if failures >= e.config.FailureHighBand {
			severity = SeverityHigh
		}

		events = append(events, TriggerEvent{
			ID:        uuid.NewString(),
			Type:      TriggerRepeatedFailure,
			Severity:  severity,
			Value:     float64(failures),
			Threshold: float64(e.config.FailureThreshold),
			Context: map[string]interface{}{
				"goal_id":       a.ID,
				"goal_text":     a.GoalText,
				"attempt_count": a.AttemptCount,
				"success_count": a.SuccessCount,
			},
			Action:         actionRepeatedFailure,
			PromptTemplate: promptRepeatedFailure,
			FiredAt:        now,
		})
	}

	return events, nil
}

// checkBeliefConflict fires when the latest belief graph's conflict score
// reaches the configured threshold.
func (e *Engine) checkBeliefConflict(ctx context.Context, scope metricstore.Scope, now time.Time) (*TriggerEvent, error) {
	g, err := e.store.LatestGraph(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("reflex: belief conflict check: %w", err)
	}
	if g == nil || g.ConflictScore < e.config.BeliefConflictThreshold {
		return nil, nil
	}

	severity := SeverityMedium
	if g.ConflictScore >= e.config.BeliefHighBand {
		severity = SeverityHigh
	}

	return &TriggerEvent{
		ID:        uuid.NewString(),
		Type:      TriggerBeliefConflict,
		Severity:  severity,
		Value:     g.ConflictScore,
		Threshold: e.config.BeliefConflictThreshold,
		Context: map[string]interface{}{
			"graph_version": g.Version,
			"tension_nodes": g.TensionNodes,
		},
		Action:         actionBeliefConflict,
		PromptTemplate: promptBeliefConflict,
		FiredAt:        now,
	}, nil
}

// LogTrigger appends a trigger_<type> audit metric for a fired event.
//
// Persistence failure here must not invalidate an already-returned trigger
// list; callers are free to ignore the error (log-and-continue).
func (e *Engine) LogTrigger(ctx context.Context, scope metricstore.Scope, event *TriggerEvent) error {
	threshold := event.Threshold

	metric := &metricstore.CognitiveMetric{
		Type:  metricstore.MetricType(metricstore.TriggerMetricPrefix + string(event.Type)),
		Value: event.Value,
		Context: map[string]interface{}{
			"trigger_id": event.ID,
			"severity":   string(event.Severity),
			"action":     event.Action,
		},
		Threshold:         &threshold,
		ThresholdExceeded: true,
		MeasuredAt:        event.FiredAt,
	}

	if _, err := e.store.AppendMetric(ctx, scope, metric); err != nil {
		return fmt.Errorf("reflex: log trigger: %w", err)
	}

	return nil
}
