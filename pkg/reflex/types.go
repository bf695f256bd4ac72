// Package reflex monitors persisted cognitive metrics and fires
// threshold-crossing intervention recommendations.
//
// The engine is stateless between calls: every check re-reads the latest
// persisted data, and unchanged data re-fires identical triggers. There is
// deliberately no cooldown or acknowledgement state at this layer.
package reflex

import "time"

// TriggerType identifies which monitored condition fired.
type TriggerType string

const (
	// TriggerEmotionConflict fires when the latest emotion-conflict metric
	// crosses its threshold.
	TriggerEmotionConflict TriggerType = "emotion_conflict"

	// TriggerRepeatedFailure fires per goal when recent failures cross the
	// failure threshold.
	TriggerRepeatedFailure TriggerType = "repeated_failure"

	// TriggerBeliefConflict fires when the latest belief graph's conflict
	// score crosses its threshold.
	TriggerBeliefConflict TriggerType = "belief_conflict"
)

// Severity grades how urgent a trigger is.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// TriggerEvent is an intervention recommendation derived from persisted
// metrics. Events are not persisted by the engine itself; LogTrigger appends
// an audit metric on request.
type TriggerEvent struct {
	// ID is a unique identifier for this firing.
	ID string `json:"id"`

	// Type is the condition that fired.
	Type TriggerType `json:"type"`

	// Severity grades the firing.
	Severity Severity `json:"severity"`

	// Value is the metric value that crossed the threshold.
	Value float64 `json:"value"`

	// Threshold is the threshold that was crossed.
	Threshold float64 `json:"threshold"`

	// Context carries a snapshot of the data behind the firing
	// (goal ID and counts for repeated failures, graph version for
	// belief conflicts, and so on).
	Context map[string]interface{} `json:"context,omitempty"`

	// Action is the fixed recommended intervention for the trigger type.
	Action string `json:"action"`

	// PromptTemplate is the fixed prompt template for the trigger type.
	PromptTemplate string `json:"prompt_template"`

	// FiredAt is when the engine evaluated the condition.
	FiredAt time.Time `json:"fired_at"`
}

// Config contains the reflex engine's thresholds.
//
// Thresholds are injected per engine instance, never process-wide globals,
// so different agents can run with different sensitivities.
type Config struct {
	// Enabled turns the engine on. A disabled engine returns no triggers
	// regardless of stored data.
	Enabled bool

	// EmotionConflictThreshold is the minimum emotion-conflict value that
	// fires. Reference default 0.7.
	EmotionConflictThreshold float64

	// EmotionHighBand is the value at or above which an emotion-conflict
	// firing is graded high. Reference default 0.9.
	EmotionHighBand float64

	// FailureThreshold is the minimum failure count (attempts minus
	// successes) within the window that fires. Reference default 2.
	FailureThreshold int

	// FailureHighBand is the failure count at or above which a
	// repeated-failure firing is graded high. Reference default 5.
	FailureHighBand int

	// FailureWindow is the rolling window for counting recent attempts.
	// Reference default 7 days.
	FailureWindow time.Duration

	// BeliefConflictThreshold is the minimum belief-graph conflict score
	// that fires. Reference default 0.8.
	BeliefConflictThreshold float64

	// BeliefHighBand is the conflict score at or above which a
	// belief-conflict firing is graded high. Reference default 0.95.
	BeliefHighBand float64
}

// DefaultConfig returns the reference thresholds with the engine enabled.
func DefaultConfig() *Config {
	return &Config{
		Enabled:                  true,
		EmotionConflictThreshold: 0.7,
		EmotionHighBand:          0.9,
		FailureThreshold:         2,
		FailureHighBand:          5,
		FailureWindow:            7 * 24 * time.Hour,
		BeliefConflictThreshold:  0.8,
		BeliefHighBand:           0.95,
	}
}

// Fixed actions and prompt templates per trigger type. These are contract
// strings consumed by the surrounding agent layer, not free text.
const (
	actionEmotionConflict = "open_emotion_checkin"
	promptEmotionConflict = "The user's recent interactions show signs of emotional conflict. " +
		"Gently acknowledge the tension you are sensing and invite them to explore what feels unresolved."

	actionRepeatedFailure = "suggest_goal_review"
	promptRepeatedFailure = "The user has repeatedly attempted a goal without success. " +
		"Offer to break the goal into smaller steps and revisit what is getting in the way."

	actionBeliefConflict = "open_belief_reframe"
	promptBeliefConflict = "The user's stated beliefs are in strong tension with their goals. " +
		"Surface one limiting belief and invite the user to examine the evidence for and against it."
)
