// Package assessment rates and categorizes personal goals.
//
// Categorization is a deterministic keyword scan over a configurable
// taxonomy. Rating applies a fixed Goal Attainment Scaling (GAS) baseline;
// the constants live in configuration so a richer estimator can replace
// them later without touching call sites.
package assessment

import "time"

// Category is a goal category in the fixed taxonomy.
type Category string

const (
	CategoryFinancial      Category = "financial"
	CategoryCareer         Category = "career"
	CategoryHealth         Category = "health"
	CategoryRelationships  Category = "relationships"
	CategorySpiritual      Category = "spiritual"
	CategoryCreative       Category = "creative"
	CategoryPersonalGrowth Category = "personal_growth"
	CategoryOther          Category = "other"
)

// GoalAssessment is the rated and categorized form of a goal.
//
// Assessments are created at intake and never deleted. AttemptCount and
// SuccessCount are the only fields mutated afterwards, by goal-tracking
// events.
type GoalAssessment struct {
	// ID is the unique identifier, assigned on save.
	ID int64 `json:"id"`

	// GoalText is the original goal statement.
	GoalText string `json:"goal_text"`

	// Category is the taxonomy category the goal was classified into.
	Category Category `json:"category"`

	// GASCurrent is the current Goal Attainment Scaling level, in [-2, 2].
	GASCurrent int `json:"gas_current"`

	// GASExpected is the expected GAS level, in [-2, 2].
	GASExpected int `json:"gas_expected"`

	// GASTarget is the stretch GAS level, in [-2, 2].
	GASTarget int `json:"gas_target"`

	// IdealRating is where the person wants to be, in [0, 100].
	IdealRating int `json:"ideal_rating"`

	// ActualRating is where the person currently is, in [0, 100].
	ActualRating int `json:"actual_rating"`

	// Gap is IdealRating - ActualRating.
	Gap int `json:"gap"`

	// AttemptCount is the number of tracked attempts at the goal.
	AttemptCount int `json:"attempt_count"`

	// SuccessCount is the number of tracked successful attempts.
	SuccessCount int `json:"success_count"`

	// Confidence is the person's confidence in reaching the goal, in [0, 1].
	Confidence float64 `json:"confidence"`

	// Motivation is the person's motivation for the goal, in [0, 1].
	Motivation float64 `json:"motivation"`

	// CreatedAt is when the assessment was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the counters were last updated.
	UpdatedAt time.Time `json:"updated_at"`
}
