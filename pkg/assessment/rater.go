package assessment

import (
	"strings"
	"time"
)

// RaterConfig contains the baseline rating constants.
//
// The reference values encode the intake heuristic: a goal starts at the
// bottom of the GAS scale with a large ideal/actual gap. They are
// configuration data so a richer estimator can replace them without touching
// call sites.
type RaterConfig struct {
	// GASCurrent is the baseline current GAS level.
	GASCurrent int

	// GASExpected is the baseline expected GAS level.
	GASExpected int

	// GASTarget is the baseline stretch GAS level.
	GASTarget int

	// IdealRating is the baseline ideal rating.
	IdealRating int

	// ActualRatingDefault is the baseline actual rating.
	ActualRatingDefault int

	// Confidence is the baseline confidence score.
	Confidence float64

	// Motivation is the baseline motivation score.
	Motivation float64
}

// DefaultRaterConfig returns the reference baseline constants.
func DefaultRaterConfig() *RaterConfig {
	return &RaterConfig{
		GASCurrent:          -2,
		GASExpected:         0,
		GASTarget:           2,
		IdealRating:         100,
		ActualRatingDefault: 30,
		Confidence:          0.5,
		Motivation:          0.5,
	}
}

// Rater categorizes and rates goals.
type Rater struct {
	config   *RaterConfig
	taxonomy []TaxonomyEntry
}

// NewRater creates a Rater. Nil arguments use the reference configuration
// and taxonomy.
func NewRater(config *RaterConfig, taxonomy []TaxonomyEntry) *Rater {
	if config == nil {
		config = DefaultRaterConfig()
	}
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &Rater{config: config, taxonomy: taxonomy}
}

// Categorize classifies a goal into the fixed taxonomy.
//
// Classification is a case-insensitive keyword scan in taxonomy order; the
// first category with a matching keyword wins. Goals matching no keyword
// fall back to CategoryOther. The same input always yields the same category.
func (r *Rater) Categorize(goalText string) Category {
	lowered := strings.ToLower(goalText)
	for _, entry := range r.taxonomy {
		for _, keyword := range entry.Keywords {
			if strings.Contains(lowered, keyword) {
				return entry.Category
			}
		}
	}
	return CategoryOther
}

// Rate produces a baseline assessment for a goal at intake.
//
// The GAS levels, ratings, and scores come from the rater configuration;
// Gap is derived as IdealRating - ActualRating. Counters start at zero.
func (r *Rater) Rate(goalText string) *GoalAssessment {
	now := time.Now()
	return &GoalAssessment{
		GoalText:     goalText,
		Category:     r.Categorize(goalText),
		GASCurrent:   r.config.GASCurrent,
		GASExpected:  r.config.GASExpected,
		GASTarget:    r.config.GASTarget,
		IdealRating:  r.config.IdealRating,
		ActualRating: r.config.ActualRatingDefault,
		Gap:          r.config.IdealRating - r.config.ActualRatingDefault,
		Confidence:   r.config.Confidence,
		Motivation:   r.config.Motivation,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
