package graph

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidEntry indicates a nil-equivalent or blank entry in an input list.
//
// Empty lists are valid and produce a trivial graph; blank strings inside a
// list are rejected before construction.
var ErrInvalidEntry = errors.New("graph: blank entry in input list")

// BuilderConfig contains the heuristic constants used during construction.
//
// The reference values model "every stated belief can interfere with every
// stated goal" in the absence of finer-grained linkage signal. They are
// configuration data so a richer estimator can replace them without touching
// call sites.
type BuilderConfig struct {
	// BlocksWeight is the weight of every limiting-belief -> goal edge.
	BlocksWeight float64

	// CausesWeight is the weight of every goal -> outcome edge.
	CausesWeight float64

	// ConflictScale multiplies |beliefs| x |goals| to produce the conflict
	// score before saturation at 1.0.
	ConflictScale float64

	// BeliefValence is the emotional valence assigned to limiting beliefs.
	BeliefValence float64

	// GoalValence is the emotional valence assigned to goals.
	GoalValence float64

	// OutcomeValence is the emotional valence assigned to outcomes.
	OutcomeValence float64
}

// DefaultBuilderConfig returns the reference constants.
func DefaultBuilderConfig() *BuilderConfig {
	return &BuilderConfig{
		BlocksWeight:   0.7,
		CausesWeight:   0.8,
		ConflictScale:  0.15,
		BeliefValence:  -0.6,
		GoalValence:    0.5,
		OutcomeValence: 0.7,
	}
}

// Builder constructs belief graphs from intake lists.
type Builder struct {
	config *BuilderConfig
}

// NewBuilder creates a Builder. A nil config uses the reference constants.
func NewBuilder(config *BuilderConfig) *Builder {
	if config == nil {
		config = DefaultBuilderConfig()
	}
	return &Builder{config: config}
}

// Build constructs a belief graph from goals, limiting beliefs, and desired
// outcomes.
//
// The construction is pure and deterministic:
//   - exactly one node per input string, tagged with its source type
//   - every limiting belief blocks every goal (fixed weight)
//   - every goal causes every outcome (fixed weight)
//   - conflict score = min(1, scale x |beliefs| x |goals|)
//
// Empty input lists are valid: empty beliefs or goals produce zero blocks
// edges, a conflict score of 0, and no tension nodes. Blank entries in any
// list return ErrInvalidEntry.
func (b *Builder) Build(goals, limitingBeliefs, desiredOutcomes []string) (*BeliefGraph, error) {
	if err := validateEntries(goals, limitingBeliefs, desiredOutcomes); err != nil {
		return nil, err
	}

	g := &BeliefGraph{
		TensionNodes: []string{},
		CoreBeliefs:  []string{},
	}

	goalIDs := make([]string, len(goals))
	for i, label := range goals {
		goalIDs[i] = fmt.Sprintf("goal_%d", i+1)
		g.Nodes = append(g.Nodes, Node{
			ID:               goalIDs[i],
			Label:            label,
			Type:             NodeGoal,
			EmotionalValence: b.config.GoalValence,
			Strength:         math.Abs(b.config.GoalValence),
		})
	}

	beliefIDs := make([]string, len(limitingBeliefs))
	for i, label := range limitingBeliefs {
		beliefIDs[i] = fmt.Sprintf("belief_%d", i+1)
		g.Nodes = append(g.Nodes, Node{
			ID:               beliefIDs[i],
			Label:            label,
			Type:             NodeLimitingBelief,
			EmotionalValence: b.config.BeliefValence,
			Strength:         math.Abs(b.config.BeliefValence),
		})
	}

	outcomeIDs := make([]string, len(desiredOutcomes))
	for i, label := range desiredOutcomes {
		outcomeIDs[i] = fmt.Sprintf("outcome_%d", i+1)
		g.Nodes = append(g.Nodes, Node{
			ID:               outcomeIDs[i],
			Label:            label,
			Type:             NodeOutcome,
			EmotionalValence: b.config.OutcomeValence,
			Strength:         math.Abs(b.config.OutcomeValence),
		})
	}

	degree := make(map[string]int, len(g.Nodes))

	// Every limiting belief blocks every goal.
	for _, beliefID := range beliefIDs {
		for _, goalID := range goalIDs {
			g.Edges = append(g.Edges, Edge{
				Source:       beliefID,
				Target:       goalID,
				Relationship: RelBlocks,
				Weight:       b.config.BlocksWeight,
			})
			degree[beliefID]++
			degree[goalID]++
		}
	}

	// Every goal causes every outcome.
	for _, goalID := range goalIDs {
		for _, outcomeID := range outcomeIDs {
			g.Edges = append(g.Edges, Edge{
				Source:       goalID,
				Target:       outcomeID,
				Relationship: RelCauses,
				Weight:       b.config.CausesWeight,
			})
			degree[goalID]++
			degree[outcomeID]++
		}
	}

	g.ConflictScore = math.Min(1.0, b.config.ConflictScale*float64(len(limitingBeliefs))*float64(len(goals)))

	// Centrality is degree over the maximum possible degree.
	maxDegree := float64(len(g.Nodes) - 1)
	for i := range g.Nodes {
		if maxDegree > 0 {
			g.Nodes[i].Centrality = float64(degree[g.Nodes[i].ID]) / maxDegree
		}
	}

	for _, beliefID := range beliefIDs {
		if degree[beliefID] > 0 {
			g.TensionNodes = append(g.TensionNodes, beliefID)
		}
	}
	for _, goalID := range goalIDs {
		if degree[goalID] > 0 {
			g.CoreBeliefs = append(g.CoreBeliefs, goalID)
		}
	}
	for _, outcomeID := range outcomeIDs {
		if degree[outcomeID] > 0 {
			g.CoreBeliefs = append(g.CoreBeliefs, outcomeID)
		}
	}

	return g, nil
}

func validateEntries(lists ...[]string) error {
	for _, list := range lists {
		for _, entry := range list {
			if strings.TrimSpace(entry) == "" {
				return ErrInvalidEntry
			}
		}
	}
	return nil
}
