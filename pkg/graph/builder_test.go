package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogmem/cogmem-go/pkg/graph"
)

func TestBuilder_Build(t *testing.T) {
	builder := graph.NewBuilder(nil)

	g, err := builder.Build(
		[]string{"start a business", "run a marathon"},
		[]string{"I always give up"},
		[]string{"financial freedom"},
	)
	require.NoError(t, err)
	require.NotNil(t, g)

	// One node per input string.
	assert.Len(t, g.Nodes, 4)

	// One blocks edge per (belief, goal) pair, one causes edge per
	// (goal, outcome) pair.
	var blocks, causes int
	for _, edge := range g.Edges {
		switch edge.Relationship {
		case graph.RelBlocks:
			blocks++
			assert.Equal(t, 0.7, edge.Weight)
		case graph.RelCauses:
			causes++
			assert.Equal(t, 0.8, edge.Weight)
		}
	}
	assert.Equal(t, 2, blocks)
	assert.Equal(t, 2, causes)

	// conflict = min(1, 0.15 * |beliefs| * |goals|)
	assert.InDelta(t, 0.3, g.ConflictScore, 1e-9)
}

func TestBuilder_Build_Deterministic(t *testing.T) {
	builder := graph.NewBuilder(nil)

	goals := []string{"get promoted"}
	beliefs := []string{"I'm not good enough", "success requires luck"}
	outcomes := []string{"recognition"}

	first, err := builder.Build(goals, beliefs, outcomes)
	require.NoError(t, err)

	second, err := builder.Build(goals, beliefs, outcomes)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuilder_Build_ConflictSaturates(t *testing.T) {
	builder := graph.NewBuilder(nil)

	goals := make([]string, 4)
	beliefs := make([]string, 4)
	for i := range goals {
		goals[i] = "goal"
		beliefs[i] = "belief"
	}

	// 0.15 * 4 * 4 = 2.4, capped at 1.0.
	g, err := builder.Build(goals, beliefs, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.ConflictScore)
}

func TestBuilder_Build_EmptyLists(t *testing.T) {
	builder := graph.NewBuilder(nil)

	g, err := builder.Build(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	assert.Equal(t, 0.0, g.ConflictScore)
	assert.Empty(t, g.TensionNodes)
	assert.Empty(t, g.CoreBeliefs)
}

func TestBuilder_Build_NoBeliefs(t *testing.T) {
	builder := graph.NewBuilder(nil)

	g, err := builder.Build([]string{"learn piano"}, nil, []string{"play at a wedding"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, g.ConflictScore)
	assert.Empty(t, g.TensionNodes)

	// The goal and outcome are connected by a causes edge, so both count
	// as core beliefs.
	assert.ElementsMatch(t, []string{"goal_1", "outcome_1"}, g.CoreBeliefs)
}

func TestBuilder_Build_BlankEntry(t *testing.T) {
	builder := graph.NewBuilder(nil)

	_, err := builder.Build([]string{"valid goal", "  "}, nil, nil)
	assert.ErrorIs(t, err, graph.ErrInvalidEntry)

	_, err = builder.Build(nil, []string{""}, nil)
	assert.ErrorIs(t, err, graph.ErrInvalidEntry)
}

func TestBuilder_Build_TensionAndCoreNodes(t *testing.T) {
	builder := graph.NewBuilder(nil)

	g, err := builder.Build(
		[]string{"change careers"},
		[]string{"I'm too old", "the market is too competitive"},
		nil,
	)
	require.NoError(t, err)

	// Both beliefs block the goal, so both are tension nodes.
	assert.ElementsMatch(t, []string{"belief_1", "belief_2"}, g.TensionNodes)
	assert.ElementsMatch(t, []string{"goal_1"}, g.CoreBeliefs)
}

func TestBuilder_Build_Centrality(t *testing.T) {
	builder := graph.NewBuilder(nil)

	g, err := builder.Build(
		[]string{"goal"},
		[]string{"belief one", "belief two"},
		nil,
	)
	require.NoError(t, err)

	byID := make(map[string]graph.Node)
	for _, node := range g.Nodes {
		byID[node.ID] = node
	}

	// The goal connects to both beliefs: degree 2 of max 2.
	assert.InDelta(t, 1.0, byID["goal_1"].Centrality, 1e-9)
	assert.InDelta(t, 0.5, byID["belief_1"].Centrality, 1e-9)
}

func TestBuilder_Build_NodeValences(t *testing.T) {
	builder := graph.NewBuilder(nil)

	g, err := builder.Build([]string{"goal"}, []string{"belief"}, []string{"outcome"})
	require.NoError(t, err)

	byID := make(map[string]graph.Node)
	for _, node := range g.Nodes {
		byID[node.ID] = node
	}

	assert.Equal(t, graph.NodeGoal, byID["goal_1"].Type)
	assert.Equal(t, 0.5, byID["goal_1"].EmotionalValence)
	assert.Equal(t, graph.NodeLimitingBelief, byID["belief_1"].Type)
	assert.Equal(t, -0.6, byID["belief_1"].EmotionalValence)
	assert.Equal(t, 0.6, byID["belief_1"].Strength)
	assert.Equal(t, graph.NodeOutcome, byID["outcome_1"].Type)
	assert.Equal(t, 0.7, byID["outcome_1"].EmotionalValence)
}

func TestBuilder_CustomConfig(t *testing.T) {
	builder := graph.NewBuilder(&graph.BuilderConfig{
		BlocksWeight:   0.5,
		CausesWeight:   0.9,
		ConflictScale:  0.25,
		BeliefValence:  -0.4,
		GoalValence:    0.3,
		OutcomeValence: 0.8,
	})

	g, err := builder.Build([]string{"goal"}, []string{"belief"}, nil)
	require.NoError(t, err)

	require.Len(t, g.Edges, 1)
	assert.Equal(t, 0.5, g.Edges[0].Weight)
	assert.InDelta(t, 0.25, g.ConflictScore, 1e-9)
}
