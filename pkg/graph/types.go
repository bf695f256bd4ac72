// Package graph builds cognitive-affective belief graphs.
//
// A belief graph connects a person's stated goals, limiting beliefs, and
// desired outcomes, and quantifies the internal conflict implied by that
// structure. Building is pure and deterministic: the same inputs always
// produce the same graph.
package graph

// NodeType identifies the source list a node came from.
type NodeType string

const (
	// NodeGoal marks a node created from a stated goal.
	NodeGoal NodeType = "goal"

	// NodeLimitingBelief marks a node created from a limiting belief.
	NodeLimitingBelief NodeType = "limiting_belief"

	// NodeOutcome marks a node created from a desired outcome.
	NodeOutcome NodeType = "outcome"
)

// Relationship identifies how two nodes relate.
type Relationship string

const (
	// RelBlocks links a limiting belief to a goal it can interfere with.
	RelBlocks Relationship = "blocks"

	// RelCauses links a goal to an outcome it works toward.
	RelCauses Relationship = "causes"
)

// Node is a single belief-graph node.
type Node struct {
	// ID is the node identifier, unique within one graph.
	ID string `json:"id"`

	// Label is the original input text.
	Label string `json:"label"`

	// Type is the source list the node came from.
	Type NodeType `json:"type"`

	// EmotionalValence is the node's emotional charge in [-1, 1].
	// Limiting beliefs carry negative valence, goals and outcomes positive.
	EmotionalValence float64 `json:"emotional_valence"`

	// Centrality is the node's degree normalized by the maximum possible
	// degree (n-1), in [0, 1].
	Centrality float64 `json:"centrality"`

	// Strength is the node's salience, in [0, 1].
	Strength float64 `json:"strength"`
}

// Edge is a directed belief-graph edge.
type Edge struct {
	// Source is the ID of the source node.
	Source string `json:"source"`

	// Target is the ID of the target node.
	Target string `json:"target"`

	// Relationship is the edge semantics (blocks or causes).
	Relationship Relationship `json:"relationship"`

	// Weight is the fixed edge weight for the relationship type.
	Weight float64 `json:"weight"`
}

// BeliefGraph is a conflict-scored graph over goals, limiting beliefs,
// and desired outcomes.
//
// Graphs are rebuilt wholesale on new intake data, never patched
// incrementally. Version is assigned by the metric store on save and
// increases monotonically per scope.
type BeliefGraph struct {
	// Version is the monotonically increasing rebuild counter.
	// Zero until the graph has been persisted.
	Version int64 `json:"graph_version"`

	// Nodes is the full node set, one node per input string.
	Nodes []Node `json:"nodes"`

	// Edges is the full edge set.
	Edges []Edge `json:"edges"`

	// ConflictScore quantifies internal conflict in [0, 1]. It saturates
	// at 1 and grows monotonically with the product of belief and goal
	// counts.
	ConflictScore float64 `json:"conflict_score"`

	// TensionNodes lists IDs of limiting-belief nodes with at least one edge.
	TensionNodes []string `json:"tension_nodes"`

	// CoreBeliefs lists IDs of goal and outcome nodes participating in at
	// least one edge.
	CoreBeliefs []string `json:"core_beliefs"`
}
