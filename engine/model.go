package engine

// Flag is the indexed, store-resident form of a flag: just enough to route
// an evaluation request, never the transport shape.
type Flag struct {
	Key     string
	Enabled bool
	Type    FlagType
}

// EvaluationConstraint is the indexed form of a single constraint inside an
// EvaluationSegment.
type EvaluationConstraint struct {
	Type     ConstraintComparisonType
	Property string
	Operator string
	Value    string
}

// EvaluationSegment is the indexed form of a segment as embedded in a rule
// or a rollout's segment gate.
type EvaluationSegment struct {
	SegmentKey  string
	MatchType   SegmentMatchType
	Constraints []EvaluationConstraint
}

// EvaluationRule is one ranked entry of a flag's rule list. Segments is keyed
// by segment key (map iteration order is what response.segmentKeys reports,
// per §4.5 step 7 of the evaluation algorithm).
type EvaluationRule struct {
	ID              string
	FlagKey         string
	Rank            int
	Segments        map[string]EvaluationSegment
	SegmentOperator SegmentOperator
}

// EvaluationDistribution is one entry of a rule's variant allocation table.
type EvaluationDistribution struct {
	RuleID            string
	VariantKey        string
	VariantAttachment string
	Rollout           float64
}

// EvaluationRollout is one ranked entry of a boolean flag's rollout list.
// Exactly one of Threshold/Segment is non-nil unless RolloutType is Unknown.
type EvaluationRollout struct {
	Rank        int
	RolloutType RolloutType
	Threshold   *EvaluationThreshold
	Segment     *EvaluationRolloutSegment
}

type EvaluationThreshold struct {
	Percentage float64
	Value      bool
}

type EvaluationRolloutSegment struct {
	Value           bool
	SegmentOperator SegmentOperator
	Segments        map[string]EvaluationSegment
}

// namespaceIndex holds everything the store knows about a single namespace.
type namespaceIndex struct {
	flags             map[string]Flag
	evalRules         map[string][]EvaluationRule
	evalDistributions map[string][]EvaluationDistribution
	evalRollouts      map[string][]EvaluationRollout
}

func newNamespaceIndex() *namespaceIndex {
	return &namespaceIndex{
		flags:             make(map[string]Flag),
		evalRules:         make(map[string][]EvaluationRule),
		evalDistributions: make(map[string][]EvaluationDistribution),
		evalRollouts:      make(map[string][]EvaluationRollout),
	}
}
