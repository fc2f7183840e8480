// Package engine implements the client-side feature-flag evaluation core: a
// snapshot store built from a parsed Document, and the variant/boolean
// evaluators that walk it under a readers-writer lock.
package engine

// FlagType distinguishes the two evaluation algorithms a flag can be routed
// through. The zero value is unset; an absent type decodes to the zero value
// and the snapshot builder indexes such a flag as Variant.
type FlagType string

const (
	FlagTypeUnset   FlagType = ""
	FlagTypeVariant FlagType = "VARIANT_FLAG_TYPE"
	FlagTypeBoolean FlagType = "BOOLEAN_FLAG_TYPE"
)

// SegmentOperator combines the per-segment match results within a rule or a
// rollout segment gate.
type SegmentOperator string

const (
	SegmentOperatorUnset SegmentOperator = ""
	SegmentOperatorOr    SegmentOperator = "OR_SEGMENT_OPERATOR"
	SegmentOperatorAnd   SegmentOperator = "AND_SEGMENT_OPERATOR"
)

// SegmentMatchType selects how a single segment's own constraint list is
// combined.
type SegmentMatchType string

const (
	SegmentMatchTypeAll SegmentMatchType = "ALL_SEGMENT_MATCH_TYPE"
	SegmentMatchTypeAny SegmentMatchType = "ANY_SEGMENT_MATCH_TYPE"
)

// ConstraintComparisonType names the value kind a constraint compares.
type ConstraintComparisonType string

const (
	ComparisonTypeUnknown  ConstraintComparisonType = "UNKNOWN_CONSTRAINT_COMPARISON_TYPE"
	ComparisonTypeString   ConstraintComparisonType = "STRING_CONSTRAINT_COMPARISON_TYPE"
	ComparisonTypeNumber   ConstraintComparisonType = "NUMBER_CONSTRAINT_COMPARISON_TYPE"
	ComparisonTypeBoolean  ConstraintComparisonType = "BOOLEAN_CONSTRAINT_COMPARISON_TYPE"
	ComparisonTypeDateTime ConstraintComparisonType = "DATETIME_CONSTRAINT_COMPARISON_TYPE"
)

// RolloutType tells the boolean evaluator which branch of a Rollout is live.
type RolloutType string

const (
	RolloutTypeUnknown   RolloutType = "UNKNOWN_ROLLOUT_TYPE"
	RolloutTypeSegment   RolloutType = "SEGMENT_ROLLOUT_TYPE"
	RolloutTypeThreshold RolloutType = "THRESHOLD_ROLLOUT_TYPE"
)

// EvaluationReason explains why variant/boolean evaluation produced its
// result.
type EvaluationReason string

const (
	EvaluationReasonUnknown      EvaluationReason = "UNKNOWN_EVALUATION_REASON"
	EvaluationReasonFlagDisabled EvaluationReason = "FLAG_DISABLED_EVALUATION_REASON"
	EvaluationReasonMatch        EvaluationReason = "MATCH_EVALUATION_REASON"
	EvaluationReasonDefault      EvaluationReason = "DEFAULT_EVALUATION_REASON"
)

// ErrorEvaluationReason classifies an in-batch per-request error response.
type ErrorEvaluationReason string

const (
	ErrorEvaluationReasonUnknown  ErrorEvaluationReason = "UNKNOWN_ERROR_EVALUATION_REASON"
	ErrorEvaluationReasonNotFound ErrorEvaluationReason = "NOT_FOUND_ERROR_EVALUATION_REASON"
)

// defaultPercentMultiplier converts a rollout percentage in [0,100] into the
// [0,1000) bucket space the CRC32 hash is taken over.
const defaultPercentMultiplier = 1000 / 100
