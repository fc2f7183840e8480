package engine

import "time"

// EvaluationRequest is the public input to variant, boolean, and batch.
type EvaluationRequest struct {
	NamespaceKey string            `json:"namespaceKey"`
	FlagKey      string            `json:"flagKey"`
	EntityID     string            `json:"entityId"`
	Context      map[string]string `json:"context"`
}

// VariantEvaluationResponse is the result of a variant evaluation.
type VariantEvaluationResponse struct {
	Match                 bool             `json:"match"`
	SegmentKeys           []string         `json:"segmentKeys"`
	Reason                EvaluationReason `json:"reason"`
	FlagKey               string           `json:"flagKey"`
	VariantKey            string           `json:"variantKey,omitempty"`
	VariantAttachment     string           `json:"variantAttachment,omitempty"`
	RequestDurationMillis float64          `json:"requestDurationMillis"`
	Timestamp             time.Time        `json:"timestamp"`
}

// BooleanEvaluationResponse is the result of a boolean evaluation.
type BooleanEvaluationResponse struct {
	Enabled               bool             `json:"enabled"`
	FlagKey               string           `json:"flagKey"`
	Reason                EvaluationReason `json:"reason"`
	RequestDurationMillis float64          `json:"requestDurationMillis"`
	Timestamp             time.Time        `json:"timestamp"`
}

// ErrorEvaluationResponse is the in-line per-request error batch produces
// for a NotFound lookup instead of aborting the whole batch.
type ErrorEvaluationResponse struct {
	FlagKey               string                `json:"flagKey"`
	NamespaceKey          string                `json:"namespaceKey"`
	Reason                ErrorEvaluationReason `json:"reason"`
	RequestDurationMillis float64               `json:"requestDurationMillis"`
	Timestamp             time.Time             `json:"timestamp"`
}

// BatchEvaluationResponse wraps one of VariantEvaluationResponse,
// BooleanEvaluationResponse, or ErrorEvaluationResponse so callers can switch
// on which field is populated. Exactly one of Variant/Boolean/Error is set.
type BatchEvaluationResponse struct {
	Variant *VariantEvaluationResponse `json:"variantResponse,omitempty"`
	Boolean *BooleanEvaluationResponse `json:"booleanResponse,omitempty"`
	Error   *ErrorEvaluationResponse   `json:"errorResponse,omitempty"`
}
