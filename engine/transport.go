package engine

import "encoding/json"

// Document is the upstream snapshot payload for one namespace, as fetched by
// a Parser and consumed by buildNamespaceIndex. Field names are camelCase per
// the transport contract; the json tags below carry those camelCase names.
type Document struct {
	Namespace DocumentNamespace  `json:"namespace"`
	Flags     []DocumentFlag     `json:"flags"`
	Segments  []DocumentSegment  `json:"segments,omitempty"` // legacy shape only
	Variants  []DocumentVariant  `json:"variants,omitempty"` // legacy shape only
}

type DocumentNamespace struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

type DocumentFlag struct {
	Key      string           `json:"key"`
	Name     string           `json:"name,omitempty"`
	Enabled  bool             `json:"enabled"`
	Type     FlagType         `json:"type,omitempty"`
	Rules    []DocumentRule   `json:"rules,omitempty"`
	Rollouts []DocumentRollout `json:"rollouts,omitempty"`
}

// DocumentRule carries either the current embedded-segments shape
// (Segments/SegmentOperator) or the legacy single-reference shape (Segment).
// buildNamespaceIndex dispatches on which is populated.
type DocumentRule struct {
	Segments        []DocumentSegment      `json:"segments,omitempty"`
	SegmentOperator SegmentOperator        `json:"segmentOperator,omitempty"`
	Segment         string                 `json:"segment,omitempty"` // legacy: reference into Document.Segments
	Distributions   []DocumentDistribution `json:"distributions,omitempty"`
}

// DocumentDistribution carries either the current VariantKey field or the
// legacy Variant reference field (resolved against Document.Variants).
type DocumentDistribution struct {
	VariantKey        string  `json:"variantKey,omitempty"`
	Variant           string  `json:"variant,omitempty"` // legacy reference
	Rollout           float64 `json:"rollout"`
	VariantAttachment string  `json:"variantAttachment,omitempty"`
}

type DocumentVariant struct {
	Key        string `json:"key"`
	Attachment string `json:"attachment,omitempty"`
}

type DocumentRollout struct {
	Threshold *DocumentThreshold     `json:"threshold,omitempty"`
	Segment   *DocumentRolloutSegment `json:"segment,omitempty"`
}

type DocumentThreshold struct {
	Percentage float64 `json:"percentage"`
	Value      bool    `json:"value"`
}

type DocumentRolloutSegment struct {
	SegmentOperator SegmentOperator   `json:"segmentOperator,omitempty"`
	Value           bool              `json:"value"`
	Segments        []DocumentSegment `json:"segments,omitempty"`
}

type DocumentSegment struct {
	Key         string               `json:"key"`
	MatchType   SegmentMatchType     `json:"matchType"`
	Constraints []DocumentConstraint `json:"constraints,omitempty"`
}

type DocumentConstraint struct {
	Type     ConstraintComparisonType `json:"type"`
	Property string                   `json:"property"`
	Operator string                   `json:"operator"`
	Value    string                   `json:"value,omitempty"`
}

// decodeDocument parses a raw JSON snapshot body into a Document. A non-JSON
// body (including an empty one) is always a ParseError, never a panic.
func decodeDocument(body []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Document{}, &ParseError{Cause: err}
	}
	return doc, nil
}
