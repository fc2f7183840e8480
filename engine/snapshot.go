package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Snapshot is the indexed, immutable-after-build form of every namespace a
// Parser was asked to serve. Once build returns a Snapshot, nothing mutates
// it; a refresh produces an entirely new Snapshot and the engine façade
// swaps the reference under a write lock.
type Snapshot struct {
	namespaces map[string]*namespaceIndex
}

// buildSnapshot invokes parser.Parse for every namespace key and assembles
// the indexed form. Any parser failure, decode failure, or (in legacy
// documents) unresolved segment/variant reference aborts the whole build —
// a partial Snapshot is never returned.
func buildSnapshot(ctx context.Context, parser Parser, namespaceKeys []string) (*Snapshot, error) {
	snap := &Snapshot{namespaces: make(map[string]*namespaceIndex, len(namespaceKeys))}

	for _, ns := range namespaceKeys {
		doc, err := parser.Parse(ctx, ns)
		if err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("failed to parse document for namespace %s", ns), Cause: err}
		}

		idx, err := buildNamespaceIndex(doc)
		if err != nil {
			return nil, err
		}

		snap.namespaces[ns] = idx
	}

	return snap, nil
}

func buildNamespaceIndex(doc Document) (*namespaceIndex, error) {
	idx := newNamespaceIndex()

	legacySegments := make(map[string]DocumentSegment, len(doc.Segments))
	for _, s := range doc.Segments {
		legacySegments[s.Key] = s
	}
	legacyVariants := make(map[string]DocumentVariant, len(doc.Variants))
	for _, v := range doc.Variants {
		legacyVariants[v.Key] = v
	}

	for _, flag := range doc.Flags {
		flagType := flag.Type
		if flagType == FlagTypeUnset {
			flagType = FlagTypeVariant
		}
		idx.flags[flag.Key] = Flag{Key: flag.Key, Enabled: flag.Enabled, Type: flagType}

		rules := make([]EvaluationRule, 0, len(flag.Rules))
		for i, rule := range flag.Rules {
			ruleID := uuid.NewString()
			rank := i + 1

			var segments map[string]EvaluationSegment
			segmentOperator := rule.SegmentOperator

			if rule.Segment != "" {
				// Legacy shape: a single segment referenced by key.
				docSeg, ok := legacySegments[rule.Segment]
				if !ok {
					return nil, &IntegrityError{Message: fmt.Sprintf("unknown segment reference %q in flag %s", rule.Segment, flag.Key)}
				}
				segments = map[string]EvaluationSegment{docSeg.Key: toEvaluationSegment(docSeg)}
				if segmentOperator == SegmentOperatorUnset {
					segmentOperator = SegmentOperatorOr
				}
			} else {
				segments = make(map[string]EvaluationSegment, len(rule.Segments))
				for _, s := range rule.Segments {
					segments[s.Key] = toEvaluationSegment(s)
				}
			}

			evalRule := EvaluationRule{
				ID:              ruleID,
				FlagKey:         flag.Key,
				Rank:            rank,
				Segments:        segments,
				SegmentOperator: segmentOperator,
			}
			rules = append(rules, evalRule)

			distributions := make([]EvaluationDistribution, 0, len(rule.Distributions))
			for _, d := range rule.Distributions {
				variantKey := d.VariantKey
				variantAttachment := d.VariantAttachment

				if d.Variant != "" {
					// Legacy shape: variant referenced by key against the
					// top-level variants list.
					docVariant, ok := legacyVariants[d.Variant]
					if !ok {
						return nil, &IntegrityError{Message: fmt.Sprintf("unknown variant reference %q in flag %s", d.Variant, flag.Key)}
					}
					variantKey = docVariant.Key
					variantAttachment = docVariant.Attachment
				}

				distributions = append(distributions, EvaluationDistribution{
					RuleID:            ruleID,
					VariantKey:        variantKey,
					VariantAttachment: variantAttachment,
					Rollout:           d.Rollout,
				})
			}
			idx.evalDistributions[ruleID] = distributions
		}
		idx.evalRules[flag.Key] = rules

		rollouts := make([]EvaluationRollout, 0, len(flag.Rollouts))
		for j, r := range flag.Rollouts {
			rank := j + 1

			switch {
			case r.Threshold != nil:
				rollouts = append(rollouts, EvaluationRollout{
					Rank:        rank,
					RolloutType: RolloutTypeThreshold,
					Threshold:   &EvaluationThreshold{Percentage: r.Threshold.Percentage, Value: r.Threshold.Value},
				})
			case r.Segment != nil:
				segOperator := r.Segment.SegmentOperator
				if segOperator == SegmentOperatorUnset {
					segOperator = SegmentOperatorOr
				}
				segments := make(map[string]EvaluationSegment, len(r.Segment.Segments))
				for _, s := range r.Segment.Segments {
					segments[s.Key] = toEvaluationSegment(s)
				}
				rollouts = append(rollouts, EvaluationRollout{
					Rank:        rank,
					RolloutType: RolloutTypeSegment,
					Segment: &EvaluationRolloutSegment{
						Value:           r.Segment.Value,
						SegmentOperator: segOperator,
						Segments:        segments,
					},
				})
			default:
				rollouts = append(rollouts, EvaluationRollout{Rank: rank, RolloutType: RolloutTypeUnknown})
			}
		}
		idx.evalRollouts[flag.Key] = rollouts
	}

	return idx, nil
}

func toEvaluationSegment(s DocumentSegment) EvaluationSegment {
	constraints := make([]EvaluationConstraint, 0, len(s.Constraints))
	for _, c := range s.Constraints {
		constraints = append(constraints, EvaluationConstraint{
			Type:     c.Type,
			Property: c.Property,
			Operator: c.Operator,
			Value:    c.Value,
		})
	}
	return EvaluationSegment{SegmentKey: s.Key, MatchType: s.MatchType, Constraints: constraints}
}

// getFlag returns a defensive copy of the flag, or false if absent.
func (s *Snapshot) getFlag(namespaceKey, flagKey string) (Flag, bool) {
	ns, ok := s.namespaces[namespaceKey]
	if !ok {
		return Flag{}, false
	}
	f, ok := ns.flags[flagKey]
	return f, ok
}

// getEvaluationRules returns a defensive copy of the flag's ordered rule
// list, or false if the namespace or flag is absent.
func (s *Snapshot) getEvaluationRules(namespaceKey, flagKey string) ([]EvaluationRule, bool) {
	ns, ok := s.namespaces[namespaceKey]
	if !ok {
		return nil, false
	}
	rules, ok := ns.evalRules[flagKey]
	if !ok {
		return nil, false
	}
	out := make([]EvaluationRule, len(rules))
	copy(out, rules)
	return out, true
}

// getEvaluationDistributions returns a defensive copy of a rule's ordered
// distribution list, or false if the namespace or rule-id is absent.
func (s *Snapshot) getEvaluationDistributions(namespaceKey, ruleID string) ([]EvaluationDistribution, bool) {
	ns, ok := s.namespaces[namespaceKey]
	if !ok {
		return nil, false
	}
	dists, ok := ns.evalDistributions[ruleID]
	if !ok {
		return nil, false
	}
	out := make([]EvaluationDistribution, len(dists))
	copy(out, dists)
	return out, true
}

// getEvaluationRollouts returns a defensive copy of the flag's ordered
// rollout list, or false if the namespace or flag is absent.
func (s *Snapshot) getEvaluationRollouts(namespaceKey, flagKey string) ([]EvaluationRollout, bool) {
	ns, ok := s.namespaces[namespaceKey]
	if !ok {
		return nil, false
	}
	rollouts, ok := ns.evalRollouts[flagKey]
	if !ok {
		return nil, false
	}
	out := make([]EvaluationRollout, len(rollouts))
	copy(out, rollouts)
	return out, true
}
