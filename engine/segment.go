package engine

// segmentMatches evaluates one segment's constraint list against a context
// under the segment's own match-type (ALL/ANY). A constraint whose property
// is absent from context is skipped — it contributes to neither the matched
// nor the short-circuit count.
func segmentMatches(seg EvaluationSegment, context map[string]string) (bool, error) {
	matched := 0
	total := len(seg.Constraints)

	for _, c := range seg.Constraints {
		contextValue, ok := context[c.Property]
		if !ok {
			continue
		}

		switch c.Type {
		case ComparisonTypeString, ComparisonTypeNumber, ComparisonTypeBoolean, ComparisonTypeDateTime:
		default:
			// an unknown comparison kind makes the whole segment non-matching
			return false, nil
		}

		ok, err := matchConstraint(c, contextValue)
		if err != nil {
			return false, err
		}

		if ok {
			matched++
			if seg.MatchType == SegmentMatchTypeAny {
				return true, nil
			}
			continue
		}

		if seg.MatchType == SegmentMatchTypeAll {
			return false, nil
		}
	}

	switch seg.MatchType {
	case SegmentMatchTypeAll:
		return matched == total, nil
	case SegmentMatchTypeAny:
		return total == 0 || matched > 0, nil
	default:
		return false, nil
	}
}

// matchSegments walks a rule's (or rollout segment gate's) segment map,
// matching each against context, and combines the per-segment results under
// operator. It returns whether the combination matched, the count of
// segments that individually matched, and the matched segment keys in map
// iteration order — the order response.segmentKeys reports per the variant
// evaluator's algorithm.
func matchSegments(segments map[string]EvaluationSegment, operator SegmentOperator, context map[string]string) (bool, []string, error) {
	matchedKeys := make([]string, 0, len(segments))
	matchedCount := 0

	for key, seg := range segments {
		ok, err := segmentMatches(seg, context)
		if err != nil {
			return false, nil, err
		}
		if ok {
			matchedCount++
			matchedKeys = append(matchedKeys, key)
		}
	}

	total := len(segments)

	switch operator {
	case SegmentOperatorAnd:
		if matchedCount != total {
			return false, nil, nil
		}
		return true, matchedKeys, nil
	default: // SegmentOperatorOr and unset both use OR semantics
		if matchedCount < 1 {
			return false, nil, nil
		}
		return true, matchedKeys, nil
	}
}
