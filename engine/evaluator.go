package engine

import (
	"fmt"
	"time"
)

// evaluateVariant implements the variant evaluator's 12-step algorithm
// against a VARIANT-typed flag already looked up in the snapshot.
func evaluateVariant(snap *Snapshot, namespaceKey string, flag Flag, req EvaluationRequest) (VariantEvaluationResponse, error) {
	start := time.Now()

	resp := VariantEvaluationResponse{
		Match:   false,
		Reason:  EvaluationReasonUnknown,
		FlagKey: flag.Key,
	}

	stamp := func() {
		resp.RequestDurationMillis = float64(time.Since(start).Microseconds()) / 1000.0
		resp.Timestamp = time.Now()
	}

	if !flag.Enabled {
		resp.Reason = EvaluationReasonFlagDisabled
		stamp()
		return resp, nil
	}

	rules, ok := snap.getEvaluationRules(namespaceKey, flag.Key)
	if !ok {
		return VariantEvaluationResponse{}, &LookupGapError{Message: fmt.Sprintf("error getting evaluation rules for %s/%s", namespaceKey, flag.Key)}
	}

	lastRank := 0
	for _, rule := range rules {
		if rule.Rank < lastRank {
			return VariantEvaluationResponse{}, &IntegrityError{Message: fmt.Sprintf("rule rank: %d detected out of order", rule.Rank)}
		}
		lastRank = rule.Rank

		matched, segmentKeys, err := matchSegments(rule.Segments, rule.SegmentOperator, req.Context)
		if err != nil {
			return VariantEvaluationResponse{}, err
		}
		if !matched {
			continue
		}

		resp.SegmentKeys = segmentKeys

		distributions, ok := snap.getEvaluationDistributions(namespaceKey, rule.ID)
		if !ok {
			return VariantEvaluationResponse{}, &LookupGapError{Message: fmt.Sprintf("error getting evaluation distributions for rule %s", rule.ID)}
		}

		valid := buildCumulativeBuckets(distributions)
		if len(valid) == 0 {
			resp.Match = true
			resp.Reason = EvaluationReasonMatch
			stamp()
			return resp, nil
		}

		bucket := int(crc32Bucket(req.EntityID, flag.Key, 1000))

		d, found := selectDistribution(valid, bucket)
		if !found {
			resp.Match = false
			stamp()
			return resp, nil
		}

		resp.Match = true
		resp.Reason = EvaluationReasonMatch
		resp.VariantKey = d.VariantKey
		resp.VariantAttachment = d.VariantAttachment
		stamp()
		return resp, nil
	}

	stamp()
	return resp, nil
}

// evaluateBoolean implements the boolean evaluator's rollout walk against a
// BOOLEAN-typed flag already looked up in the snapshot.
func evaluateBoolean(snap *Snapshot, namespaceKey string, flag Flag, req EvaluationRequest) (BooleanEvaluationResponse, error) {
	start := time.Now()

	resp := BooleanEvaluationResponse{FlagKey: flag.Key}

	stamp := func() {
		resp.RequestDurationMillis = float64(time.Since(start).Microseconds()) / 1000.0
		resp.Timestamp = time.Now()
	}

	rollouts, ok := snap.getEvaluationRollouts(namespaceKey, flag.Key)
	if !ok {
		return BooleanEvaluationResponse{}, &LookupGapError{Message: fmt.Sprintf("error getting evaluation rollouts for %s/%s", namespaceKey, flag.Key)}
	}

	lastRank := 0
	for _, rollout := range rollouts {
		if rollout.Rank < lastRank {
			return BooleanEvaluationResponse{}, &IntegrityError{Message: fmt.Sprintf("rollout rank: %d detected out of order", rollout.Rank)}
		}
		lastRank = rollout.Rank

		switch rollout.RolloutType {
		case RolloutTypeThreshold:
			v := float64(crc32Bucket(req.EntityID, flag.Key, 100))
			if v < rollout.Threshold.Percentage {
				resp.Enabled = rollout.Threshold.Value
				resp.Reason = EvaluationReasonMatch
				stamp()
				return resp, nil
			}
		case RolloutTypeSegment:
			matched, _, err := matchSegments(rollout.Segment.Segments, rollout.Segment.SegmentOperator, req.Context)
			if err != nil {
				return BooleanEvaluationResponse{}, err
			}
			if matched {
				resp.Enabled = rollout.Segment.Value
				resp.Reason = EvaluationReasonMatch
				stamp()
				return resp, nil
			}
		case RolloutTypeUnknown:
			// inert, no effect
		}
	}

	resp.Enabled = flag.Enabled
	resp.Reason = EvaluationReasonDefault
	stamp()
	return resp, nil
}
