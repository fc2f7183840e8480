package engine

import (
	"context"
	"testing"
)

func buildTestSnapshot(t *testing.T, path string) *Snapshot {
	t.Helper()
	parser := NewFileParser(path, []string{"default"})
	snap, err := buildSnapshot(context.Background(), parser, parser.GetNamespaces())
	if err != nil {
		t.Fatalf("buildSnapshot failed: %v", err)
	}
	return snap
}

func TestBuildSnapshotIndexesFlag1(t *testing.T) {
	snap := buildTestSnapshot(t, "testdata/state.json")

	flag, ok := snap.getFlag("default", "flag1")
	if !ok {
		t.Fatalf("expected flag1 to be indexed")
	}
	if !flag.Enabled || flag.Type != FlagTypeVariant {
		t.Fatalf("unexpected flag1 shape: %+v", flag)
	}

	rules, ok := snap.getEvaluationRules("default", "flag1")
	if !ok || len(rules) != 1 {
		t.Fatalf("expected exactly one rule for flag1, got %v ok=%v", rules, ok)
	}
	rule := rules[0]
	if rule.Rank != 1 {
		t.Fatalf("expected rank 1, got %d", rule.Rank)
	}
	seg, ok := rule.Segments["segment1"]
	if !ok {
		t.Fatalf("expected segment1 in rule.Segments")
	}
	if seg.MatchType != SegmentMatchTypeAny || len(seg.Constraints) != 1 {
		t.Fatalf("unexpected segment1 shape: %+v", seg)
	}

	dists, ok := snap.getEvaluationDistributions("default", rule.ID)
	if !ok || len(dists) != 1 || dists[0].VariantKey != "variant1" {
		t.Fatalf("unexpected distributions for flag1: %v ok=%v", dists, ok)
	}
}

func TestBuildSnapshotRanksAreOneBasedAndOrdered(t *testing.T) {
	snap := buildTestSnapshot(t, "testdata/state.json")

	rollouts, ok := snap.getEvaluationRollouts("default", "flag_boolean")
	if !ok || len(rollouts) != 2 {
		t.Fatalf("expected 2 rollouts for flag_boolean, got %v ok=%v", rollouts, ok)
	}
	for i, r := range rollouts {
		if r.Rank != i+1 {
			t.Fatalf("rollout %d has rank %d, want %d", i, r.Rank, i+1)
		}
	}
	if rollouts[0].RolloutType != RolloutTypeSegment {
		t.Fatalf("expected rank 1 rollout to be SEGMENT type, got %v", rollouts[0].RolloutType)
	}
	if rollouts[1].RolloutType != RolloutTypeThreshold {
		t.Fatalf("expected rank 2 rollout to be THRESHOLD type, got %v", rollouts[1].RolloutType)
	}
}

func TestBuildSnapshotMissingNamespaceAndFlag(t *testing.T) {
	snap := buildTestSnapshot(t, "testdata/state.json")

	if _, ok := snap.getFlag("nonexistent-ns", "flag1"); ok {
		t.Fatalf("expected no flag lookup in an unknown namespace")
	}
	if _, ok := snap.getFlag("default", "nonexistent-flag"); ok {
		t.Fatalf("expected no lookup for an unknown flag key")
	}
}

func TestBuildSnapshotLegacyShapeResolvesReferences(t *testing.T) {
	parser := NewFileParser("testdata/state_legacy.json", []string{"default"})
	doc, err := parser.Parse(context.Background(), "default")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	// the fixture also carries the dangling-reference flags, which abort a
	// whole-document build; isolate the resolvable one
	for _, f := range doc.Flags {
		if f.Key == "flag_legacy" {
			doc.Flags = []DocumentFlag{f}
			break
		}
	}

	idx, err := buildNamespaceIndex(doc)
	if err != nil {
		t.Fatalf("buildNamespaceIndex failed: %v", err)
	}
	snap := &Snapshot{namespaces: map[string]*namespaceIndex{"default": idx}}

	rules, ok := snap.getEvaluationRules("default", "flag_legacy")
	if !ok || len(rules) != 1 {
		t.Fatalf("expected one rule for flag_legacy, got %v ok=%v", rules, ok)
	}
	seg, ok := rules[0].Segments["legacy_segment"]
	if !ok {
		t.Fatalf("expected legacy_segment resolved into rule.Segments")
	}
	if seg.MatchType != SegmentMatchTypeAny {
		t.Fatalf("unexpected resolved legacy segment: %+v", seg)
	}

	dists, ok := snap.getEvaluationDistributions("default", rules[0].ID)
	if !ok || len(dists) != 1 || dists[0].VariantKey != "legacy_variant" {
		t.Fatalf("expected legacy_variant resolved distribution, got %v ok=%v", dists, ok)
	}
}

func TestBuildSnapshotLegacyShapeDanglingSegmentFails(t *testing.T) {
	parser := NewFileParser("testdata/state_legacy.json", []string{"default"})
	doc, err := parser.Parse(context.Background(), "default")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	// isolate just the dangling-segment flag so the error is unambiguous
	for _, f := range doc.Flags {
		if f.Key == "flag_legacy_dangling_segment" {
			doc.Flags = []DocumentFlag{f}
			break
		}
	}

	if _, err := buildNamespaceIndex(doc); err == nil {
		t.Fatalf("expected an error for an unresolved legacy segment reference")
	}
}

func TestBuildSnapshotLegacyShapeDanglingVariantFails(t *testing.T) {
	parser := NewFileParser("testdata/state_legacy.json", []string{"default"})
	doc, err := parser.Parse(context.Background(), "default")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	for _, f := range doc.Flags {
		if f.Key == "flag_legacy_dangling_variant" {
			doc.Flags = []DocumentFlag{f}
			break
		}
	}

	if _, err := buildNamespaceIndex(doc); err == nil {
		t.Fatalf("expected an error for an unresolved legacy variant reference")
	}
}
