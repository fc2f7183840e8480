package engine

import "testing"

func TestCRC32BucketStable(t *testing.T) {
	b1 := crc32Bucket("newentityid", "flag1", 1000)
	b2 := crc32Bucket("newentityid", "flag1", 1000)
	if b1 != b2 {
		t.Fatalf("bucket must be stable across calls: %d != %d", b1, b2)
	}
	// Pinned against an independent IEEE CRC32 computation over
	// entityId||flagKey to guard the chosen hash-input ordering.
	if b1 != 567 {
		t.Fatalf("expected bucket 567 for newentityid/flag1, got %d", b1)
	}
}

func TestCRC32BucketModuloRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		b := crc32Bucket("entity", "flag", 1000)
		if b >= 1000 {
			t.Fatalf("bucket %d out of [0,1000) range", b)
		}
	}
}

func TestBuildCumulativeBucketsSkipsZeroRollout(t *testing.T) {
	dists := []EvaluationDistribution{
		{VariantKey: "variant1", Rollout: 0},
		{VariantKey: "variant2", Rollout: 100},
	}
	valid := buildCumulativeBuckets(dists)
	if len(valid) != 1 {
		t.Fatalf("expected zero-rollout distribution excluded, got %d valid entries", len(valid))
	}
	if valid[0].dist.VariantKey != "variant2" || valid[0].bucket != 1000 {
		t.Fatalf("expected variant2 with cumulative bucket 1000, got %+v", valid[0])
	}
}

func TestBuildCumulativeBucketsMonotonic(t *testing.T) {
	dists := []EvaluationDistribution{
		{VariantKey: "a", Rollout: 30},
		{VariantKey: "b", Rollout: 20},
		{VariantKey: "c", Rollout: 50},
	}
	valid := buildCumulativeBuckets(dists)
	last := -1
	for _, v := range valid {
		if v.bucket < last {
			t.Fatalf("cumulative buckets must be non-decreasing, got %v", valid)
		}
		last = v.bucket
	}
	if valid[len(valid)-1].bucket != 1000 {
		t.Fatalf("distributions summing to 100%% must cumulate to 1000, got %d", valid[len(valid)-1].bucket)
	}
}

func TestSelectDistributionFindsLowerBound(t *testing.T) {
	valid := []validDistribution{
		{dist: EvaluationDistribution{VariantKey: "variant1"}, bucket: 500},
		{dist: EvaluationDistribution{VariantKey: "variant2"}, bucket: 1000},
	}

	d, ok := selectDistribution(valid, 306)
	if !ok || d.VariantKey != "variant1" {
		t.Fatalf("bucket 306 should select variant1, got %+v ok=%v", d, ok)
	}

	d, ok = selectDistribution(valid, 841)
	if !ok || d.VariantKey != "variant2" {
		t.Fatalf("bucket 841 should select variant2, got %+v ok=%v", d, ok)
	}
}

func TestSelectDistributionUnallocatedTail(t *testing.T) {
	valid := []validDistribution{
		{dist: EvaluationDistribution{VariantKey: "variant1"}, bucket: 500},
	}
	_, ok := selectDistribution(valid, 999)
	if ok {
		t.Fatalf("a bucket above every cumulative bucket must report no match")
	}
}
