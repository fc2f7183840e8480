package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	parser := NewFileParser("testdata/state.json", []string{"default"})
	e, err := New(context.Background(), parser, Config{UpdateInterval: time.Hour}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEngineVariantAndBoolean(t *testing.T) {
	e := newTestEngine(t)

	vResp, err := e.Variant(EvaluationRequest{NamespaceKey: "default", FlagKey: "flag1", EntityID: "newentityid", Context: map[string]string{"fizz": "buzz"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !vResp.Match || vResp.VariantKey != "variant1" {
		t.Fatalf("unexpected variant response: %+v", vResp)
	}

	bResp, err := e.Boolean(EvaluationRequest{NamespaceKey: "default", FlagKey: "flag_boolean", EntityID: "entity", Context: map[string]string{"fizz": "buzz"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bResp.Enabled {
		t.Fatalf("unexpected boolean response: %+v", bResp)
	}
}

func TestEngineVariantNotFound(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Variant(EvaluationRequest{NamespaceKey: "default", FlagKey: "does-not-exist", EntityID: "e", Context: map[string]string{}})
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected *NotFoundError, got %v (%T)", err, err)
	}
}

func TestEngineVariantWrongType(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Variant(EvaluationRequest{NamespaceKey: "default", FlagKey: "flag_boolean", EntityID: "e", Context: map[string]string{}})
	if err == nil || err.Error() != "flag_boolean is not a variant flag" {
		t.Fatalf("expected wrong-type error message, got %v", err)
	}
}

func TestEngineBatchDowngradesNotFound(t *testing.T) {
	e := newTestEngine(t)

	responses, err := e.Batch([]EvaluationRequest{
		{NamespaceKey: "default", FlagKey: "flag1", EntityID: "newentityid", Context: map[string]string{"fizz": "buzz"}},
		{NamespaceKey: "default", FlagKey: "ghost-flag", EntityID: "e", Context: map[string]string{}},
	})
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if responses[0].Variant == nil || !responses[0].Variant.Match {
		t.Fatalf("expected first response to be a variant match, got %+v", responses[0])
	}
	if responses[1].Error == nil || responses[1].Error.Reason != ErrorEvaluationReasonNotFound {
		t.Fatalf("expected second response to be an inline NotFound error, got %+v", responses[1])
	}
}

// countingParser counts Parse invocations so the refresh loop's behavior can
// be observed without depending on wall-clock timing beyond a short poll.
type countingParser struct {
	*FileParser
	calls int32
}

func (p *countingParser) Parse(ctx context.Context, ns string) (Document, error) {
	atomic.AddInt32(&p.calls, 1)
	return p.FileParser.Parse(ctx, ns)
}

func TestEngineRefreshSwapsSnapshot(t *testing.T) {
	parser := &countingParser{FileParser: NewFileParser("testdata/state.json", []string{"default"})}
	e, err := New(context.Background(), parser, Config{UpdateInterval: 20 * time.Millisecond}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Close()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&parser.calls) < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if atomic.LoadInt32(&parser.calls) < 3 {
		t.Fatalf("expected at least 3 parse calls (1 initial + 2 refreshes), got %d", parser.calls)
	}

	// the engine must still serve evaluations correctly after refreshes
	resp, err := e.Variant(EvaluationRequest{NamespaceKey: "default", FlagKey: "flag1", EntityID: "newentityid", Context: map[string]string{"fizz": "buzz"}})
	if err != nil {
		t.Fatalf("unexpected error after refresh: %v", err)
	}
	if !resp.Match {
		t.Fatalf("expected continued correct evaluation after refresh, got %+v", resp)
	}
}

func TestEngineCloseStopsRefresher(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Close(); err != nil {
		t.Fatalf("unexpected error closing engine: %v", err)
	}
}
