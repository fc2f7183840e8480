package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Engine owns the current Snapshot and the background refresher that keeps
// it current. Every evaluation call holds a read lock for its full
// duration; refresh builds the replacement Snapshot outside the lock and
// only takes the write lock for the pointer swap, per §5's guidance to
// minimize the latency impact of a (potentially slow) parse+build on
// in-flight evaluators.
type Engine struct {
	parser         Parser
	namespaces     []string
	updateInterval time.Duration
	logger         zerolog.Logger

	mu       sync.RWMutex
	snapshot *Snapshot

	stopCh     chan struct{}
	doneCh     chan struct{}
	invalidate chan struct{}
	listener   *invalidationListener
	closeOnce  sync.Once
}

// New builds the initial snapshot (propagating any build error, which fails
// construction per §4.7) and spawns the single background refresher.
func New(ctx context.Context, parser Parser, cfg Config, logger zerolog.Logger) (*Engine, error) {
	namespaces := parser.GetNamespaces()

	snap, err := buildSnapshot(ctx, parser, namespaces)
	if err != nil {
		return nil, err
	}

	interval := cfg.UpdateInterval
	if interval <= 0 {
		interval = 120 * time.Second
	}

	e := &Engine{
		parser:         parser,
		namespaces:     namespaces,
		updateInterval: interval,
		logger:         logger.With().Str("component", "engine").Logger(),
		snapshot:       snap,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
		invalidate:     make(chan struct{}, 1),
	}

	go e.refreshLoop()

	return e, nil
}

// AttachInvalidationListener wires a NATS subscription that triggers an
// early refresh on `{subject}.{namespace}`, supplementing the fixed-interval
// refresher without replacing it. Close tears the listener down along with
// the refresher.
func (e *Engine) AttachInvalidationListener(conn *nats.Conn, subject string) error {
	l, err := newInvalidationListener(conn, subject, e.invalidate, e.logger)
	if err != nil {
		return err
	}
	e.listener = l
	return nil
}

func (e *Engine) refreshLoop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.refresh()
		case <-e.invalidate:
			e.refresh()
		}
	}
}

// refresh rebuilds the snapshot and swaps it in. A build failure is
// non-fatal: it is logged and the live snapshot is retained, per §5/§7.
func (e *Engine) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := buildSnapshot(ctx, e.parser, e.namespaces)
	if err != nil {
		e.logger.Warn().Err(err).Msg("snapshot refresh failed, retaining previous snapshot")
		return
	}

	e.mu.Lock()
	e.snapshot = snap
	e.mu.Unlock()

	e.logger.Debug().Msg("snapshot refreshed")
}

// Close terminates the background refresher and waits for it to exit. Safe
// to call more than once; only the first call has effect.
func (e *Engine) Close() error {
	var listenerErr error
	e.closeOnce.Do(func() {
		close(e.stopCh)
		<-e.doneCh
		if e.listener != nil {
			listenerErr = e.listener.close()
		}
	})
	return listenerErr
}

// Variant evaluates a VARIANT-typed flag for the given request.
func (e *Engine) Variant(req EvaluationRequest) (VariantEvaluationResponse, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	flag, ok := e.snapshot.getFlag(req.NamespaceKey, req.FlagKey)
	if !ok {
		return VariantEvaluationResponse{}, &NotFoundError{Message: fmt.Sprintf("failed to get flag information %s/%s", req.NamespaceKey, req.FlagKey)}
	}
	if flag.Type != FlagTypeVariant {
		return VariantEvaluationResponse{}, &WrongTypeError{FlagKey: flag.Key, Wanted: FlagTypeVariant, Got: flag.Type}
	}

	return evaluateVariant(e.snapshot, req.NamespaceKey, flag, req)
}

// Boolean evaluates a BOOLEAN-typed flag for the given request.
func (e *Engine) Boolean(req EvaluationRequest) (BooleanEvaluationResponse, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	flag, ok := e.snapshot.getFlag(req.NamespaceKey, req.FlagKey)
	if !ok {
		return BooleanEvaluationResponse{}, &NotFoundError{Message: fmt.Sprintf("failed to get flag information %s/%s", req.NamespaceKey, req.FlagKey)}
	}
	if flag.Type != FlagTypeBoolean {
		return BooleanEvaluationResponse{}, &WrongTypeError{FlagKey: flag.Key, Wanted: FlagTypeBoolean, Got: flag.Type}
	}

	return evaluateBoolean(e.snapshot, req.NamespaceKey, flag, req)
}

// Batch evaluates every request against a single snapshot view. A missing
// flag produces an in-line ErrorEvaluationResponse and the batch continues;
// any other error aborts the batch and is returned.
func (e *Engine) Batch(reqs []EvaluationRequest) ([]BatchEvaluationResponse, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]BatchEvaluationResponse, 0, len(reqs))

	for _, req := range reqs {
		flag, ok := e.snapshot.getFlag(req.NamespaceKey, req.FlagKey)
		if !ok {
			out = append(out, BatchEvaluationResponse{Error: &ErrorEvaluationResponse{
				FlagKey:      req.FlagKey,
				NamespaceKey: req.NamespaceKey,
				Reason:       ErrorEvaluationReasonNotFound,
				Timestamp:    time.Now(),
			}})
			continue
		}

		switch flag.Type {
		case FlagTypeBoolean:
			resp, err := evaluateBoolean(e.snapshot, req.NamespaceKey, flag, req)
			if err != nil {
				return nil, err
			}
			out = append(out, BatchEvaluationResponse{Boolean: &resp})
		default:
			resp, err := evaluateVariant(e.snapshot, req.NamespaceKey, flag, req)
			if err != nil {
				return nil, err
			}
			out = append(out, BatchEvaluationResponse{Variant: &resp})
		}
	}

	return out, nil
}
