package engine

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// invalidationListener subscribes to a NATS subject that carries
// out-of-cycle refresh signals — `flipt.snapshot.invalidate.{namespace}` —
// and triggers an early refresh instead of waiting for the next
// FLIPT_UPDATE_INTERVAL tick. It supplements, and never replaces, the
// interval-based refresher: the interval ticker keeps running as the
// backstop if no invalidation ever arrives.
type invalidationListener struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	subject string
	logger  zerolog.Logger
	trigger chan<- struct{}
}

// newInvalidationListener subscribes immediately; trigger receives a signal
// (non-blocking send) for every invalidation message observed.
func newInvalidationListener(conn *nats.Conn, subject string, trigger chan<- struct{}, logger zerolog.Logger) (*invalidationListener, error) {
	l := &invalidationListener{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "invalidation_listener").Logger(),
		trigger: trigger,
	}

	wildcard := subject + ".*"
	sub, err := conn.Subscribe(wildcard, l.handle)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", wildcard, err)
	}
	l.sub = sub

	l.logger.Info().Str("subject", wildcard).Msg("subscribed to snapshot invalidation")
	return l, nil
}

func (l *invalidationListener) handle(msg *nats.Msg) {
	l.logger.Debug().Str("subject", msg.Subject).Msg("received snapshot invalidation")
	select {
	case l.trigger <- struct{}{}:
	default:
		// a refresh is already pending; dedup the signal
	}
}

func (l *invalidationListener) close() error {
	if l.sub == nil {
		return nil
	}
	return l.sub.Unsubscribe()
}
