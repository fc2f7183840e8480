package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresParser is a read-only Parser that reads a stored snapshot document
// from a namespace_snapshots(namespace_key, document, updated_at) table. It
// never writes: embedding the engine against a control plane's database
// directly must not turn the engine into a second writer of that state.
type PostgresParser struct {
	pool       *pgxpool.Pool
	namespaces []string
	logger     zerolog.Logger
}

func NewPostgresParser(pool *pgxpool.Pool, namespaces []string, logger zerolog.Logger) *PostgresParser {
	return &PostgresParser{
		pool:       pool,
		namespaces: namespaces,
		logger:     logger.With().Str("component", "postgres_parser").Logger(),
	}
}

func (p *PostgresParser) GetNamespaces() []string { return p.namespaces }

func (p *PostgresParser) Parse(ctx context.Context, namespaceKey string) (Document, error) {
	var body []byte

	row := p.pool.QueryRow(ctx, `SELECT document FROM namespace_snapshots WHERE namespace_key = $1`, namespaceKey)
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, &NotFoundError{Message: fmt.Sprintf("no stored snapshot for namespace %s", namespaceKey)}
		}
		return Document{}, &ParseError{Message: "failed to read snapshot from postgres", Cause: err}
	}

	p.logger.Debug().Str("namespace", namespaceKey).Msg("loaded snapshot from postgres")
	return decodeDocument(body)
}
