package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisParser is a Parser that reads a publisher-cached snapshot Document
// from Redis instead of issuing an HTTP GET on every refresh cycle, using
// the key a Flipt-compatible snapshot publisher writes.
type RedisParser struct {
	client     *redis.Client
	namespaces []string
	logger     zerolog.Logger
}

// NewRedisParser wraps an already-configured *redis.Client. The engine never
// owns the client's lifecycle; callers close it themselves.
func NewRedisParser(client *redis.Client, namespaces []string, logger zerolog.Logger) *RedisParser {
	return &RedisParser{
		client:     client,
		namespaces: namespaces,
		logger:     logger.With().Str("component", "redis_parser").Logger(),
	}
}

func (p *RedisParser) GetNamespaces() []string { return p.namespaces }

func (p *RedisParser) Parse(ctx context.Context, namespaceKey string) (Document, error) {
	key := redisSnapshotKey(namespaceKey)

	body, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Document{}, &NotFoundError{Message: fmt.Sprintf("no cached snapshot for namespace %s", namespaceKey)}
		}
		return Document{}, &ParseError{Message: "failed to read snapshot from redis", Cause: err}
	}

	p.logger.Debug().Str("namespace", namespaceKey).Msg("loaded snapshot from redis")
	return decodeDocument(body)
}

func redisSnapshotKey(namespaceKey string) string {
	return fmt.Sprintf("flipt:snapshot:%s", namespaceKey)
}
