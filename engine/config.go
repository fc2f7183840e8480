package engine

import (
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// ParserKind selects which Parser implementation Config wires up.
type ParserKind string

const (
	ParserKindHTTP     ParserKind = "http"
	ParserKindRedis    ParserKind = "redis"
	ParserKindPostgres ParserKind = "postgres"
	ParserKindFile     ParserKind = "file"
)

// Config is the engine's viper-backed configuration, covering just what
// an embedded evaluation engine needs to resolve its upstream source.
type Config struct {
	UpdateInterval time.Duration
	RemoteURL      string
	Parser         ParserKind
	FilePath       string

	Redis    RedisConfig
	Postgres PostgresConfig
	NATS     NATSConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	DSN string
}

type NATSConfig struct {
	URL     string
	Subject string
}

// LoadConfig builds a Config from environment variables, matching §6's
// contract exactly for FLIPT_UPDATE_INTERVAL and FLIPT_REMOTE_URL: a
// non-parseable interval falls back to 120 seconds rather than failing.
func LoadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("FLIPT")
	v.AutomaticEnv()

	v.SetDefault("UPDATE_INTERVAL", "120")
	v.SetDefault("REMOTE_URL", "http://localhost:8080")
	v.SetDefault("PARSER", string(ParserKindHTTP))
	v.SetDefault("FILE_PATH", "")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", "0")

	v.SetDefault("POSTGRES_DSN", "")

	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("NATS_SUBJECT", "flipt.snapshot.invalidate")

	interval := 120
	if parsed, err := strconv.Atoi(v.GetString("UPDATE_INTERVAL")); err == nil {
		interval = parsed
	}

	redisDB := 0
	if parsed, err := strconv.Atoi(v.GetString("REDIS_DB")); err == nil {
		redisDB = parsed
	}

	return Config{
		UpdateInterval: time.Duration(interval) * time.Second,
		RemoteURL:      v.GetString("REMOTE_URL"),
		Parser:         ParserKind(v.GetString("PARSER")),
		FilePath:       v.GetString("FILE_PATH"),
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Postgres: PostgresConfig{
			DSN: v.GetString("POSTGRES_DSN"),
		},
		NATS: NATSConfig{
			URL:     v.GetString("NATS_URL"),
			Subject: v.GetString("NATS_SUBJECT"),
		},
	}
}
