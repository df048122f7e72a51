package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/propkit/property"
	"github.com/zero-day-ai/propkit/wire"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// Prefix namespaces every key. Default: "propkit".
	Prefix string

	// TTL expires snapshots after the given duration. Zero keeps them forever.
	TTL time.Duration

	// TLS enables TLS on the connection when set. A rediss:// URL also
	// enables it.
	TLS *tls.Config

	// ConnectTimeout bounds dialing the server. Default: 5s.
	ConnectTimeout time.Duration

	// ReadTimeout bounds each command read. Default: 3s.
	ReadTimeout time.Duration

	// WriteTimeout bounds each command write. Default: 3s.
	WriteTimeout time.Duration

	// Logger receives per-operation logs. Default: slog.Default().
	Logger *slog.Logger

	// TracerProvider and MeterProvider default to the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (o *RedisOptions) setDefaults() {
	if o.URL == "" {
		o.URL = "redis://localhost:6379"
	}
	if o.Prefix == "" {
		o.Prefix = "propkit"
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	if o.ReadTimeout == 0 {
		o.ReadTimeout = 3 * time.Second
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = 3 * time.Second
	}
}

// RedisStore keeps snapshots as strings under <prefix>:snapshot:<id> and
// tracks ids in the set <prefix>:index.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	owned  bool
	in     *instruments
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	opts.setDefaults()

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if opts.TLS != nil {
		redisOpts.TLSConfig = opts.TLS
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s, err := NewRedisStoreFromClient(client, opts)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewRedisStoreFromClient uses an existing client. Close leaves the client
// open.
func NewRedisStoreFromClient(client redis.UniversalClient, opts RedisOptions) (*RedisStore, error) {
	opts.setDefaults()

	in, err := newInstruments("redis", opts.TracerProvider, opts.MeterProvider, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &RedisStore{
		client: client,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		in:     in,
	}, nil
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":snapshot:" + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":index"
}

// Save writes the snapshot and indexes its id in one transaction.
func (s *RedisStore) Save(ctx context.Context, id string, src property.Arrayer) (_ string, err error) {
	id = newID(id)
	ctx, finish := s.in.start(ctx, "save", id)
	defer func() { finish(err) }()

	data, err := wire.SnapshotJSON(src)
	if err != nil {
		return "", fmt.Errorf("failed to render snapshot %s: %w", id, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(id), data, s.ttl)
		pipe.SAdd(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot %s: %w", id, err)
	}
	return id, nil
}

// Load populates dst from the snapshot under id.
func (s *RedisStore) Load(ctx context.Context, id string, dst property.Populator, opts ...property.PopulateOption) (err error) {
	if id == "" {
		return ErrEmptyID
	}
	ctx, finish := s.in.start(ctx, "load", id)
	defer func() { finish(err) }()

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}

	return wire.UnmarshalJSON(data, dst, opts...)
}

// Delete removes the snapshot under id and its index entry.
func (s *RedisStore) Delete(ctx context.Context, id string) (err error) {
	if id == "" {
		return ErrEmptyID
	}
	ctx, finish := s.in.start(ctx, "delete", id)
	defer func() { finish(err) }()

	var del *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns the indexed ids whose snapshot still exists. Ids of expired
// snapshots are dropped from the index on the way.
func (s *RedisStore) List(ctx context.Context) (_ []string, err error) {
	ctx, finish := s.in.start(ctx, "list", "")
	defer func() { finish(err) }()

	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(ids) == 0 {
		return []string{}, nil
	}

	exists := make([]*redis.IntCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			exists[i] = pipe.Exists(ctx, s.key(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	live := make([]string, 0, len(ids))
	var stale []any
	for i, id := range ids {
		if exists[i].Val() > 0 {
			live = append(live, id)
		} else {
			stale = append(stale, id)
		}
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			s.in.logger.Warn("failed to prune snapshot index",
				"stale", len(stale),
				"error", err)
		}
	}

	sort.Strings(live)
	return live, nil
}

// Close closes the client if the store created it.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
