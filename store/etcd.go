package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/propkit/property"
	"github.com/zero-day-ai/propkit/wire"
)

// EtcdOptions configures an EtcdStore.
type EtcdOptions struct {
	// Endpoints lists the etcd cluster members (e.g., "localhost:2379").
	Endpoints []string

	// Namespace is the first key segment. Default: "propkit".
	Namespace string

	// DialTimeout bounds connection establishment. Default: 5s.
	DialTimeout time.Duration

	// TLS enables TLS to the cluster when set.
	TLS *tls.Config

	// Username and Password enable etcd authentication when Username is set.
	Username string
	Password string

	// Logger receives per-operation logs. Default: slog.Default().
	Logger *slog.Logger

	// TracerProvider and MeterProvider default to the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (o *EtcdOptions) setDefaults() {
	if o.Namespace == "" {
		o.Namespace = "propkit"
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = 5 * time.Second
	}
}

// EtcdStore keeps snapshots under /<namespace>/snapshots/<id>.
type EtcdStore struct {
	kv     clientv3.KV
	client *clientv3.Client
	prefix string
	in     *instruments
}

var _ Store = (*EtcdStore)(nil)

// NewEtcdStore connects to etcd and verifies connectivity.
func NewEtcdStore(opts EtcdOptions) (*EtcdStore, error) {
	if len(opts.Endpoints) == 0 {
		return nil, errors.New("etcd endpoints cannot be empty")
	}
	opts.setDefaults()

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   opts.Endpoints,
		DialTimeout: opts.DialTimeout,
		TLS:         opts.TLS,
		Username:    opts.Username,
		Password:    opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()

	if _, err := cli.Get(ctx, "health-check"); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	s, err := NewEtcdStoreFromKV(cli, opts)
	if err != nil {
		_ = cli.Close()
		return nil, err
	}
	s.client = cli
	return s, nil
}

// NewEtcdStoreFromKV uses an existing KV, such as a *clientv3.Client or a
// namespaced view of one. Close leaves it open.
func NewEtcdStoreFromKV(kv clientv3.KV, opts EtcdOptions) (*EtcdStore, error) {
	opts.setDefaults()

	in, err := newInstruments("etcd", opts.TracerProvider, opts.MeterProvider, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &EtcdStore{
		kv:     kv,
		prefix: "/" + strings.Trim(opts.Namespace, "/") + "/snapshots/",
		in:     in,
	}, nil
}

func (s *EtcdStore) key(id string) string {
	return s.prefix + id
}

// Save writes the snapshot under id.
func (s *EtcdStore) Save(ctx context.Context, id string, src property.Arrayer) (_ string, err error) {
	id = newID(id)
	ctx, finish := s.in.start(ctx, "save", id)
	defer func() { finish(err) }()

	data, err := wire.SnapshotJSON(src)
	if err != nil {
		return "", fmt.Errorf("failed to render snapshot %s: %w", id, err)
	}

	if _, err = s.kv.Put(ctx, s.key(id), string(data)); err != nil {
		return "", fmt.Errorf("failed to save snapshot %s: %w", id, err)
	}
	return id, nil
}

// Load populates dst from the snapshot under id.
func (s *EtcdStore) Load(ctx context.Context, id string, dst property.Populator, opts ...property.PopulateOption) (err error) {
	if id == "" {
		return ErrEmptyID
	}
	ctx, finish := s.in.start(ctx, "load", id)
	defer func() { finish(err) }()

	resp, err := s.kv.Get(ctx, s.key(id))
	if err != nil {
		return fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}
	if len(resp.Kvs) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return wire.UnmarshalJSON(resp.Kvs[0].Value, dst, opts...)
}

// Delete removes the snapshot under id.
func (s *EtcdStore) Delete(ctx context.Context, id string) (err error) {
	if id == "" {
		return ErrEmptyID
	}
	ctx, finish := s.in.start(ctx, "delete", id)
	defer func() { finish(err) }()

	resp, err := s.kv.Delete(ctx, s.key(id))
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	if resp.Deleted == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns every stored id in ascending order.
func (s *EtcdStore) List(ctx context.Context) (_ []string, err error) {
	ctx, finish := s.in.start(ctx, "list", "")
	defer func() { finish(err) }()

	resp, err := s.kv.Get(ctx, s.prefix, clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	ids := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		ids = append(ids, strings.TrimPrefix(string(kv.Key), s.prefix))
	}
	sort.Strings(ids)
	return ids, nil
}

// Close closes the client if the store created it.
func (s *EtcdStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
