// Package redisstore persists the session snapshot in Redis as a single JSON
// blob under one key, with read-time fallback to the legacy three-key layout
// (token, user, permissions as discrete string values).
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/fieldkit/core/session"
)

// Config provides environment-based configuration for the Redis store.
type Config struct {
	KeyPrefix string `env:"CREDENTIALS_REDIS_PREFIX" envDefault:"fieldkit:session"`
	// TTL expires stored credentials; zero keeps them until Clear.
	TTL time.Duration `env:"CREDENTIALS_TTL" envDefault:"0"`
}

// Store is a Redis-backed credential store.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a Redis store using the given client.
func New(client *redis.Client, cfg Config) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis credential store requires a client")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "fieldkit:session"
	}
	return &Store{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

func (s *Store) snapshotKey() string { return s.prefix + ":snapshot" }
func (s *Store) legacyKey(name string) string {
	return s.prefix + ":" + name
}

// Load reads the snapshot blob, falling back to the legacy three-key layout
// when no blob is present. Returns session.ErrNoSnapshot when neither exists.
func (s *Store) Load(ctx context.Context) (*session.Snapshot, error) {
	raw, err := s.client.Get(ctx, s.snapshotKey()).Result()
	switch {
	case err == nil:
		var snap session.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return nil, fmt.Errorf("failed to parse session snapshot: %w", err)
		}
		return &snap, nil
	case errors.Is(err, redis.Nil):
		return s.loadLegacy(ctx)
	default:
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}
}

// Save writes the snapshot blob and removes any legacy keys so stale state
// cannot resurface after a future Clear.
func (s *Store) Save(ctx context.Context, snap session.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.snapshotKey(), b, s.ttl)
	pipe.Del(ctx, s.legacyKey("token"), s.legacyKey("user"), s.legacyKey("permissions"))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot and legacy keys. Clearing an empty store is a
// no-op.
func (s *Store) Clear(ctx context.Context) error {
	keys := []string{
		s.snapshotKey(),
		s.legacyKey("token"),
		s.legacyKey("user"),
		s.legacyKey("permissions"),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear session snapshot: %w", err)
	}
	return nil
}

func (s *Store) loadLegacy(ctx context.Context) (*session.Snapshot, error) {
	values, err := s.client.MGet(ctx, s.legacyKey("token"), s.legacyKey("user"), s.legacyKey("permissions")).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load legacy session keys: %w", err)
	}

	snap := &session.Snapshot{}
	if v, ok := values[0].(string); ok {
		snap.Token = v
	}
	if v, ok := values[1].(string); ok && v != "" {
		var user session.User
		if err := json.Unmarshal([]byte(v), &user); err != nil {
			return nil, fmt.Errorf("failed to parse legacy user record: %w", err)
		}
		snap.User = &user
	}
	if v, ok := values[2].(string); ok && v != "" {
		var perms []string
		if err := json.Unmarshal([]byte(v), &perms); err != nil {
			return nil, fmt.Errorf("failed to parse legacy permission list: %w", err)
		}
		snap.Permissions = perms
	}

	if snap.Token == "" && snap.User == nil && snap.Permissions == nil {
		return nil, session.ErrNoSnapshot
	}
	return snap, nil
}
