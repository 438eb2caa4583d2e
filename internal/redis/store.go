package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

type Options struct {
	Addr     string
	Username string
	Password string
}

// Connect dials redis and fails fast when the server does not answer a ping.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     4,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	return rdb, nil
}

// Store keeps the record as a JSON string under a single key with no
// expiry.
type Store struct {
	client *redis.Client
	key    string
}

func NewStore(client *redis.Client, key string) *Store {
	return &Store{
		client: client,
		key:    key,
	}
}

func (s *Store) Get(ctx context.Context) (appointment.Record, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appointment.Record{}, appointment.ErrNoRecord
		}
		return appointment.Record{}, fmt.Errorf("get %s: %w", s.key, err)
	}

	var rec appointment.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return appointment.Record{}, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return rec, nil
}

func (s *Store) Set(ctx context.Context, rec appointment.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}

	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
