package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

// Connect opens a small pool; the booking state is a single row.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnIdleTime = 15 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// Store keeps the record as a jsonb row keyed by the state key.
type Store struct {
	pool *pgxpool.Pool
	key  string
}

func NewStore(pool *pgxpool.Pool, key string) *Store {
	return &Store{pool: pool, key: key}
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS booking_state (
			key        TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate booking_state: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context) (appointment.Record, error) {
	var data []byte

	err := s.pool.QueryRow(ctx, `
		SELECT data
		FROM booking_state
		WHERE key = $1
	`, s.key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return appointment.Record{}, appointment.ErrNoRecord
		}
		return appointment.Record{}, fmt.Errorf("select booking state: %w", err)
	}

	var rec appointment.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return appointment.Record{}, fmt.Errorf("decode booking state: %w", err)
	}
	return rec, nil
}

func (s *Store) Set(ctx context.Context, rec appointment.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode booking state: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO booking_state (key, data, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE
		SET data = EXCLUDED.data,
		    updated_at = now()
	`, s.key, string(data))
	if err != nil {
		return fmt.Errorf("upsert booking state: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM booking_state WHERE key = $1`, s.key)
	if err != nil {
		return fmt.Errorf("delete booking state: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
