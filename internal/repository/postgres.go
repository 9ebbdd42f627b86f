package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cuttlegame/cuttle-server-go/internal/config"
)

// NewDB opens a pgx connection pool using the configured limits and
// verifies connectivity before returning it.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("database connection pool initialized",
		zap.Int32("max_conns", cfg.MaxConns),
		zap.Int32("min_conns", cfg.MinConns),
	)
	return pool, nil
}

// PostgresStore persists session records in a sessions table, one row
// per session, upserted on every save.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT PRIMARY KEY,
    version    INTEGER     NOT NULL,
    checksum   TEXT        NOT NULL,
    state      JSONB       NOT NULL,
    history    JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, sessionsSchema); err != nil {
		return nil, fmt.Errorf("ensure sessions schema: %w", err)
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Save(ctx context.Context, record *Record) error {
	const query = `
INSERT INTO sessions (id, version, checksum, state, history)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    version    = EXCLUDED.version,
    checksum   = EXCLUDED.checksum,
    state      = EXCLUDED.state,
    history    = EXCLUDED.history,
    updated_at = now()`
	_, err := s.pool.Exec(ctx, query,
		record.ID, record.Version, record.Checksum, record.State, record.History)
	if err != nil {
		return fmt.Errorf("save session %s: %w", record.ID, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*Record, error) {
	const query = `
SELECT id, version, checksum, state, history, created_at, updated_at
FROM sessions WHERE id = $1`
	record := &Record{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&record.ID, &record.Version, &record.Checksum,
		&record.State, &record.History, &record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return record, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
