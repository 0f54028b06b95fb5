package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"settlers/apperr"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS events (
	id UUID PRIMARY KEY,
	aggregate_id TEXT NOT NULL,
	seq BIGINT NOT NULL,
	event_type TEXT NOT NULL,
	data JSONB NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	UNIQUE (aggregate_id, seq)
)`

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// PostgresStore persists events in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// OpenPostgres connects to dsn and creates the events table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

func (s *PostgresStore) Append(ctx context.Context, aggregateID string, expectedSeq int64, drafts ...Draft) ([]Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.System("begin append", err)
	}
	defer tx.Rollback(ctx)

	var last int64
	err = tx.QueryRow(ctx, "SELECT COALESCE(MAX(seq), 0) FROM events WHERE aggregate_id = $1", aggregateID).Scan(&last)
	if err != nil {
		return nil, apperr.System("read last seq", err)
	}
	if err := checkAppend(aggregateID, expectedSeq, last, drafts); err != nil {
		return nil, err
	}

	events := build(aggregateID, last, drafts, s.now())
	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(
			"INSERT INTO events (id, aggregate_id, seq, event_type, data, timestamp) VALUES ($1, $2, $3, $4, $5, $6)",
			ev.ID, ev.AggregateID, ev.Seq, ev.Type, string(ev.Data), ev.Timestamp,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("aggregate %s changed during append", aggregateID)
		}
		return nil, apperr.System("insert events", err)
	}
	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("aggregate %s changed during append", aggregateID)
		}
		return nil, apperr.System("commit append", err)
	}
	return events, nil
}

func (s *PostgresStore) List(ctx context.Context, aggregateID string, afterSeq int64, limit int) ([]Event, error) {
	query := "SELECT id, aggregate_id, seq, event_type, data, timestamp FROM events WHERE aggregate_id = $1 AND seq > $2 ORDER BY seq"
	args := []any{aggregateID, afterSeq}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.System("list events", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev   Event
			id   uuid.UUID
			data []byte
		)
		if err := rows.Scan(&id, &ev.AggregateID, &ev.Seq, &ev.Type, &data, &ev.Timestamp); err != nil {
			return nil, apperr.System("scan event", err)
		}
		ev.ID = id
		ev.Data = data
		ev.Timestamp = ev.Timestamp.UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.System("list events", err)
	}
	return events, nil
}

func (s *PostgresStore) LastSeq(ctx context.Context, aggregateID string) (int64, error) {
	var last int64
	err := s.pool.QueryRow(ctx, "SELECT COALESCE(MAX(seq), 0) FROM events WHERE aggregate_id = $1", aggregateID).Scan(&last)
	if err != nil {
		return 0, apperr.System("read last seq", err)
	}
	return last, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ Store = (*PostgresStore)(nil)
