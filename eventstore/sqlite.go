package eventstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"settlers/apperr"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT NOT NULL PRIMARY KEY,
	aggregate_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	event_type TEXT NOT NULL,
	data TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	UNIQUE (aggregate_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_events_aggregate ON events(aggregate_id, seq);
`

// SQLiteStore persists events in a SQLite file.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// eventRow is the stored form of an Event.
type eventRow struct {
	ID          string `db:"id"`
	AggregateID string `db:"aggregate_id"`
	Seq         int64  `db:"seq"`
	Type        string `db:"event_type"`
	Data        string `db:"data"`
	Timestamp   int64  `db:"timestamp"`
}

func (r eventRow) event() (Event, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return Event{}, apperr.System(fmt.Sprintf("parse id of %s/%d", r.AggregateID, r.Seq), err)
	}
	return Event{
		ID:          id,
		AggregateID: r.AggregateID,
		Type:        r.Type,
		Data:        []byte(r.Data),
		Seq:         r.Seq,
		Timestamp:   time.UnixMilli(r.Timestamp).UTC(),
	}, nil
}

// OpenSQLite opens or creates a SQLite event store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; the transaction below is the append's critical section.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, aggregateID string, expectedSeq int64, drafts ...Draft) ([]Event, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.System("begin append", err)
	}
	defer tx.Rollback()

	var last int64
	if err := tx.GetContext(ctx, &last, "SELECT COALESCE(MAX(seq), 0) FROM events WHERE aggregate_id = ?", aggregateID); err != nil {
		return nil, apperr.System("read last seq", err)
	}
	if err := checkAppend(aggregateID, expectedSeq, last, drafts); err != nil {
		return nil, err
	}

	events := build(aggregateID, last, drafts, s.now())
	for _, ev := range events {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO events (id, aggregate_id, seq, event_type, data, timestamp)
			 VALUES (:id, :aggregate_id, :seq, :event_type, :data, :timestamp)`,
			eventRow{
				ID:          ev.ID.String(),
				AggregateID: ev.AggregateID,
				Seq:         ev.Seq,
				Type:        ev.Type,
				Data:        string(ev.Data),
				Timestamp:   ev.Timestamp.UnixMilli(),
			})
		if err != nil {
			if isConstraintError(err) || isBusyError(err) {
				return nil, apperr.Conflict("aggregate %s changed during append", aggregateID)
			}
			return nil, apperr.System("insert event", err)
		}
	}
	if err := tx.Commit(); err != nil {
		if isBusyError(err) {
			return nil, apperr.Conflict("aggregate %s changed during append", aggregateID)
		}
		return nil, apperr.System("commit append", err)
	}
	return events, nil
}

func (s *SQLiteStore) List(ctx context.Context, aggregateID string, afterSeq int64, limit int) ([]Event, error) {
	query := "SELECT id, aggregate_id, seq, event_type, data, timestamp FROM events WHERE aggregate_id = ? AND seq > ? ORDER BY seq"
	args := []any{aggregateID, afterSeq}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperr.System("list events", err)
	}
	events := make([]Event, 0, len(rows))
	for _, r := range rows {
		ev, err := r.event()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *SQLiteStore) LastSeq(ctx context.Context, aggregateID string) (int64, error) {
	var last sql.NullInt64
	if err := s.db.GetContext(ctx, &last, "SELECT MAX(seq) FROM events WHERE aggregate_id = ?", aggregateID); err != nil {
		return 0, apperr.System("read last seq", err)
	}
	return last.Int64, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func isBusyError(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

var _ Store = (*SQLiteStore)(nil)
