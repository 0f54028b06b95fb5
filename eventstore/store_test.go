package eventstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"settlers/apperr"
)

var at = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func drafts(t *testing.T, types ...string) []Draft {
	t.Helper()
	out := make([]Draft, len(types))
	for i, typ := range types {
		d, err := NewDraft(typ, map[string]int{"n": i}, at.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		out[i] = d
	}
	return out
}

// testStore runs the behaviour every Store implementation shares.
func testStore(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("append assigns sequence numbers from 1", func(t *testing.T) {
		s := open(t)
		events, err := s.Append(ctx, "game-1", 0, drafts(t, "a", "b")...)
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, int64(1), events[0].Seq)
		require.Equal(t, int64(2), events[1].Seq)
		require.NotEqual(t, events[0].ID, events[1].ID)
		require.Equal(t, at, events[0].Timestamp)

		more, err := s.Append(ctx, "game-1", 2, drafts(t, "c")...)
		require.NoError(t, err)
		require.Equal(t, int64(3), more[0].Seq)

		other, err := s.Append(ctx, "game-2", AnySeq, drafts(t, "x")...)
		require.NoError(t, err)
		require.Equal(t, int64(1), other[0].Seq)

		last, err := s.LastSeq(ctx, "game-1")
		require.NoError(t, err)
		require.Equal(t, int64(3), last)
		last, err = s.LastSeq(ctx, "missing")
		require.NoError(t, err)
		require.Zero(t, last)
	})

	t.Run("list returns stored events in order", func(t *testing.T) {
		s := open(t)
		stored, err := s.Append(ctx, "game-1", 0, drafts(t, "a", "b", "c", "d")...)
		require.NoError(t, err)

		all, err := s.List(ctx, "game-1", 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 4)
		for i, ev := range all {
			require.Equal(t, stored[i].ID, ev.ID)
			require.Equal(t, stored[i].Type, ev.Type)
			require.Equal(t, int64(i+1), ev.Seq)
			require.True(t, stored[i].Timestamp.Equal(ev.Timestamp))
			require.JSONEq(t, string(stored[i].Data), string(ev.Data))
		}

		page, err := s.List(ctx, "game-1", 1, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.Equal(t, "b", page[0].Type)
		require.Equal(t, "c", page[1].Type)

		none, err := s.List(ctx, "game-1", 4, 0)
		require.NoError(t, err)
		require.Empty(t, none)
		none, err = s.List(ctx, "nothing", 0, 0)
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("stale expected sequence conflicts", func(t *testing.T) {
		s := open(t)
		_, err := s.Append(ctx, "game-1", 0, drafts(t, "a")...)
		require.NoError(t, err)

		_, err = s.Append(ctx, "game-1", 0, drafts(t, "b")...)
		require.True(t, apperr.IsConflict(err), "got %v", err)
		last, err := s.LastSeq(ctx, "game-1")
		require.NoError(t, err)
		require.Equal(t, int64(1), last, "nothing written")
	})

	t.Run("invalid drafts", func(t *testing.T) {
		s := open(t)
		_, err := s.Append(ctx, "", AnySeq, drafts(t, "a")...)
		require.True(t, apperr.IsValidation(err))
		_, err = s.Append(ctx, "game-1", AnySeq, Draft{Data: json.RawMessage(`{}`)})
		require.True(t, apperr.IsValidation(err))
	})

	t.Run("concurrent appends serialize", func(t *testing.T) {
		s := open(t)
		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		batch := drafts(t, "a")
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Append(ctx, "game-1", 0, batch...)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case apperr.IsConflict(err):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		require.Equal(t, 1, successes)
		require.Equal(t, writers-1, conflicts)

		all, err := s.List(ctx, "game-1", 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 1)
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewMemoryStore().Append(ctx, "game-1", AnySeq, drafts(t, "a")...)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSQLiteStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "events.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})

	t.Run("survives reopening", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "events.db")
		s, err := OpenSQLite(path)
		require.NoError(t, err)
		_, err = s.Append(ctx, "game-1", 0, drafts(t, "a", "b")...)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		s, err = OpenSQLite(path)
		require.NoError(t, err)
		defer s.Close()
		last, err := s.LastSeq(ctx, "game-1")
		require.NoError(t, err)
		require.Equal(t, int64(2), last)
	})

	t.Run("requires a path", func(t *testing.T) {
		_, err := OpenSQLite(" ")
		require.Error(t, err)
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SETTLERS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SETTLERS_TEST_POSTGRES_DSN not set")
	}
	testStore(t, func(t *testing.T) Store {
		ctx := context.Background()
		s, err := OpenPostgres(ctx, dsn)
		require.NoError(t, err)
		_, err = s.pool.Exec(ctx, "TRUNCATE events")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "e.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Driver: "mongo"})
	require.Error(t, err)
}
