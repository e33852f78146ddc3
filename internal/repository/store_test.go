package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eachStore runs fn against a fresh MemoryStore and a fresh migrated SQLite
// store.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) {
		db, err := sql.Open("sqlite3", ":memory:")
		require.NoError(t, err)
		db.SetMaxOpenConns(1)
		t.Cleanup(func() { db.Close() })
		_, err = db.Exec("PRAGMA foreign_keys = ON")
		require.NoError(t, err)
		s := NewSQLStore(db, DialectSQLite)
		require.NoError(t, Migrate(context.Background(), s))
		fn(t, s)
	})
}

func TestStoreInsertSelect(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		row, err := s.Insert(ctx, TableTables, Row{"table_number": 4, "table_name": "Lilas", "capacity": 8})
		require.NoError(t, err)
		assert.NotZero(t, row.Uint64("id"))
		assert.Equal(t, 4, row.Int("table_number"))

		rows, err := s.Select(ctx, TableTables, Eq("table_number", 4))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Lilas", rows[0].String("table_name"))

		rows, err = s.Select(ctx, TableTables, Eq("table_number", 5))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestStoreUniqueViolation(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.Insert(ctx, TableTables, Row{"table_number": 1, "table_name": "A", "capacity": 2})
		require.NoError(t, err)
		_, err = s.Insert(ctx, TableTables, Row{"table_number": 1, "table_name": "B", "capacity": 2})
		assert.ErrorIs(t, err, ErrUniqueViolation)
	})
}

func TestStoreILikeEscapesWildcards(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i, last := range []string{"Dupont", "DUPONTEL", "Du_pont", "Martin"} {
			_, err := s.Insert(ctx, TableGuests, Row{"id": string(rune('a' + i)), "first_name": "X", "last_name": last})
			require.NoError(t, err)
		}
		rows, err := s.Select(ctx, TableGuests, ILike("last_name", "dupont"))
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		rows, err = s.Select(ctx, TableGuests, ILike("last_name", "du_"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Du_pont", rows[0].String("last_name"))
	})
}

func TestStoreUpdateIsAllOrNothing(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, n := range []int{1, 2} {
			_, err := s.Insert(ctx, TableTables, Row{"table_number": n, "table_name": "T", "capacity": 2})
			require.NoError(t, err)
		}
		_, err := s.Update(ctx, TableTables, Row{"table_number": 1}, Eq("table_number", 2))
		assert.ErrorIs(t, err, ErrUniqueViolation)

		rows, err := s.Select(ctx, TableTables, Eq("table_number", 2))
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		updated, err := s.Update(ctx, TableTables, Row{"capacity": 10}, Eq("table_number", 2))
		require.NoError(t, err)
		require.Len(t, updated, 1)
		assert.Equal(t, 10, updated[0].Int("capacity"))

		none, err := s.Update(ctx, TableTables, Row{"capacity": 10}, Eq("table_number", 99))
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestStoreDeleteReturnsRows(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.Insert(ctx, TableTables, Row{"table_number": 3, "table_name": "T", "capacity": 2})
		require.NoError(t, err)
		removed, err := s.Delete(ctx, TableTables, Eq("table_number", 3))
		require.NoError(t, err)
		require.Len(t, removed, 1)
		assert.Equal(t, 3, removed[0].Int("table_number"))

		removed, err = s.Delete(ctx, TableTables, Eq("table_number", 3))
		require.NoError(t, err)
		assert.Empty(t, removed)
	})
}

func TestMigrateWithoutRawAccess(t *testing.T) {
	assert.ErrorIs(t, Migrate(context.Background(), NewMemoryStore()), ErrRawUnavailable)
}

func TestRowConversions(t *testing.T) {
	r := Row{"n": []byte("12"), "b": int64(1), "s": nil, "t": "2024-06-01 18:30:00"}
	assert.Equal(t, 12, r.Int("n"))
	assert.True(t, r.Bool("b"))
	assert.Nil(t, r.StringPtr("s"))
	require.NotNil(t, r.TimePtr("t"))
	assert.Equal(t, 18, r.TimePtr("t").Hour())
}
